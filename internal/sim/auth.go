package sim

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("the specified username or password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

const issuer = "benefits-sim"

// Claims identify the logged-in employer.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator checks the single employer account and issues session tokens.
type Authenticator struct {
	username      string
	passwordHash  []byte
	secretKey     []byte
	tokenDuration time.Duration
}

// NewAuthenticator hashes the configured password. An empty secret gets a random one,
// which invalidates sessions across restarts.
func NewAuthenticator(username, password, secret string, tokenDuration time.Duration) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	key := []byte(secret)
	if len(key) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		key = []byte(hex.EncodeToString(buf))
	}
	if tokenDuration <= 0 {
		tokenDuration = 30 * time.Minute
	}
	return &Authenticator{
		username:      username,
		passwordHash:  hash,
		secretKey:     key,
		tokenDuration: tokenDuration,
	}, nil
}

// Authenticate checks the credentials and returns a signed token.
func (a *Authenticator) Authenticate(username, password string) (string, error) {
	if username != a.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.GenerateToken(username)
}

func (a *Authenticator) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}

func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username != a.username {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenDuration is how long an issued session stays valid.
func (a *Authenticator) TokenDuration() time.Duration {
	return a.tokenDuration
}
