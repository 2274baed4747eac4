// Package sim is a local stand-in for the Benefits Dashboard. It serves the same
// login and employee screens the page objects drive, backed by an in-memory store.
package sim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/benefits"
	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sessionCookie = "benefits_session"

// Server wires the store, authenticator, metrics and templates into a gin engine.
type Server struct {
	cfg     config.SimConfig
	base    string
	store   *Store
	auth    *Authenticator
	metrics *Metrics
	render  *renderer
	log     *logrus.Entry
	engine  *gin.Engine
}

// New builds a server from the sim configuration section.
func New(cfg config.SimConfig, log *logrus.Logger) (*Server, error) {
	auth, err := NewAuthenticator(cfg.Username, cfg.Password, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	store := NewStore()
	s := &Server{
		cfg:     cfg,
		base:    strings.TrimRight(cfg.BasePath, "/"),
		store:   store,
		auth:    auth,
		metrics: NewMetrics(store),
		render:  newRenderer(),
		log:     logging.For(log, "sim"),
	}
	if err := s.render.check("login.html", "dashboard.html"); err != nil {
		return nil, err
	}
	s.engine = s.routes()
	return s, nil
}

// Handler exposes the engine, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store gives tests direct access to the data behind the UI.
func (s *Server) Store() *Store {
	return s.store
}

// LoginURL is the login page under the given origin, e.g. http://127.0.0.1:8088.
func (s *Server) LoginURL(origin string) string {
	return strings.TrimRight(origin, "/") + s.base + "/Account/Login"
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("benefits dashboard simulator listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down simulator")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestMiddleware(s.metrics, s.log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "employees": s.store.Count()})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, s.base+"/Account/Login")
	})

	base := r.Group(s.base)
	base.GET("/Account/Login", s.loginPage)
	base.POST("/Account/Login", s.loginSubmit)
	base.GET("/Account/LogOut", s.logout)
	base.GET("/Benefits", s.requirePageSession(), s.dashboardPage)

	api := base.Group("/api/employees", s.requireAPISession())
	api.GET("", s.listEmployees)
	api.POST("", s.createEmployee)
	api.GET("/:id", s.getEmployee)
	api.PUT("/:id", s.updateEmployee)
	api.DELETE("/:id", s.deleteEmployee)

	return r
}

func (s *Server) session(c *gin.Context) (*Claims, bool) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := s.auth.ValidateToken(token)
	if err != nil {
		s.log.WithError(err).Debug("rejected session cookie")
		return nil, false
	}
	return claims, true
}

func (s *Server) requirePageSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.session(c); !ok {
			c.Redirect(http.StatusFound, s.base+"/Account/Login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireAPISession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.session(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, s.base+"/", "", false, true)
}

func (s *Server) loginPage(c *gin.Context) {
	if _, ok := s.session(c); ok {
		c.Redirect(http.StatusFound, s.base+"/Benefits")
		return
	}
	s.render.HTML(c, http.StatusOK, "login.html", pongo2.Context{"base": s.base})
}

func (s *Server) loginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("Username"))
	password := c.PostForm("Password")

	var errs []string
	if username == "" {
		errs = append(errs, "The Username field is required.")
	}
	if password == "" {
		errs = append(errs, "The Password field is required.")
	}
	if len(errs) == 0 {
		token, err := s.auth.Authenticate(username, password)
		if err == nil {
			s.metrics.loginResult(true)
			s.log.WithField("username", username).Info("employer logged in")
			s.setSession(c, token, int(s.auth.TokenDuration().Seconds()))
			c.Redirect(http.StatusFound, s.base+"/Benefits")
			return
		}
		errs = append(errs, "The specified username or password is incorrect.")
	}

	s.metrics.loginResult(false)
	s.log.WithField("username", username).Info("login rejected")
	s.render.HTML(c, http.StatusOK, "login.html", pongo2.Context{
		"base":     s.base,
		"username": username,
		"errors":   errs,
	})
}

func (s *Server) logout(c *gin.Context) {
	s.setSession(c, "", -1)
	c.Redirect(http.StatusFound, s.base+"/Account/Login")
}

func (s *Server) dashboardPage(c *gin.Context) {
	s.render.HTML(c, http.StatusOK, "dashboard.html", pongo2.Context{"base": s.base})
}

// employeeView is an employee with its pay figures, as the dashboard script expects it.
type employeeView struct {
	Employee
	Salary       float64 `json:"salary"`
	Gross        float64 `json:"gross"`
	BenefitsCost float64 `json:"benefitsCost"`
	Net          float64 `json:"net"`
}

func viewOf(e Employee) employeeView {
	b := benefits.Expected(e.Dependants)
	return employeeView{
		Employee:     e,
		Salary:       b.Salary.Float(),
		Gross:        b.Gross.Float(),
		BenefitsCost: b.BenefitsCost.Float(),
		Net:          b.Net.Float(),
	}
}

func (s *Server) listEmployees(c *gin.Context) {
	list := s.store.List()
	out := make([]employeeView, 0, len(list))
	for _, e := range list {
		out = append(out, viewOf(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getEmployee(c *gin.Context) {
	e, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(e))
}

func (s *Server) createEmployee(c *gin.Context) {
	var in EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	e, err := s.store.Create(in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithFields(logrus.Fields{"id": e.ID, "employee": e.FirstName + " " + e.LastName}).Info("employee added")
	c.JSON(http.StatusCreated, viewOf(e))
}

func (s *Server) updateEmployee(c *gin.Context) {
	var in EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	e, err := s.store.Update(c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("id", e.ID).Info("employee updated")
	c.JSON(http.StatusOK, viewOf(e))
}

func (s *Server) deleteEmployee(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("id", id).Info("employee deleted")
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
