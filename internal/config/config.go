package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	cfg     *Config
	loadErr error
	once    sync.Once
	mu      sync.RWMutex
)

// Config represents the suite configuration
type Config struct {
	Target    TargetConfig    `mapstructure:"target" yaml:"target"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts" yaml:"timeouts"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Sim       SimConfig       `mapstructure:"sim" yaml:"sim"`
}

// TargetConfig describes the application under test.
// An empty LoginURL means the local simulator is started instead.
type TargetConfig struct {
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type BrowserConfig struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Headless       bool   `mapstructure:"headless" yaml:"headless"`
	SlowMo         int    `mapstructure:"slow_mo" yaml:"slow_mo"`
	ViewportWidth  int    `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height" yaml:"viewport_height"`
	Install        bool   `mapstructure:"install" yaml:"install"`
}

type TimeoutsConfig struct {
	Element    time.Duration `mapstructure:"element" yaml:"element"`
	Settle     time.Duration `mapstructure:"settle" yaml:"settle"`
	Poll       time.Duration `mapstructure:"poll" yaml:"poll"`
	Navigation time.Duration `mapstructure:"navigation" yaml:"navigation"`
}

type ArtifactsConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"`
	Screenshots bool   `mapstructure:"screenshots" yaml:"screenshots"`
	Videos      bool   `mapstructure:"videos" yaml:"videos"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type SimConfig struct {
	Addr      string        `mapstructure:"addr" yaml:"addr"`
	BasePath  string        `mapstructure:"base_path" yaml:"base_path"`
	Username  string        `mapstructure:"username" yaml:"username"`
	Password  string        `mapstructure:"password" yaml:"password"`
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// envAliases accepts the unprefixed variable names as well.
var envAliases = map[string][]string{
	"target.login_url": {"LOGIN_URL"},
	"target.username":  {"TEST_USERNAME"},
	"target.password":  {"TEST_PASSWORD"},
	"browser.headless": {"HEADLESS"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.login_url", "")
	v.SetDefault("target.username", "")
	v.SetDefault("target.password", "")

	v.SetDefault("browser.name", "chromium")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", 0)
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 720)
	v.SetDefault("browser.install", os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1")

	v.SetDefault("timeouts.element", 10*time.Second)
	v.SetDefault("timeouts.settle", 2*time.Second)
	v.SetDefault("timeouts.poll", 100*time.Millisecond)
	v.SetDefault("timeouts.navigation", 30*time.Second)

	v.SetDefault("artifacts.dir", "./test-results")
	v.SetDefault("artifacts.screenshots", true)
	v.SetDefault("artifacts.videos", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("sim.addr", "127.0.0.1:8088")
	v.SetDefault("sim.base_path", "/Prod")
	v.SetDefault("sim.username", "TestUser773")
	v.SetDefault("sim.password", "6q0]l$BKOUb!")
	v.SetDefault("sim.jwt_secret", "")
	v.SetDefault("sim.token_ttl", 30*time.Minute)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("BENEFITS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{key}, "BENEFITS_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		_ = v.BindEnv(append(names, aliases...)...)
	}
	return v
}

// Load reads defaults, an optional YAML file and the environment once.
// The file is taken from BENEFITS_CONFIG, falling back to ./benefits-e2e.yaml.
func Load() (*Config, error) {
	once.Do(func() {
		loadDotEnv(".env")

		v := newViper()
		path := os.Getenv("BENEFITS_CONFIG")
		if path != "" {
			v.SetConfigFile(path)
		} else {
			v.SetConfigName("benefits-e2e")
			v.AddConfigPath(".")
		}
		if rerr := v.ReadInConfig(); rerr != nil {
			// A missing default file is fine; an explicit one is not.
			if _, ok := rerr.(viper.ConfigFileNotFoundError); !ok || path != "" {
				loadErr = fmt.Errorf("failed to read config: %w", rerr)
				return
			}
		}

		loaded := &Config{}
		if err := v.Unmarshal(loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}
		if err := loaded.Validate(); err != nil {
			loadErr = err
			return
		}

		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})
	// The first outcome sticks: a failed load keeps failing.
	if loadErr != nil {
		return nil, loadErr
	}
	if c := Get(); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// Get returns the current configuration (thread-safe)
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadFromFile loads configuration from a specific file (useful for testing)
func LoadFromFile(configFile string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	cfg = loaded
	return loaded, nil
}

// Default returns the built-in defaults with environment overrides applied.
func Default() *Config {
	v := newViper()
	c := &Config{}
	_ = v.Unmarshal(c)
	return c
}

// MustLoad loads configuration and panics on error
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return c
}

// UseSimulator reports whether the suite should start the local dashboard.
func (c *Config) UseSimulator() bool {
	return strings.TrimSpace(c.Target.LoginURL) == ""
}

// ElementTimeoutMS is the element timeout in the unit Playwright expects.
func (c *TimeoutsConfig) ElementTimeoutMS() float64 {
	return float64(c.Element.Milliseconds())
}

// NavigationTimeoutMS is the navigation timeout in the unit Playwright expects.
func (c *TimeoutsConfig) NavigationTimeoutMS() float64 {
	return float64(c.Navigation.Milliseconds())
}

// LoginPath is the simulator login path under its base path.
func (c *SimConfig) LoginPath() string {
	return strings.TrimRight(c.BasePath, "/") + "/Account/Login"
}
