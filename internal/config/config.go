package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	defaultRunPeriod = 6 * time.Hour
	configPathEnv    = "BACKLOG_STATUS_CONFIG"
	apiTokenEnv      = "GITHUB_API_TOKEN"
	sessionCookieEnv = "GITHUB_SESSION_COOKIE"
	webhookURLEnv    = "BACKLOG_WEBHOOK_URL"
	runPeriodEnv     = "BACKLOG_RUN_PERIOD"
	storageDriverEnv = "STORAGE_DRIVER"
	storageDSNEnv    = "STORAGE_DSN"
	logLevelEnv      = "LOG_LEVEL"
	environmentEnv   = "ENVIRONMENT"
)

// Config holds high-level settings required across the application.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Status    StatusConfig    `yaml:"status"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GitHubConfig describes how to reach the notification API and the web session.
type GitHubConfig struct {
	APIBaseURL        string        `yaml:"apiBaseUrl"`
	WebBaseURL        string        `yaml:"webBaseUrl"`
	SessionCookie     string        `yaml:"sessionCookie"`
	Identity          string        `yaml:"identity"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
}

// StatusConfig seeds the settings a cycle needs. Values saved in the store
// take precedence.
type StatusConfig struct {
	APIToken   string        `yaml:"apiToken"`
	WebhookURL string        `yaml:"webhookUrl"`
	RunPeriod  time.Duration `yaml:"runPeriod"`
}

// SchedulerConfig defines how often the run period is checked.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// StorageConfig selects the settings store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoggingConfig controls verbosity and output format.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	// A missing .env is fine; existing variables are never overridden.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports values that would make the service misbehave. A missing API
// token is not an error: cycles are no-ops until one is configured.
func (c Config) Validate() error {
	var errs []error

	if c.Status.RunPeriod <= 0 {
		errs = append(errs, fmt.Errorf("status.runPeriod must be positive, got %s", c.Status.RunPeriod))
	}
	if err := ValidateWebhookURL(c.Status.WebhookURL); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	switch c.GitHub.Identity {
	case "", "api", "session":
	default:
		errs = append(errs, fmt.Errorf("github.identity must be api or session, got %q", c.GitHub.Identity))
	}
	if c.GitHub.Identity == "session" && c.GitHub.SessionCookie == "" {
		errs = append(errs, errors.New("github.identity session requires github.sessionCookie"))
	}
	if c.GitHub.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("github.requestsPerSecond must not be negative"))
	}

	return errors.Join(errs...)
}

// Warnings reports settings that validate but will make real cycles fail.
// Dry runs and settings management still work, so these are not errors.
func (c Config) Warnings() []string {
	var warnings []string
	if c.GitHub.SessionCookie == "" {
		warnings = append(warnings, "github.sessionCookie is empty: the status form needs a web session, publishing will fail until "+sessionCookieEnv+" is set")
	}
	return warnings
}

// ValidateWebhookURL accepts an empty value or an absolute http(s) URL.
func ValidateWebhookURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook url must be an absolute http(s) url, got %q", raw)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiTokenEnv); v != "" {
		c.Status.APIToken = strings.TrimSpace(v)
	}

	if v := os.Getenv(sessionCookieEnv); v != "" {
		c.GitHub.SessionCookie = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Status.WebhookURL = v
	}

	if v := os.Getenv(runPeriodEnv); v != "" {
		if d, err := parsePeriod(v); err != nil {
			log.Printf("config: invalid %s=%q: %v", runPeriodEnv, v, err)
		} else {
			c.Status.RunPeriod = d
		}
	}

	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}

	if v := os.Getenv(storageDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(environmentEnv); v != "" {
		c.Logging.Environment = strings.ToLower(v)
	}
}

// parsePeriod accepts Go durations ("6h") or a bare number of minutes.
func parsePeriod(v string) (time.Duration, error) {
	if minutes, err := strconv.Atoi(v); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.GitHub.APIBaseURL != "" {
		base.GitHub.APIBaseURL = override.GitHub.APIBaseURL
	}
	if override.GitHub.WebBaseURL != "" {
		base.GitHub.WebBaseURL = override.GitHub.WebBaseURL
	}
	if override.GitHub.SessionCookie != "" {
		base.GitHub.SessionCookie = override.GitHub.SessionCookie
	}
	if override.GitHub.Identity != "" {
		base.GitHub.Identity = override.GitHub.Identity
	}
	if override.GitHub.RequestsPerSecond != 0 {
		base.GitHub.RequestsPerSecond = override.GitHub.RequestsPerSecond
	}
	if override.GitHub.Timeout != 0 {
		base.GitHub.Timeout = override.GitHub.Timeout
	}

	if override.Status.APIToken != "" {
		base.Status.APIToken = override.Status.APIToken
	}
	if override.Status.WebhookURL != "" {
		base.Status.WebhookURL = override.Status.WebhookURL
	}
	if override.Status.RunPeriod != 0 {
		base.Status.RunPeriod = override.Status.RunPeriod
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Environment != "" {
		base.Logging.Environment = override.Logging.Environment
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		GitHub: GitHubConfig{
			APIBaseURL:        "https://api.github.com",
			WebBaseURL:        "https://github.com",
			Identity:          "api",
			RequestsPerSecond: 2,
			Timeout:           20 * time.Second,
		},
		Status:    StatusConfig{RunPeriod: defaultRunPeriod},
		Scheduler: SchedulerConfig{CronExpression: "*/15 * * * *", Timezone: defaultTimezone, location: tz},
		Storage:   StorageConfig{Driver: "sqlite", DSN: "backlogstatus.db"},
		Logging:   LoggingConfig{Level: "info", Environment: "development"},
	}
}
