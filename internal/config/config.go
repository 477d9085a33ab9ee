// Package config loads server settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/attanavaid/portfolio/internal/theme"
)

// DefaultPath is the optional config file read by serve.
const DefaultPath = "portfolio.yml"

// Config is the full server configuration, corresponding to portfolio.yml.
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Site    SiteConfig    `yaml:"site" koanf:"site"`
	Theme   ThemeConfig   `yaml:"theme" koanf:"theme"`
	Contact ContactConfig `yaml:"contact" koanf:"contact"`
	SMTP    SMTPConfig    `yaml:"smtp" koanf:"smtp"`
	EmailJS EmailJSConfig `yaml:"emailjs" koanf:"emailjs"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" koanf:"port"`
	Mode            string        `yaml:"mode" koanf:"mode"`
	CORSOrigins     []string      `yaml:"cors_origins" koanf:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
}

type SiteConfig struct {
	URL       string `yaml:"url" koanf:"url"`
	ModelPath string `yaml:"model_path" koanf:"model_path"`
	StaticDir string `yaml:"static_dir" koanf:"static_dir"`
}

type ThemeConfig struct {
	Default string `yaml:"default" koanf:"default"`
}

type ContactConfig struct {
	To        string        `yaml:"to" koanf:"to"`
	RateEvery time.Duration `yaml:"rate_every" koanf:"rate_every"`
	RateBurst int           `yaml:"rate_burst" koanf:"rate_burst"`
}

type SMTPConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port string `yaml:"port" koanf:"port"`
	User string `yaml:"user" koanf:"user"`
	Pass string `yaml:"pass" koanf:"pass"`
}

type EmailJSConfig struct {
	ServiceID  string `yaml:"service_id" koanf:"service_id"`
	TemplateID string `yaml:"template_id" koanf:"template_id"`
	PublicKey  string `yaml:"public_key" koanf:"public_key"`
	Endpoint   string `yaml:"endpoint" koanf:"endpoint"`
}

type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			ShutdownTimeout: 10 * time.Second,
		},
		Site: SiteConfig{
			URL:       "https://attanavaid.com",
			ModelPath: "models/logo.glb",
			StaticDir: "public",
		},
		Theme: ThemeConfig{Default: string(theme.DefaultPreference)},
		Contact: ContactConfig{
			To:        "attanavaid@gmail.com",
			RateEvery: time.Minute,
			RateBurst: 3,
		},
		SMTP: SMTPConfig{Host: "smtp.gmail.com", Port: "587"},
		Log:  LogConfig{Level: "info"},
	}
}

// envKeys maps the environment variables the server understands to config
// keys. The NEXT_PUBLIC_ names are accepted for existing deployments.
var envKeys = map[string]string{
	"PORT":                            "server.port",
	"GIN_MODE":                        "server.mode",
	"CORS_ORIGINS":                    "server.cors_origins",
	"SITE_URL":                        "site.url",
	"NEXT_PUBLIC_SITE_URL":            "site.url",
	"MODEL_PATH":                      "site.model_path",
	"STATIC_DIR":                      "site.static_dir",
	"THEME_DEFAULT":                   "theme.default",
	"TO_EMAIL":                        "contact.to",
	"CONTACT_RATE_EVERY":              "contact.rate_every",
	"CONTACT_RATE_BURST":              "contact.rate_burst",
	"SMTP_HOST":                       "smtp.host",
	"SMTP_PORT":                       "smtp.port",
	"SMTP_USER":                       "smtp.user",
	"SMTP_PASS":                       "smtp.pass",
	"EMAILJS_SERVICE_ID":              "emailjs.service_id",
	"EMAILJS_TEMPLATE_ID":             "emailjs.template_id",
	"EMAILJS_PUBLIC_KEY":              "emailjs.public_key",
	"NEXT_PUBLIC_EMAILJS_SERVICE_ID":  "emailjs.service_id",
	"NEXT_PUBLIC_EMAILJS_TEMPLATE_ID": "emailjs.template_id",
	"NEXT_PUBLIC_EMAILJS_PUBLIC_KEY":  "emailjs.public_key",
	"EMAILJS_ENDPOINT":                "emailjs.endpoint",
	"LOG_LEVEL":                       "log.level",
}

// Load reads configuration from the given YAML file, if it exists, then
// overlays environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	return cfg, nil
}

// splitList flattens comma-separated entries, as given in CORS_ORIGINS.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var validModes = map[string]bool{"debug": true, "release": true, "test": true}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if !validModes[c.Server.Mode] {
		errs = append(errs, fmt.Errorf("invalid mode %q: must be one of debug, release, test", c.Server.Mode))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if u, err := url.Parse(c.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site url %q must be absolute", c.Site.URL))
	}
	if _, err := theme.ParsePreference(c.Theme.Default); err != nil {
		errs = append(errs, fmt.Errorf("theme default: %w", err))
	}
	if c.Contact.To == "" {
		errs = append(errs, errors.New("contact.to is required"))
	}
	if c.Contact.RateBurst < 0 {
		errs = append(errs, errors.New("contact.rate_burst must be non-negative"))
	}
	if c.Contact.RateBurst > 0 && c.Contact.RateEvery <= 0 {
		errs = append(errs, errors.New("contact.rate_every must be positive when rate limiting"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// Release reports whether the server runs in production mode.
func (c *Config) Release() bool { return c.Server.Mode == "release" }
