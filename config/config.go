// Package config provides YAML settings for the freeboost CLI.
//
// Every field has a default, so a settings file is optional. Example:
//
//	config_url: https://zefame-free.com/api_free.php?action=config
//	order_url: https://zefame-free.com/api_free.php?action=order
//	site_url: https://zefame-free.com
//	cache_file: zefame_config.json
//	log_file: zefame.log
//	order_timeout: 30s
//	status_port: 8080
//	target:
//	  platform: tiktok
//	  link1: https://www.tiktok.com/@someone
//	  link2: ${VIDEO_URL}
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults for the public boost API.
const (
	DefaultConfigURL = "https://zefame-free.com/api_free.php?action=config"
	DefaultOrderURL  = "https://zefame-free.com/api_free.php?action=order"
	DefaultSiteURL   = "https://zefame-free.com"
	DefaultCacheFile = "zefame_config.json"
	DefaultLogFile   = "zefame.log"
)

// minTimeout is the smallest accepted request timeout.
const minTimeout = 1 * time.Second

// Config is the root settings structure.
//
// It maps directly to the YAML settings file. Use [Default], [Load] or
// [Parse] to create one.
type Config struct {
	// ConfigURL is the remote platform configuration endpoint.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	ConfigURL string `yaml:"config_url" validate:"required,url"`

	// OrderURL is the order submission endpoint.
	OrderURL string `yaml:"order_url" validate:"required,url"`

	// SiteURL is fetched once to establish session cookies, and is the
	// Referer/Origin of every request.
	SiteURL string `yaml:"site_url" validate:"required,url"`

	// CacheFile is where the last fetched platform configuration is kept.
	CacheFile string `yaml:"cache_file" validate:"required"`

	// LogFile is the append-only event log.
	LogFile string `yaml:"log_file" validate:"required"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Headers replace the default browser-like header set when non-empty.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// ConfigRetries is the number of remote config attempts. Defaults to 3.
	ConfigRetries int `yaml:"config_retries" validate:"min=1,max=10"`

	// ConfigTimeout is the per-attempt config request timeout. Defaults to 15s.
	ConfigTimeout Duration `yaml:"config_timeout"`

	// OrderRetries is the number of submission attempts per order. Defaults to 5.
	OrderRetries int `yaml:"order_retries" validate:"min=1,max=10"`

	// OrderTimeout is the first order attempt's timeout; every attempt adds 5s.
	// Defaults to 30s.
	OrderTimeout Duration `yaml:"order_timeout"`

	// StatusPort enables the status API on this port when non-zero.
	StatusPort int `yaml:"status_port" validate:"min=0,max=65535"`

	// Target preselects the platform and links; CLI flags override it.
	Target TargetConfig `yaml:"target"`
}

// TargetConfig preselects what to boost.
type TargetConfig struct {
	// Platform is the platform id (tiktok, instagram, ...).
	Platform string `yaml:"platform"`

	// Link1 is the profile/channel/page URL.
	Link1 string `yaml:"link1"`

	// Link2 is the video/post URL.
	Link2 string `yaml:"link2"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		ConfigURL:     DefaultConfigURL,
		OrderURL:      DefaultOrderURL,
		SiteURL:       DefaultSiteURL,
		CacheFile:     DefaultCacheFile,
		LogFile:       DefaultLogFile,
		LogLevel:      "info",
		ConfigRetries: 3,
		ConfigTimeout: Duration(15 * time.Second),
		OrderRetries:  5,
		OrderTimeout:  Duration(30 * time.Second),
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML settings file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML settings on top of [Default].
//
// Environment variables are expanded in URLs, file paths, header values and
// target links.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings without expanding environment variables.
func (c *Config) Validate() error {
	if err := settingsValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if c.ConfigTimeout.Duration() < minTimeout {
		return fmt.Errorf("config_timeout must be at least %s, got %s", minTimeout, c.ConfigTimeout.Duration())
	}
	if c.OrderTimeout.Duration() < minTimeout {
		return fmt.Errorf("order_timeout must be at least %s, got %s", minTimeout, c.OrderTimeout.Duration())
	}
	return nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"config_url", &c.ConfigURL},
		{"order_url", &c.OrderURL},
		{"site_url", &c.SiteURL},
		{"cache_file", &c.CacheFile},
		{"log_file", &c.LogFile},
		{"target.link1", &c.Target.Link1},
		{"target.link2", &c.Target.Link2},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	c.Target.Platform = strings.ToLower(strings.TrimSpace(c.Target.Platform))

	return c.Validate()
}

// settingsValidator reports fields by their YAML names.
var settingsValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formatValidationErrors turns validator errors into a single readable error.
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be an absolute URL, got %q", fe.Field(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s, got %v", fe.Field(), boundWord(fe.Tag()), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
