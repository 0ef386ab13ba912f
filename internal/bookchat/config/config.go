package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the configuration for the book assistant
type Config struct {
	APIURL         string   `toml:"api_url" mapstructure:"api_url"`                 // Base URL of the answer service
	ChatPath       string   `toml:"chat_path" mapstructure:"chat_path"`             // Joined to api_url
	HealthPath     string   `toml:"health_path" mapstructure:"health_path"`         // Joined to api_url, used by ping
	RequestTimeout string   `toml:"request_timeout" mapstructure:"request_timeout"` // Go duration, e.g. "30s"
	LogLevel       string   `toml:"log_level" mapstructure:"log_level"`
	LogFile        string   `toml:"log_file" mapstructure:"log_file"`           // Empty = stderr (discarded by the widget)
	OTLPEndpoint   string   `toml:"otlp_endpoint" mapstructure:"otlp_endpoint"` // Empty = tracing disabled
	Suggestions    []string `toml:"suggestions" mapstructure:"suggestions"`     // Example questions for the empty transcript
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:8000",
		ChatPath:       "/api/chat",
		HealthPath:     "/api/test",
		RequestTimeout: "30s",
		LogLevel:       "warn",
		LogFile:        "",
		OTLPEndpoint:   "",
		Suggestions: []string{
			"What is Physical AI?",
			"Explain bipedal walking",
		},
	}
}

// SetDefaults registers the default values with viper.
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("chat_path", d.ChatPath)
	v.SetDefault("health_path", d.HealthPath)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("otlp_endpoint", d.OTLPEndpoint)
	v.SetDefault("suggestions", d.Suggestions)
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads and validates configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}

	var err error
	if config.APIURL, err = expandEnvVar(config.APIURL); err != nil {
		return nil, err
	}
	if config.OTLPEndpoint, err = expandEnvVar(config.OTLPEndpoint); err != nil {
		return nil, err
	}
	if config.LogFile != "" {
		if config.LogFile, err = ResolvePath(config.LogFile); err != nil {
			return nil, errors.Wrapf(err, "error resolving log file path '%s'", config.LogFile)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the endpoint and timeout are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is not configured. Set it in config file (api_url) or environment variable (BOOKCHAT_API_URL)")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return errors.Wrapf(err, "invalid api_url %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid api_url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return errors.Errorf("invalid api_url %q: missing host", c.APIURL)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses RequestTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid request_timeout %q", c.RequestTimeout)
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid request_timeout %q: must be positive", c.RequestTimeout)
	}
	return d, nil
}

// ChatEndpoint returns the URL questions are posted to.
func (c *Config) ChatEndpoint() string {
	return joinURL(c.APIURL, c.ChatPath)
}

// HealthEndpoint returns the URL used by ping.
func (c *Config) HealthEndpoint() string {
	return joinURL(c.APIURL, c.HealthPath)
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
