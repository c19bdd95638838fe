package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	// MaxUploadTimeout is the hard ceiling for a single upload
	MaxUploadTimeout = 300 * time.Second

	envPrefix = "REPORTS"
)

type RetrySettings struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Factor      float64       `mapstructure:"factor"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type PollingSettings struct {
	Interval     time.Duration `mapstructure:"interval"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

type ExportSettings struct {
	Sink      string `mapstructure:"sink"`
	Dir       string `mapstructure:"dir"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Account   string `mapstructure:"account"`
	Key       string `mapstructure:"key"`
	Container string `mapstructure:"container"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Settings struct {
	Environment     string          `mapstructure:"environment"`
	BaseURL         string          `mapstructure:"base_url"`
	DevelopmentURL  string          `mapstructure:"development_url"`
	ProductionURL   string          `mapstructure:"production_url"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	UploadTimeout   time.Duration   `mapstructure:"upload_timeout"`
	Retry           RetrySettings   `mapstructure:"retry"`
	Polling         PollingSettings `mapstructure:"polling"`
	LogLevel        string          `mapstructure:"log_level"`
	Profile         string          `mapstructure:"profile"`
	CredentialsPath string          `mapstructure:"credentials_path"`
	TokenEnv        string          `mapstructure:"token_env"`
	Database        string          `mapstructure:"database"`
	Export          ExportSettings  `mapstructure:"export"`
	Server          ServerSettings  `mapstructure:"server"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvironmentDevelopment)
	v.SetDefault("base_url", "")
	v.SetDefault("development_url", "http://localhost:8000/api")
	v.SetDefault("production_url", "")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("upload_timeout", MaxUploadTimeout)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.factor", 2.0)
	v.SetDefault("retry.max_delay", 30*time.Second)
	v.SetDefault("polling.interval", 5*time.Second)
	v.SetDefault("polling.initial_delay", 3*time.Second)
	v.SetDefault("polling.max_attempts", 60)
	v.SetDefault("log_level", "info")
	v.SetDefault("profile", "")
	v.SetDefault("credentials_path", "")
	v.SetDefault("token_env", "REPORTS_TOKEN")
	v.SetDefault("database", "report-atlas.db")
	v.SetDefault("export.sink", "file")
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.prefix", "")
	v.SetDefault("export.account", "")
	v.SetDefault("export.key", "")
	v.SetDefault("export.container", "")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "")
}

// LoadSettings reads defaults, the optional YAML file at path and REPORTS_*
// environment variables, in increasing order of precedence.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) normalize() error {
	s.Environment = strings.ToLower(strings.TrimSpace(s.Environment))
	switch s.Environment {
	case EnvironmentDevelopment, EnvironmentProduction:
	default:
		return fmt.Errorf("unknown environment %q", s.Environment)
	}

	if s.UploadTimeout <= 0 || s.UploadTimeout > MaxUploadTimeout {
		s.UploadTimeout = MaxUploadTimeout
	}
	if s.Retry.MaxAttempts < 1 {
		s.Retry.MaxAttempts = 1
	}
	if s.Polling.MaxAttempts < 1 {
		return fmt.Errorf("polling.max_attempts must be positive, got %d", s.Polling.MaxAttempts)
	}
	return nil
}

// ResolveBaseURL returns the explicit base URL or the one for the environment
func (s *Settings) ResolveBaseURL() (string, error) {
	url := s.BaseURL
	if url == "" {
		if s.Environment == EnvironmentProduction {
			url = s.ProductionURL
		} else {
			url = s.DevelopmentURL
		}
	}
	if url == "" {
		return "", fmt.Errorf("no base url configured for %s environment", s.Environment)
	}
	return strings.TrimRight(url, "/"), nil
}
