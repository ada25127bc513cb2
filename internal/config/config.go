package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	OneTrust OneTrustConfig `yaml:"onetrust" envconfig:"ONETRUST"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	// No envconfig alt name here: the bare PORT variable is handled
	// explicitly in Load so its errors are reported consistently.
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"5m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	ReportTimeout   time.Duration `yaml:"report_timeout" envconfig:"REPORT_TIMEOUT" default:"5m"`
}

// OneTrustConfig contains the outbound OneTrust API client configuration.
// Token and base URL are read once at startup and treated as immutable for
// the life of the process.
type OneTrustConfig struct {
	BaseURL            string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://sgr-infosec.my.onetrust.com/api/controls/v1/control-implementations/pages"`
	Token              string        `yaml:"token" envconfig:"TOKEN"`
	PageSize           int           `yaml:"page_size" envconfig:"PAGE_SIZE" default:"50"`
	MaxPages           int           `yaml:"max_pages" envconfig:"MAX_PAGES" default:"1000"`
	RequestTimeout     time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" envconfig:"INSECURE_SKIP_VERIFY" default:"true"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment values take precedence over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CTRLREPORT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Canonical env names used by deployments of the original service.
	if token := os.Getenv("ONETRUST_TOKEN"); token != "" {
		cfg.OneTrust.Token = token
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config into env config; env values win, file
// values only fill fields the environment left at their zero value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Server.ReportTimeout == 0 {
		envConfig.Server.ReportTimeout = fileConfig.Server.ReportTimeout
	}
	if envConfig.OneTrust.BaseURL == "" {
		envConfig.OneTrust.BaseURL = fileConfig.OneTrust.BaseURL
	}
	if envConfig.OneTrust.Token == "" {
		envConfig.OneTrust.Token = fileConfig.OneTrust.Token
	}
	if envConfig.OneTrust.PageSize == 0 {
		envConfig.OneTrust.PageSize = fileConfig.OneTrust.PageSize
	}
	if envConfig.OneTrust.MaxPages == 0 {
		envConfig.OneTrust.MaxPages = fileConfig.OneTrust.MaxPages
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.OneTrust.BaseURL == "" {
		return fmt.Errorf("onetrust base URL must be set")
	}

	if c.OneTrust.PageSize <= 0 {
		return fmt.Errorf("onetrust page size must be positive: %d", c.OneTrust.PageSize)
	}

	if c.OneTrust.MaxPages <= 0 {
		return fmt.Errorf("onetrust max pages must be positive: %d", c.OneTrust.MaxPages)
	}

	if c.OneTrust.RequestTimeout <= 0 {
		return fmt.Errorf("onetrust request timeout must be positive")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file, if one exists
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			ReportTimeout:   5 * time.Minute,
		},
		OneTrust: OneTrustConfig{
			BaseURL:            "https://sgr-infosec.my.onetrust.com/api/controls/v1/control-implementations/pages",
			PageSize:           50,
			MaxPages:           1000,
			RequestTimeout:     60 * time.Second,
			InsecureSkipVerify: true,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
	}
}
