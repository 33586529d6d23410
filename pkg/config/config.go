package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Auth struct {
		APIKey       string  `yaml:"api_key"`
		SubmitBurst  float64 `yaml:"submit_burst"`
		SubmitPerSec float64 `yaml:"submit_per_sec"`
	} `yaml:"auth"`
	Jobs struct {
		Workers     int           `yaml:"workers"`
		QueueSize   int           `yaml:"queue_size"`
		Retention   time.Duration `yaml:"retention"`
		MaxStored   int           `yaml:"max_stored"`
		SweepPeriod time.Duration `yaml:"sweep_period"`
	} `yaml:"jobs"`
	Store struct {
		Backend string `yaml:"backend"` // memory or redis
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"store"`
	Sources struct {
		Timeout         time.Duration `yaml:"timeout"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		AlphaVantageKey string        `yaml:"alpha_vantage_api_key"`
		AlphaVantageURL string        `yaml:"alpha_vantage_url"`
		NewsAPIKey      string        `yaml:"news_api_key"`
		NewsAPIURL      string        `yaml:"news_api_url"`
	} `yaml:"sources"`
	OpenAI struct {
		APIKey    string        `yaml:"api_key"`
		BaseURL   string        `yaml:"base_url"`
		Model     string        `yaml:"model"`
		MaxTokens int           `yaml:"max_tokens"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"openai"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("API_KEY"); v != "" {
		c.Auth.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Sources.AlphaVantageKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.Sources.NewsAPIKey = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = 10
	}
	if c.Jobs.QueueSize <= 0 {
		c.Jobs.QueueSize = 100
	}
	if c.Jobs.Retention <= 0 {
		c.Jobs.Retention = 24 * time.Hour
	}
	if c.Jobs.MaxStored <= 0 {
		c.Jobs.MaxStored = 1000
	}
	if c.Jobs.SweepPeriod <= 0 {
		c.Jobs.SweepPeriod = 5 * time.Minute
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "trendpulse:jobs"
	}
	if c.Sources.Timeout <= 0 {
		c.Sources.Timeout = 30 * time.Second
	}
	if c.Sources.CacheTTL == 0 {
		c.Sources.CacheTTL = 5 * time.Minute
	}
	if c.Sources.AlphaVantageURL == "" {
		c.Sources.AlphaVantageURL = "https://www.alphavantage.co/query"
	}
	if c.Sources.NewsAPIURL == "" {
		c.Sources.NewsAPIURL = "https://newsapi.org/v2/everything"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = 500
	}
	if c.OpenAI.Timeout <= 0 {
		c.OpenAI.Timeout = 30 * time.Second
	}
	if c.Auth.SubmitBurst <= 0 {
		c.Auth.SubmitBurst = 10
	}
	if c.Auth.SubmitPerSec <= 0 {
		c.Auth.SubmitPerSec = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("store.backend must be 'memory' or 'redis', got '%s'", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for redis backend")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
