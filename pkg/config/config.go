package config

import (
	"fmt"
	"os"
	"strconv"
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
	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Cache struct {
		Backend string `yaml:"backend"` // memory or redis
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		Order     []string      `yaml:"order"`
		Timeout   time.Duration `yaml:"timeout"`
		CoinGecko struct {
			BaseURL         string        `yaml:"base_url"`
			APIKey          string        `yaml:"api_key"`
			PolitenessDelay time.Duration `yaml:"politeness_delay"`
		} `yaml:"coingecko"`
		Binance struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"binance"`
		CoinPaprika struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"coinpaprika"`
	} `yaml:"sources"`
	Resolver struct {
		SpotTTL    time.Duration `yaml:"spot_ttl"`
		HistoryTTL time.Duration `yaml:"history_ttl"`
		AssetDelay time.Duration `yaml:"asset_delay"`
	} `yaml:"resolver"`
	FX struct {
		BaseURL string        `yaml:"base_url"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"fx"`
	Narrative struct {
		Enabled bool          `yaml:"enabled"`
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"narrative"`
	Stream struct {
		PushInterval time.Duration `yaml:"push_interval"`
	} `yaml:"stream"`
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

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Sources.CoinGecko.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Narrative.APIKey = v
		c.Narrative.Enabled = true
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Port = p
			}
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if len(c.Sources.Order) == 0 {
		c.Sources.Order = []string{"coingecko", "binance", "coinpaprika"}
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 8 * time.Second
	}
	if c.Sources.CoinGecko.BaseURL == "" {
		c.Sources.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Sources.CoinGecko.PolitenessDelay == 0 {
		c.Sources.CoinGecko.PolitenessDelay = 300 * time.Millisecond
	}
	if c.Sources.Binance.BaseURL == "" {
		c.Sources.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Sources.CoinPaprika.BaseURL == "" {
		c.Sources.CoinPaprika.BaseURL = "https://api.coinpaprika.com/v1"
	}
	if c.Resolver.SpotTTL == 0 {
		c.Resolver.SpotTTL = time.Minute
	}
	if c.Resolver.HistoryTTL == 0 {
		c.Resolver.HistoryTTL = 5 * time.Minute
	}
	if c.Resolver.AssetDelay == 0 {
		c.Resolver.AssetDelay = 250 * time.Millisecond
	}
	if c.FX.BaseURL == "" {
		c.FX.BaseURL = "https://open.er-api.com/v6"
	}
	if c.FX.TTL == 0 {
		c.FX.TTL = 10 * time.Minute
	}
	if c.Narrative.BaseURL == "" {
		c.Narrative.BaseURL = "https://api.openai.com/v1"
	}
	if c.Narrative.Model == "" {
		c.Narrative.Model = "gpt-4o-mini"
	}
	if c.Narrative.Timeout == 0 {
		c.Narrative.Timeout = 12 * time.Second
	}
	if c.Stream.PushInterval == 0 {
		c.Stream.PushInterval = 10 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	known := map[string]bool{"coingecko": true, "binance": true, "coinpaprika": true}
	for _, s := range c.Sources.Order {
		if !known[s] {
			return fmt.Errorf("unknown source '%s' in sources.order", s)
		}
	}
	if c.Narrative.Enabled && c.Narrative.APIKey == "" {
		return fmt.Errorf("narrative.api_key is required when narrative is enabled")
	}
	return nil
}
