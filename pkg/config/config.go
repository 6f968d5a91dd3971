package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"3s"`
	} `yaml:"server"`
	Reference struct {
		TickersPath string `yaml:"tickers_path" default:"data/tickers.json"`
	} `yaml:"reference"`
	Evaluation struct {
		RequestTimeout  time.Duration        `yaml:"request_timeout" default:"20s"`
		UpstreamTimeout time.Duration        `yaml:"upstream_timeout" default:"8s"`
		HistoryDays     int                  `yaml:"history_days" default:"30"`
		LookbackYears   int                  `yaml:"lookback_years" default:"3"`
		VenueSuffixes   map[string]string    `yaml:"venue_suffixes" default:"{\"KOSPI\":\".KS\",\"KOSDAQ\":\".KQ\"}"`
		MarketCapBands  map[string][]float64 `yaml:"market_cap_bands"`
	} `yaml:"evaluation"`
	Dart struct {
		BaseURL       string        `yaml:"base_url" default:"https://opendart.fss.or.kr/api"`
		APIKey        string        `yaml:"api_key"`
		Timeout       time.Duration `yaml:"timeout" default:"8s"`
		RetryCount    int           `yaml:"retry_count" default:"2"`
		RatePerSecond float64       `yaml:"rate_per_second" default:"10"`
		Burst         int           `yaml:"burst" default:"5"`
		ReportCode    string        `yaml:"report_code" default:"11011"`
		Cache         struct {
			Enabled    bool          `yaml:"enabled"`
			TTL        time.Duration `yaml:"ttl" default:"12h"`
			MemorySize int           `yaml:"memory_size" default:"512"`
			MemoryTTL  time.Duration `yaml:"memory_ttl" default:"10m"`
		} `yaml:"cache"`
	} `yaml:"dart"`
	Gemini struct {
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"gemini-2.0-flash"`
		Temperature float32       `yaml:"temperature" default:"0.4"`
		Timeout     time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"gemini"`
	Chat struct {
		RateCapacity float64 `yaml:"rate_capacity" default:"5"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.2"`
	} `yaml:"chat"`
	Redis struct {
		Enabled   bool   `yaml:"enabled"`
		Addr      string `yaml:"addr" default:"localhost:6379"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix" default:"finsignal"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"finsignal.evaluations"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"finsignal-history"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10000000"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"finsignal"`
		Table       string        `yaml:"table" default:"evaluations"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		AsyncInsert bool          `yaml:"async_insert"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

// DefaultMarketCapBands are tier floors, largest first, per quote currency.
var DefaultMarketCapBands = map[string][]float64{
	"KRW": {10e12, 1e12, 300e9, 100e9},
	"USD": {200e9, 10e9, 2e9, 300e6},
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyEnv()
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if len(c.Evaluation.MarketCapBands) == 0 {
		c.Evaluation.MarketCapBands = DefaultMarketCapBands
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("DART_API_KEY"); v != "" {
		c.Dart.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("TICKERS_PATH"); v != "" {
		c.Reference.TickersPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Reference.TickersPath == "" {
		return fmt.Errorf("reference.tickers_path is required")
	}
	if c.Evaluation.HistoryDays <= 0 {
		return fmt.Errorf("evaluation.history_days must be positive")
	}
	if c.Evaluation.LookbackYears < 1 || c.Evaluation.LookbackYears > 10 {
		return fmt.Errorf("evaluation.lookback_years must be between 1 and 10, got %d", c.Evaluation.LookbackYears)
	}
	for cur, bands := range c.Evaluation.MarketCapBands {
		for i := 1; i < len(bands); i++ {
			if bands[i] >= bands[i-1] {
				return fmt.Errorf("evaluation.market_cap_bands.%s must be strictly descending", cur)
			}
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("clickhouse history requires kafka to be enabled")
	}
	return nil
}
