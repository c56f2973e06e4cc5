package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the list seeded into an empty watchlist.
var DefaultSymbols = []string{"KOSPI200", "KOSDAQ", "KT", "삼성전자", "LG전자"}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"50"`
		MaxBackups int    `yaml:"max_backups" default:"3"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"rsiwatch.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		RefreshRate     float64       `yaml:"refresh_rate" default:"0.2"` // foreground refreshes per second per client
		RefreshBurst    int           `yaml:"refresh_burst" default:"2"`
	} `yaml:"server"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Storage struct {
		Backend      string `yaml:"backend" default:"sqlite" validate:"oneof=redis sqlite memory"`
		WatchlistKey string `yaml:"watchlist_key" default:"monitored_stocks_order"`
		RsiKey       string `yaml:"rsi_key" default:"rsi_values"`
		Redis        struct {
			Addr        string        `yaml:"addr" default:"localhost:6379"`
			Password    string        `yaml:"password"`
			DB          int           `yaml:"db"`
			Prefix      string        `yaml:"prefix" default:"rsiwatch"`
			PoolSize    int           `yaml:"pool_size" default:"10"`
			MinIdle     int           `yaml:"min_idle" default:"2"`
			PoolTimeout time.Duration `yaml:"pool_timeout" default:"30s"`
			TxRetries   int           `yaml:"tx_retries" default:"10" validate:"min=1"`
		} `yaml:"redis"`
		SQLite struct {
			Path        string        `yaml:"path" default:"data/rsiwatch.db"`
			BusyTimeout time.Duration `yaml:"busy_timeout" default:"5s"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`
	Directory struct {
		Path string `yaml:"path"` // empty uses the embedded table
	} `yaml:"directory"`
	Quote struct {
		Provider       string        `yaml:"provider" default:"rsi_service" validate:"oneof=rsi_service twelvedata"`
		BaseURL        string        `yaml:"base_url" default:"http://localhost:8000"`
		APIKey         string        `yaml:"api_key"`
		Period         int           `yaml:"period" default:"14" validate:"min=2"`
		OutputSize     int           `yaml:"output_size" default:"120"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
		ReadTimeout    time.Duration `yaml:"read_timeout" default:"10s"`
		RequestsPerSec float64       `yaml:"requests_per_sec" default:"5"`
		MaxRetries     int           `yaml:"max_retries" default:"2" validate:"min=0"`
	} `yaml:"quote"`
	Monitor struct {
		AggregationPolicy string        `yaml:"aggregation_policy" default:"strict" validate:"oneof=strict lenient"`
		LowThreshold      float64       `yaml:"low_threshold" default:"30"`
		HighThreshold     float64       `yaml:"high_threshold" default:"70"`
		DefaultSymbols    []string      `yaml:"default_symbols"`
		MaxConcurrency    int           `yaml:"max_concurrency" validate:"min=0"`
		CycleTimeout      time.Duration `yaml:"cycle_timeout" default:"2m"`
	} `yaml:"monitor"`
	Scheduler struct {
		Enabled    bool          `yaml:"enabled"`
		Interval   time.Duration `yaml:"interval" default:"1h"`
		RunOnStart bool          `yaml:"run_on_start"`
	} `yaml:"scheduler"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"rsi.alerts"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"rsiwatch"`
		Table        string        `yaml:"table" default:"cycle_history"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecTime  time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file, applies defaults and validates it.
// A missing file is not an error: defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	c, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), then the YAML file, then environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func readFile(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RSIWATCH_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("RSIWATCH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RSIWATCH_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RSIWATCH_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("RSIWATCH_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("RSIWATCH_POLICY"); v != "" {
		c.Monitor.AggregationPolicy = v
	}
	if v := os.Getenv("RSIWATCH_QUOTE_PROVIDER"); v != "" {
		c.Quote.Provider = v
	}
	if v := os.Getenv("RSIWATCH_QUOTE_URL"); v != "" {
		c.Quote.BaseURL = v
	}
	if v := os.Getenv("TWELVE_API_KEY"); v != "" {
		c.Quote.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("RSIWATCH_SYMBOLS"); v != "" {
		c.Monitor.DefaultSymbols = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var validate = validator.New()

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("config defaults: %w", err)
	}
	if len(c.Monitor.DefaultSymbols) == 0 {
		c.Monitor.DefaultSymbols = append([]string(nil), DefaultSymbols...)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Monitor.LowThreshold >= c.Monitor.HighThreshold {
		return fmt.Errorf("monitor.low_threshold (%v) must be below monitor.high_threshold (%v)",
			c.Monitor.LowThreshold, c.Monitor.HighThreshold)
	}
	if c.Quote.BaseURL == "" {
		return fmt.Errorf("quote.base_url is required")
	}
	if c.Quote.Provider == "twelvedata" && c.Quote.APIKey == "" {
		return fmt.Errorf("quote.api_key is required for the twelvedata provider")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	return nil
}
