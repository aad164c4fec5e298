package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"PricePulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	// Backend selects the durable sink for market snapshots:
	// "none", "kafka" or "clickhouse".
	Backend struct {
		Type string `yaml:"type"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		BatchSize    int           `yaml:"batch_size"`
		Linger       time.Duration `yaml:"linger"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Pricing PricingConfig `yaml:"pricing"`
	Scorer  ScorerConfig  `yaml:"scorer"`
	Signals SignalsConfig `yaml:"signals"`
	Stream  StreamConfig  `yaml:"stream"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// PricingConfig is the full tunable surface of the simulation and
// recommendation formulas.
type PricingConfig struct {
	TickQuantum time.Duration `yaml:"tick_quantum"`

	EMAAlpha float64 `yaml:"ema_alpha"`

	UpdatePercentMin float64 `yaml:"update_percent_min"`
	UpdatePercentMax float64 `yaml:"update_percent_max"`

	PriceDeltaMin      float64 `yaml:"price_delta_min"`
	PriceDeltaMax      float64 `yaml:"price_delta_max"`
	CompetitorDeltaMin float64 `yaml:"competitor_delta_min"`
	CompetitorDeltaMax float64 `yaml:"competitor_delta_max"`
	DemandDeltaMax     float64 `yaml:"demand_delta_max"`
	DemandMin          float64 `yaml:"demand_min"`
	DemandMax          float64 `yaml:"demand_max"`

	// Weighted formula: alpha*competitor + beta*minPrice + gamma*competitor*demand.
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`

	// CeilingPct bounds the recommendation; SimCeilingPct bounds the
	// simulated walk. The walk needs more headroom than the business
	// recommendation, hence two knobs.
	CeilingPct    float64 `yaml:"ceiling_pct"`
	SimCeilingPct float64 `yaml:"sim_ceiling_pct"`

	DesiredMargin float64 `yaml:"desired_margin"`
	CostRatio     float64 `yaml:"cost_ratio"`

	StateTTL time.Duration `yaml:"state_ttl"`
	DemoSeed int64         `yaml:"demo_seed"`
}

type ScorerConfig struct {
	URL           string        `yaml:"url"`
	Timeout       time.Duration `yaml:"timeout"`
	HealthTimeout time.Duration `yaml:"health_timeout"`
}

type SignalsConfig struct {
	Platforms        []string      `yaml:"platforms"`
	PageSize         int           `yaml:"page_size"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	DemandSalesScale float64       `yaml:"demand_sales_scale"`
	WarmQueries      []string      `yaml:"warm_queries"`
	WarmSchedule     string        `yaml:"warm_schedule"`
}

type StreamConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxDuration  time.Duration `yaml:"max_duration"`
	RetryMS      int           `yaml:"retry_ms"`
	MaxProducts  int           `yaml:"max_products"`
}

type CatalogConfig struct {
	ProductsPerPlatform int `yaml:"products_per_platform"`
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

	if v := os.Getenv("SCORER_URL"); v != "" {
		c.Scorer.URL = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("PLATFORMS"); v != "" {
		c.Signals.Platforms = util.SplitCSV(v)
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	c.Stream.MaxProducts = util.ParseIntDefault(os.Getenv("MAX_PRODUCTS"), c.Stream.MaxProducts)
	c.Redis.Enabled = util.ParseBoolDefault(os.Getenv("REDIS_ENABLED"), c.Redis.Enabled)

	return c, nil
}

// Default returns a fully defaulted config, used by tests and as the base
// when no file is given.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Backend.Type = "none"
	c.applyDefaults()
	return &c
}

// applyDefaults fills zero values with the reference behavior. Durations are
// defaulted here rather than in YAML so the file can stay sparse.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// long enough for a full SSE stream lifetime
		c.Server.WriteTimeout = 6 * time.Minute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
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
	if c.Backend.Type == "" {
		c.Backend.Type = "none"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Kafka.MaxAttempts == 0 {
		c.Kafka.MaxAttempts = 3
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "pricepulse"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "pricepulse"
	}
	if c.ClickHouse.DialTimeout == 0 {
		c.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.ClickHouse.ReadTimeout == 0 {
		c.ClickHouse.ReadTimeout = 10 * time.Second
	}

	p := &c.Pricing
	if p.TickQuantum == 0 {
		p.TickQuantum = 3 * time.Second
	}
	if p.EMAAlpha == 0 {
		p.EMAAlpha = 0.3
	}
	if p.UpdatePercentMin == 0 {
		p.UpdatePercentMin = 0.05
	}
	if p.UpdatePercentMax == 0 {
		p.UpdatePercentMax = 0.15
	}
	if p.PriceDeltaMin == 0 {
		p.PriceDeltaMin = 0.002
	}
	if p.PriceDeltaMax == 0 {
		p.PriceDeltaMax = 0.015
	}
	if p.CompetitorDeltaMin == 0 {
		p.CompetitorDeltaMin = 0.01
	}
	if p.CompetitorDeltaMax == 0 {
		p.CompetitorDeltaMax = 0.02
	}
	if p.DemandDeltaMax == 0 {
		p.DemandDeltaMax = 0.05
	}
	if p.DemandMin == 0 {
		p.DemandMin = 0.1
	}
	if p.DemandMax == 0 {
		p.DemandMax = 0.95
	}
	if p.Alpha == 0 {
		p.Alpha = 0.65
	}
	if p.Beta == 0 {
		p.Beta = 0.35
	}
	if p.Gamma == 0 {
		p.Gamma = 0.05
	}
	if p.CeilingPct == 0 {
		p.CeilingPct = 0.07
	}
	if p.SimCeilingPct == 0 {
		p.SimCeilingPct = 0.15
	}
	if p.DesiredMargin == 0 {
		p.DesiredMargin = 0.3
	}
	if p.CostRatio == 0 {
		p.CostRatio = 0.6
	}
	if p.StateTTL == 0 {
		p.StateTTL = 30 * time.Minute
	}
	if p.DemoSeed == 0 {
		p.DemoSeed = 42
	}

	if c.Scorer.Timeout == 0 {
		c.Scorer.Timeout = 3 * time.Second
	}
	if c.Scorer.HealthTimeout == 0 {
		c.Scorer.HealthTimeout = 2 * time.Second
	}

	s := &c.Signals
	if len(s.Platforms) == 0 {
		s.Platforms = []string{"shopee", "lazada", "tiktok"}
	}
	if s.PageSize == 0 {
		s.PageSize = 20
	}
	if s.CacheTTL == 0 {
		s.CacheTTL = 30 * time.Minute
	}
	if s.DemandSalesScale == 0 {
		s.DemandSalesScale = 50000
	}
	if s.WarmSchedule == "" {
		s.WarmSchedule = "*/30 * * * *"
	}

	st := &c.Stream
	if st.PollInterval == 0 {
		st.PollInterval = 100 * time.Millisecond
	}
	if st.MaxDuration == 0 {
		st.MaxDuration = 300 * time.Second
	}
	if st.RetryMS == 0 {
		st.RetryMS = 3000
	}
	if st.MaxProducts == 0 {
		st.MaxProducts = 100
	}

	if c.Catalog.ProductsPerPlatform == 0 {
		c.Catalog.ProductsPerPlatform = 60
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("backend.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when backend.type=kafka")
	}
	if c.Backend.Type == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when backend.type=clickhouse")
	}
	p := c.Pricing
	if p.EMAAlpha <= 0 || p.EMAAlpha > 1 {
		return fmt.Errorf("pricing.ema_alpha must be in (0,1]")
	}
	if p.PriceDeltaMin > p.PriceDeltaMax {
		return fmt.Errorf("pricing.price_delta_min must not exceed price_delta_max")
	}
	if p.UpdatePercentMin > p.UpdatePercentMax {
		return fmt.Errorf("pricing.update_percent_min must not exceed update_percent_max")
	}
	if p.DemandMin >= p.DemandMax {
		return fmt.Errorf("pricing.demand_min must be below demand_max")
	}
	return nil
}
