// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Camunda   CamundaConfig             `mapstructure:"camunda"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Ledger    LedgerConfig              `mapstructure:"ledger"`
	Providers map[string]ProviderConfig `mapstructure:"providers" validate:"dive"`
	Waterfall WaterfallConfig           `mapstructure:"waterfall"`
	Scoring   ScoringConfig             `mapstructure:"scoring"`
	Workers   map[string]WorkerConfig   `mapstructure:"workers" validate:"dive"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	AWS       AWSConfig                 `mapstructure:"aws"`
	Server    ServerConfig              `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address" validate:"required"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active" validate:"gte=1"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Enrichment Configuration ---

const (
	LedgerMemory   = "memory"
	LedgerRedis    = "redis"
	LedgerPostgres = "postgres"
)

// LedgerConfig selects where client credit balances live.
type LedgerConfig struct {
	Backend             string             `mapstructure:"backend" validate:"oneof=memory redis postgres"`
	ChargeLogLength     int64              `mapstructure:"charge_log_length" validate:"gte=0"`
	LowBalanceThreshold float64            `mapstructure:"low_balance_threshold" validate:"gte=0"`
	AlertTopicARN       string             `mapstructure:"alert_topic_arn"`
	InitialBalances     map[string]float64 `mapstructure:"initial_balances"` // memory backend only
}

const (
	ProviderKindREST        = "rest"
	ProviderKindSearchIndex = "search_index"
)

// ProviderConfig describes one data source. The map key is the provider
// name.
type ProviderConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	Kind         string            `mapstructure:"kind" validate:"oneof=rest search_index"`
	Priority     int               `mapstructure:"priority"`
	Capabilities []string          `mapstructure:"capabilities" validate:"required,min=1,dive,oneof=company_search company_enrich people_search people_enrich email_find email_verify"`
	BaseURL      string            `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey       string            `mapstructure:"api_key"`
	APIKeyHeader string            `mapstructure:"api_key_header"`
	Endpoints    map[string]string `mapstructure:"endpoints"`
	Index        string            `mapstructure:"index"`
	PerSecond    int               `mapstructure:"per_second" validate:"gte=0"`
	PerMinute    int               `mapstructure:"per_minute" validate:"gte=0"`
	CreditCost   float64           `mapstructure:"credit_cost" validate:"gte=0"`
	MissCost     float64           `mapstructure:"miss_cost" validate:"gte=0"`
	Timeout      int               `mapstructure:"timeout"` // milliseconds
}

// WaterfallConfig holds the orchestrator defaults.
type WaterfallConfig struct {
	QualityThreshold *float64 `mapstructure:"quality_threshold" validate:"omitempty,gte=0,lte=1"`
	MaxProviders     int      `mapstructure:"max_providers" validate:"gte=0"`
	RequiredFields   []string `mapstructure:"required_fields"`
}

type ScoringConfig struct {
	Weights          ScoringWeights     `mapstructure:"weights"`
	SignalPriorities map[string]float64 `mapstructure:"signal_priorities"`
}

type ScoringWeights struct {
	ICPFit         float64 `mapstructure:"icp_fit" validate:"gte=0"`
	Signals        float64 `mapstructure:"signals" validate:"gte=0"`
	Originality    float64 `mapstructure:"originality" validate:"gte=0"`
	CostEfficiency float64 `mapstructure:"cost_efficiency" validate:"gte=0"`
}

// IsZero reports whether no weight was configured.
func (w ScoringWeights) IsZero() bool {
	return w.ICPFit == 0 && w.Signals == 0 && w.Originality == 0 && w.CostEfficiency == 0
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active" validate:"gte=0"`
	Timeout       int  `mapstructure:"timeout" validate:"gte=0"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries" validate:"gte=0"` // For error handling
}

// AWSConfig configures the SNS client used for low balance alerts. Endpoint
// overrides the AWS endpoint, e.g. for localstack.
type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// ServerConfig is the health and metrics listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output string `mapstructure:"output"`
}
