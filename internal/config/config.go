package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the compliance service
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Compliance    ComplianceConfig    `mapstructure:"compliance"`
	Screening     ScreeningConfig     `mapstructure:"screening"`
	Rates         RatesConfig         `mapstructure:"rates"`
	Collaborators CollaboratorsConfig `mapstructure:"collaborators"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
	Security      SecurityConfig      `mapstructure:"security"`
}

// CollaboratorsConfig holds the endpoints of the collaborating services
type CollaboratorsConfig struct {
	TransactionServiceURL string        `mapstructure:"transaction_service_url"`
	CustomerServiceURL    string        `mapstructure:"customer_service_url"`
	DocumentServiceURL    string        `mapstructure:"document_service_url"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds Redis configuration for the rate cache
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateCacheTTL time.Duration `mapstructure:"rate_cache_ttl"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ReportedTopic string   `mapstructure:"reported_topic"`
	AuditTopic    string   `mapstructure:"audit_topic"`
}

// ComplianceConfig holds the statutory thresholds and windows
type ComplianceConfig struct {
	LCTRThreshold       float64       `mapstructure:"lctr_threshold"`
	EnhancedThreshold   float64       `mapstructure:"enhanced_threshold"`
	LCTRDeadlineDays    int           `mapstructure:"lctr_deadline_days"`
	STRDeadlineDays     int           `mapstructure:"str_deadline_days"`
	RetentionYears      int           `mapstructure:"retention_years"`
	RiskReviewDays      int           `mapstructure:"risk_review_days"`
	DueSoonHorizon      time.Duration `mapstructure:"due_soon_horizon"`
	LookupTimeout       time.Duration `mapstructure:"lookup_timeout"`
	BreakerMaxFailures  uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenInterval time.Duration `mapstructure:"breaker_open_interval"`
}

// ScreeningConfig holds suspicious-activity screening configuration
type ScreeningConfig struct {
	StructuringAmounts []float64 `mapstructure:"structuring_amounts"`
	GiftThreshold      float64   `mapstructure:"gift_threshold"`
	HighRiskCountries  []string  `mapstructure:"high_risk_countries"`
}

// RatesConfig holds currency conversion configuration
type RatesConfig struct {
	ReferenceCurrency string             `mapstructure:"reference_currency"`
	StaticTable       map[string]float64 `mapstructure:"static_table"`
	SourceVersion     string             `mapstructure:"source_version"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName   string  `mapstructure:"service_name"`
	Environment   string  `mapstructure:"environment"`
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	SamplingRatio float64 `mapstructure:"sampling_ratio"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load loads configuration from environment and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COMPLIANCE_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/compliance-service")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults + env
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "compliance_db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "1s")
	v.SetDefault("redis.write_timeout", "1s")
	v.SetDefault("redis.rate_cache_ttl", "15m")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.reported_topic", "compliance.transaction.reported")
	v.SetDefault("kafka.audit_topic", "compliance.audit.logs")

	// Compliance defaults (FINTRAC statutory values)
	v.SetDefault("compliance.lctr_threshold", 10000.0)
	v.SetDefault("compliance.enhanced_threshold", 3000.0)
	v.SetDefault("compliance.lctr_deadline_days", 15)
	v.SetDefault("compliance.str_deadline_days", 30)
	v.SetDefault("compliance.retention_years", 5)
	v.SetDefault("compliance.risk_review_days", 90)
	v.SetDefault("compliance.due_soon_horizon", "72h")
	v.SetDefault("compliance.lookup_timeout", "2s")
	v.SetDefault("compliance.breaker_max_failures", 5)
	v.SetDefault("compliance.breaker_open_interval", "30s")

	// Screening defaults
	v.SetDefault("screening.structuring_amounts", []float64{9999.0, 9999.99})
	v.SetDefault("screening.gift_threshold", 50000.0)
	v.SetDefault("screening.high_risk_countries", []string{
		"IR", "KP", "SY", "CU", "MM", "AF", "YE",
	})

	// Rates defaults (static table is the dev fallback source)
	v.SetDefault("rates.reference_currency", "CAD")
	v.SetDefault("rates.source_version", "static-v1")
	v.SetDefault("rates.static_table", map[string]float64{
		"CAD": 1.0,
		"USD": 1.36,
		"EUR": 1.47,
		"GBP": 1.72,
		"JPY": 0.0091,
		"MXN": 0.079,
	})

	// Collaborator defaults
	v.SetDefault("collaborators.transaction_service_url", "http://localhost:8081")
	v.SetDefault("collaborators.customer_service_url", "http://localhost:8082")
	v.SetDefault("collaborators.document_service_url", "http://localhost:8083")
	v.SetDefault("collaborators.timeout", "5s")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "compliance-service")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 0.1)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})
}
