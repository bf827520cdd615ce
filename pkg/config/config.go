package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = cfg.DB.SQLitePath
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validateTxMode(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTDUKA_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTDUKA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMARTDUKA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTDUKA_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SMARTDUKA_LOG_FORMAT" default:"json"`
	// CORSOrigins is a comma separated list of till and back-office origins.
	CORSOrigins []string `envconfig:"SMARTDUKA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SMARTDUKA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"SMARTDUKA_DB_DSN"`
	Driver     string `envconfig:"SMARTDUKA_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"SMARTDUKA_SQLITE_PATH" default:"smartduka.db"`

	LegacyHost     string `envconfig:"SMARTDUKA_DB_HOST"`
	LegacyPort     int    `envconfig:"SMARTDUKA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMARTDUKA_DB_USER"`
	LegacyPassword string `envconfig:"SMARTDUKA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMARTDUKA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMARTDUKA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTDUKA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTDUKA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTDUKA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTDUKA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// TxMode is auto (probe the server), on, or off.
	TxMode            string        `envconfig:"SMARTDUKA_DB_TX_MODE" default:"auto"`
	TxCommitTimeout   time.Duration `envconfig:"SMARTDUKA_DB_TX_COMMIT_TIMEOUT" default:"10s"`
	TxRetries         int           `envconfig:"SMARTDUKA_DB_TX_RETRIES" default:"1"`
	SynchronousCommit string        `envconfig:"SMARTDUKA_DB_SYNCHRONOUS_COMMIT"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTDUKA_REDIS_URL"`
	Address      string        `envconfig:"SMARTDUKA_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTDUKA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTDUKA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTDUKA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTDUKA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTDUKA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTDUKA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTDUKA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether an external cache endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CacheConfig struct {
	SweepInterval time.Duration `envconfig:"SMARTDUKA_CACHE_SWEEP_INTERVAL" default:"60s"`
	ScanBatchSize int64         `envconfig:"SMARTDUKA_CACHE_SCAN_BATCH" default:"200"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTDUKA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTDUKA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SMARTDUKA_JWT_EXPIRATION_MINUTES" default:"720"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SMARTDUKA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SMARTDUKA_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	DefaultTaxRate string `envconfig:"SMARTDUKA_DEFAULT_TAX_RATE" default:"0.16"`
	LowStockAlerts bool   `envconfig:"SMARTDUKA_LOW_STOCK_ALERTS" default:"true"`
}

// TaxRate parses the configured default tax rate, falling back to 16%.
func (c CheckoutConfig) TaxRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.DefaultTaxRate))
	if err != nil || rate.IsNegative() {
		return decimal.RequireFromString(fallbackTaxRate)
	}
	return rate
}

type GCPConfig struct {
	ProjectID string `envconfig:"SMARTDUKA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	ActivityTopic string `envconfig:"SMARTDUKA_PUBSUB_ACTIVITY_TOPIC" default:"smartduka-activity"`
	// StockTopic, when set, carries product events instead of the activity topic.
	StockTopic string `envconfig:"SMARTDUKA_PUBSUB_STOCK_TOPIC"`
}

// Topics lists every configured topic, activity first.
func (c PubSubConfig) Topics() []string {
	topics := []string{c.ActivityTopic}
	if stock := strings.TrimSpace(c.StockTopic); stock != "" && stock != c.ActivityTopic {
		topics = append(topics, stock)
	}
	return topics
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"SMARTDUKA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"SMARTDUKA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"SMARTDUKA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"SMARTDUKA_OUTBOX_METRICS_ADDR" default:":9102"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

func (db *DBConfig) validateTxMode() error {
	mode := strings.ToLower(strings.TrimSpace(db.TxMode))
	switch mode {
	case "":
		db.TxMode = TxModeAuto
	case TxModeAuto, TxModeOn, TxModeOff:
		db.TxMode = mode
	default:
		return fmt.Errorf("%s must be one of auto, on, off (got %q)", EnvDBTxMode, db.TxMode)
	}
	return nil
}
