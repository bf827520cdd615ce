package config

const EnvPrefix = "SMARTDUKA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	TxModeAuto = "auto"
	TxModeOn   = "on"
	TxModeOff  = "off"
)

const fallbackTaxRate = "0.16"

const (
	EnvAppEnv    = "SMARTDUKA_APP_ENV"
	EnvPort      = "SMARTDUKA_APP_PORT"
	EnvDBDSN     = "SMARTDUKA_DB_DSN"
	EnvDBHost    = "SMARTDUKA_DB_HOST"
	EnvDBUser    = "SMARTDUKA_DB_USER"
	EnvDBName    = "SMARTDUKA_DB_NAME"
	EnvDBTxMode  = "SMARTDUKA_DB_TX_MODE"
	EnvRedisURL  = "SMARTDUKA_REDIS_URL"
	EnvJWTSecret = "SMARTDUKA_JWT_SECRET"
	EnvJWTIssuer = "SMARTDUKA_JWT_ISSUER"
	EnvUseSQLite = "SMARTDUKA_USE_SQLITE"
	EnvTaxRate   = "SMARTDUKA_DEFAULT_TAX_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
