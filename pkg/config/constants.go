package config

// EnvPrefix is handed to envconfig; every field carries its full variable name
// in the struct tag so the prefix only matters for error messages.
const EnvPrefix = "LOANLEDGER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv            = "LOANLEDGER_APP_ENV"
	EnvPort              = "LOANLEDGER_APP_PORT"
	EnvDBDSN             = "LOANLEDGER_DB_DSN"
	EnvDBHost            = "LOANLEDGER_DB_HOST"
	EnvDBUser            = "LOANLEDGER_DB_USER"
	EnvDBName            = "LOANLEDGER_DB_NAME"
	EnvDBPassword        = "LOANLEDGER_DB_PASSWORD"
	EnvRedisURL          = "LOANLEDGER_REDIS_URL"
	EnvMoneyScale        = "LOANLEDGER_MONEY_SCALE"
	EnvRoundingTolerance = "LOANLEDGER_ROUNDING_TOLERANCE"
	EnvLockTimeout       = "LOANLEDGER_LOCK_TIMEOUT"
	EnvPenaltyRate       = "LOANLEDGER_OVERDUE_PENALTY_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
