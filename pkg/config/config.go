package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Engine       EngineConfig
	Accounts     AccountsConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOANLEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"LOANLEDGER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LOANLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOANLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOANLEDGER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"LOANLEDGER_DB_DSN"`

	LegacyHost     string `envconfig:"LOANLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"LOANLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOANLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"LOANLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOANLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOANLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOANLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOANLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOANLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOANLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"LOANLEDGER_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOANLEDGER_REDIS_URL"`
	Address      string        `envconfig:"LOANLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"LOANLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOANLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOANLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOANLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOANLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOANLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOANLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RateLimitConfig throttles mutating API calls per tenant. A zero limit
// disables the check.
type RateLimitConfig struct {
	Window         time.Duration `envconfig:"LOANLEDGER_RATE_LIMIT_WINDOW" default:"1m"`
	TenantLimit    int           `envconfig:"LOANLEDGER_RATE_LIMIT_TENANT" default:"600"`
	IdempotencyTTL time.Duration `envconfig:"LOANLEDGER_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate         bool `envconfig:"LOANLEDGER_AUTO_MIGRATE" default:"false"`
	AutoApprovePayments bool `envconfig:"LOANLEDGER_AUTO_APPROVE_PAYMENTS" default:"false"`
}

// EngineConfig carries the numeric settings handed explicitly to the schedule
// generator and the payment allocator.
type EngineConfig struct {
	DefaultCurrency   string          `envconfig:"LOANLEDGER_DEFAULT_CURRENCY" default:"UGX"`
	Scale             int32           `envconfig:"LOANLEDGER_MONEY_SCALE" default:"2"`
	RoundingTolerance decimal.Decimal `envconfig:"LOANLEDGER_ROUNDING_TOLERANCE" default:"0.01"`
	LockTimeout       time.Duration   `envconfig:"LOANLEDGER_LOCK_TIMEOUT" default:"5s"`
}

func (e EngineConfig) validate() error {
	if e.Scale < 0 || e.Scale > 6 {
		return fmt.Errorf("%s must be between 0 and 6", EnvMoneyScale)
	}
	if e.RoundingTolerance.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvRoundingTolerance)
	}
	return nil
}

// AccountsConfig maps posting roles onto chart-of-accounts codes.
type AccountsConfig struct {
	LoanReceivable  string `envconfig:"LOANLEDGER_ACCOUNT_LOAN_RECEIVABLE" default:"1200"`
	Cash            string `envconfig:"LOANLEDGER_ACCOUNT_CASH" default:"1000"`
	Bank            string `envconfig:"LOANLEDGER_ACCOUNT_BANK" default:"1010"`
	MobileMoney     string `envconfig:"LOANLEDGER_ACCOUNT_MOBILE_MONEY" default:"1020"`
	InterestIncome  string `envconfig:"LOANLEDGER_ACCOUNT_INTEREST_INCOME" default:"4000"`
	FeeIncome       string `envconfig:"LOANLEDGER_ACCOUNT_FEE_INCOME" default:"4100"`
	PenaltyIncome   string `envconfig:"LOANLEDGER_ACCOUNT_PENALTY_INCOME" default:"4200"`
	LoanLossExpense string `envconfig:"LOANLEDGER_ACCOUNT_LOAN_LOSS_EXPENSE" default:"5100"`
	// BorrowerCredit holds money received beyond what a loan owed.
	BorrowerCredit string `envconfig:"LOANLEDGER_ACCOUNT_BORROWER_CREDIT" default:"2100"`
}

type CronConfig struct {
	Interval           time.Duration   `envconfig:"LOANLEDGER_CRON_INTERVAL" default:"1h"`
	OverdueGraceDays   int             `envconfig:"LOANLEDGER_OVERDUE_GRACE_DAYS" default:"0"`
	OverduePenaltyRate decimal.Decimal `envconfig:"LOANLEDGER_OVERDUE_PENALTY_RATE" default:"0"`
	BatchSize          int             `envconfig:"LOANLEDGER_OVERDUE_BATCH_SIZE" default:"200"`
	// ActorID is recorded as the actor on changes made by the sweep.
	ActorID             uuid.UUID `envconfig:"LOANLEDGER_CRON_ACTOR_ID" default:"00000000-0000-0000-0000-00000000c0de"`
	OutboxRetentionDays int       `envconfig:"LOANLEDGER_OUTBOX_RETENTION_DAYS" default:"30"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LOANLEDGER_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	LoanEventsTopic    string `envconfig:"LOANLEDGER_PUBSUB_LOAN_EVENTS_TOPIC" default:"loan-events"`
	PaymentEventsTopic string `envconfig:"LOANLEDGER_PUBSUB_PAYMENT_EVENTS_TOPIC" default:"payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LOANLEDGER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LOANLEDGER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LOANLEDGER_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
