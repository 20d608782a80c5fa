// Package testdb opens throwaway SQLite databases carrying the loan ledger
// schema for repository and service tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Money columns are TEXT so decimals round-trip without float conversion.
var schema = []string{`
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  parent_id TEXT REFERENCES accounts(id),
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS loans (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  branch_id TEXT,
  borrower_id TEXT NOT NULL,
  product_id TEXT,
  currency TEXT NOT NULL,
  amount TEXT NOT NULL,
  interest_rate TEXT NOT NULL,
  rate_basis TEXT NOT NULL,
  term_value INTEGER NOT NULL,
  term_unit TEXT NOT NULL,
  repayment_frequency TEXT NOT NULL,
  interest_method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  outstanding TEXT NOT NULL DEFAULT '0',
  total_paid TEXT NOT NULL DEFAULT '0',
  total_interest TEXT NOT NULL DEFAULT '0',
  total_charges TEXT NOT NULL DEFAULT '0',
  written_off TEXT NOT NULL DEFAULT '0',
  rescheduled_from_id TEXT,
  top_up_of_id TEXT,
  superseded_by_id TEXT,
  initiated_by TEXT NOT NULL,
  approved_by TEXT,
  approval_date DATETIME,
  rejected_by TEXT,
  rejection_date DATETIME,
  reject_reason TEXT,
  disbursed_by TEXT,
  disbursement_date DATETIME,
  disbursement_method TEXT,
  closed_by TEXT,
  closed_at DATETIME,
  close_reason TEXT,
  close_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS loan_schedule_periods (
  id TEXT PRIMARY KEY,
  loan_id TEXT NOT NULL REFERENCES loans(id),
  tenant_id TEXT NOT NULL,
  period INTEGER NOT NULL,
  due_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'upcoming',
  principal TEXT NOT NULL,
  interest TEXT NOT NULL,
  fees TEXT NOT NULL DEFAULT '0',
  penalties TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  principal_paid TEXT NOT NULL DEFAULT '0',
  interest_paid TEXT NOT NULL DEFAULT '0',
  fees_paid TEXT NOT NULL DEFAULT '0',
  penalties_paid TEXT NOT NULL DEFAULT '0',
  paid TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (loan_id, period)
);`, `
CREATE TABLE IF NOT EXISTS loan_payments (
  id TEXT PRIMARY KEY,
  loan_id TEXT NOT NULL REFERENCES loans(id),
  tenant_id TEXT NOT NULL,
  branch_id TEXT,
  currency TEXT NOT NULL,
  amount_paid TEXT NOT NULL,
  payment_date DATETIME NOT NULL,
  method TEXT NOT NULL,
  reference TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  applied BOOLEAN NOT NULL DEFAULT 0,
  allocation TEXT,
  note TEXT,
  recorded_by TEXT NOT NULL,
  approved_by TEXT,
  approved_at DATETIME,
  rejected_by TEXT,
  rejected_at DATETIME,
  reject_reason TEXT,
  voided_by TEXT,
  voided_at DATETIME,
  void_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS ux_loan_payments_reference
  ON loan_payments (loan_id, method, reference) WHERE reference IS NOT NULL;`, `
CREATE TABLE IF NOT EXISTS journal_entries (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  branch_id TEXT,
  loan_id TEXT NOT NULL REFERENCES loans(id),
  payment_id TEXT REFERENCES loan_payments(id),
  reversal_of_id TEXT REFERENCES journal_entries(id),
  event_type TEXT NOT NULL,
  entry_date DATETIME NOT NULL,
  currency TEXT NOT NULL,
  description TEXT NOT NULL,
  posted_by TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  journal_id TEXT NOT NULL REFERENCES journal_entries(id),
  account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT,
  loan_id TEXT NOT NULL,
  period_id TEXT,
  bucket TEXT NOT NULL,
  debit TEXT NOT NULL DEFAULT '0',
  credit TEXT NOT NULL DEFAULT '0',
  memo TEXT,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`, `
CREATE TABLE IF NOT EXISTS outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  tenant_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json BLOB NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`,
}

// New returns an isolated in-memory database with every table created.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// DefaultChart mirrors the accounts seeded by the migrations.
var DefaultChart = []models.Account{
	{Code: "1000", Name: "Cash on hand", Type: enums.AccountTypeCash},
	{Code: "1010", Name: "Bank", Type: enums.AccountTypeBank},
	{Code: "1020", Name: "Mobile money float", Type: enums.AccountTypeCash},
	{Code: "1200", Name: "Loans receivable", Type: enums.AccountTypeAsset},
	{Code: "4000", Name: "Interest income", Type: enums.AccountTypeIncome},
	{Code: "4100", Name: "Fee income", Type: enums.AccountTypeIncome},
	{Code: "4200", Name: "Penalty income", Type: enums.AccountTypeIncome},
	{Code: "5100", Name: "Loan loss expense", Type: enums.AccountTypeExpense},
	{Code: "2100", Name: "Borrower credit balances", Type: enums.AccountTypeLiability},
}

// SeedChart inserts DefaultChart and returns the rows keyed by code.
func SeedChart(t testing.TB, db *gorm.DB) map[string]models.Account {
	t.Helper()
	out := make(map[string]models.Account, len(DefaultChart))
	for _, account := range DefaultChart {
		row := account
		row.ID = uuid.New()
		require.NoError(t, db.Create(&row).Error)
		out[row.Code] = row
	}
	return out
}

// SeedLoan inserts a disbursed monthly flat loan of 1,200,000 and lets the
// caller adjust it before the insert.
func SeedLoan(t testing.TB, db *gorm.DB, mutate ...func(*models.Loan)) models.Loan {
	t.Helper()
	disbursed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	method := enums.PaymentMethodBank
	actor := uuid.New()
	loan := models.Loan{
		ID:                 uuid.New(),
		TenantID:           uuid.New(),
		BorrowerID:         uuid.New(),
		Currency:           "UGX",
		Amount:             decimal.RequireFromString("1200000"),
		InterestRate:       decimal.RequireFromString("2"),
		RateBasis:          enums.RateBasisPerPeriod,
		TermValue:          12,
		TermUnit:           enums.TermUnitMonths,
		RepaymentFrequency: enums.RepaymentFrequencyMonthly,
		InterestMethod:     enums.InterestMethodFlat,
		Status:             enums.LoanStatusDisbursed,
		InitiatedBy:        actor,
		DisbursedBy:        &actor,
		DisbursementDate:   &disbursed,
		DisbursementMethod: &method,
	}
	for _, fn := range mutate {
		fn(&loan)
	}
	require.NoError(t, db.Create(&loan).Error)
	return loan
}
