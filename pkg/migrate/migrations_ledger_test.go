package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/loanledger/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLedgerMigrationEnforcesSingleSidedLines(t *testing.T) {
	content := readMigration(t, "create_journal_ledger")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS journal_entries",
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"account_id uuid NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT",
		"((debit > 0) <> (credit > 0))",
		"ux_journal_entries_reversal",
		"DROP TABLE IF EXISTS ledger_entries",
	})
}

func TestPaymentsMigrationHasReferenceIndex(t *testing.T) {
	content := readMigration(t, "create_loan_payments")
	assertContains(t, content, []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_loan_payments_reference",
		"ON loan_payments (loan_id, method, reference)",
		"WHERE reference IS NOT NULL",
		"CHECK (amount_paid > 0)",
	})
}

func TestLoansMigrationHasScheduleConstraints(t *testing.T) {
	content := readMigration(t, "create_loans")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS loans",
		"CREATE TABLE IF NOT EXISTS loan_schedule_periods",
		"UNIQUE (loan_id, period)",
		"CHECK (outstanding >= 0)",
		"DROP TABLE IF EXISTS loans",
	})
}

func TestAccountsMigrationSeedsChart(t *testing.T) {
	content := readMigration(t, "create_accounts")
	for _, code := range []string{"'1000'", "'1010'", "'1020'", "'1200'", "'4000'", "'4100'", "'4200'", "'5100'"} {
		if !strings.Contains(content, code) {
			t.Errorf("account %s not seeded", code)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}
