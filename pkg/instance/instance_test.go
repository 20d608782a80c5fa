package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersExplicitValue(t *testing.T) {
	t.Setenv("HOSTNAME", "pod-7")
	t.Setenv("DYNO", "")
	t.Setenv("LOANLEDGER_INSTANCE_ID", "")
	assert.Equal(t, "pod-7", GetID())

	t.Setenv("LOANLEDGER_INSTANCE_ID", "  ledger-api-1 ")
	assert.Equal(t, "ledger-api-1", GetID())
}

func TestGetIDFallsBackToLocal(t *testing.T) {
	t.Setenv("LOANLEDGER_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	assert.Equal(t, "local", GetID())
}
