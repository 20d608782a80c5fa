package loans

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	all := []enums.LoanStatus{
		enums.LoanStatusPending,
		enums.LoanStatusApproved,
		enums.LoanStatusRejected,
		enums.LoanStatusDisbursed,
		enums.LoanStatusClosed,
	}
	legal := map[[2]enums.LoanStatus]bool{
		{enums.LoanStatusPending, enums.LoanStatusApproved}:   true,
		{enums.LoanStatusPending, enums.LoanStatusRejected}:   true,
		{enums.LoanStatusApproved, enums.LoanStatusDisbursed}: true,
		{enums.LoanStatusApproved, enums.LoanStatusRejected}:  true,
		{enums.LoanStatusDisbursed, enums.LoanStatusClosed}:   true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]enums.LoanStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	for _, terminal := range []enums.LoanStatus{enums.LoanStatusRejected, enums.LoanStatusClosed} {
		assert.Empty(t, Allowed(terminal))
		assert.True(t, terminal.IsTerminal())
	}
}

func TestCheckTransitionDetails(t *testing.T) {
	loanID := uuid.New()
	err := checkTransition(loanID, enums.LoanStatusPending, enums.LoanStatusDisbursed)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInvalidTransition, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, loanID, details["loan_id"])
	assert.Equal(t, enums.LoanStatusPending, details["current"])
	assert.Equal(t, enums.LoanStatusDisbursed, details["target"])
	assert.Equal(t, []enums.LoanStatus{enums.LoanStatusApproved, enums.LoanStatusRejected}, details["allowed"])

	assert.NoError(t, checkTransition(loanID, enums.LoanStatusApproved, enums.LoanStatusDisbursed))
}

func TestAllowedReturnsCopy(t *testing.T) {
	next := Allowed(enums.LoanStatusPending)
	next[0] = enums.LoanStatusClosed
	assert.True(t, CanTransition(enums.LoanStatusPending, enums.LoanStatusApproved))
}
