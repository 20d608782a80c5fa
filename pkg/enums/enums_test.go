package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoanStatus(t *testing.T) {
	status, err := ParseLoanStatus("disbursed")
	require.NoError(t, err)
	assert.Equal(t, LoanStatusDisbursed, status)

	_, err = ParseLoanStatus("DISBURSED")
	require.Error(t, err)
}

func TestLoanStatusIsTerminal(t *testing.T) {
	cases := map[LoanStatus]bool{
		LoanStatusPending:   false,
		LoanStatusApproved:  false,
		LoanStatusDisbursed: false,
		LoanStatusRejected:  true,
		LoanStatusClosed:    true,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.IsTerminal(), string(status))
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, InterestMethodReducing.IsValid())
	assert.False(t, InterestMethod("compound").IsValid())
	assert.True(t, PaymentMethodMobileMoney.IsValid())
	assert.False(t, PaymentMethod("card").IsValid())
	assert.True(t, TermUnitYears.IsValid())
	assert.True(t, RateBasisPerPeriod.IsValid())
	assert.True(t, JournalEventPaymentVoid.IsValid())
	assert.True(t, EventLoanToppedUp.IsValid())
	assert.False(t, OutboxAggregateType("store").IsValid())

	_, err := ParseRepaymentFrequency("daily")
	require.Error(t, err)
}
