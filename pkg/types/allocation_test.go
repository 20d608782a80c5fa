package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

func TestAllocationTotals(t *testing.T) {
	alloc := Allocation{
		Lines: []AllocationLine{
			{Period: 1, Penalties: decimal.RequireFromString("5"), Interest: decimal.RequireFromString("50"), Principal: decimal.RequireFromString("100")},
			{Period: 2, Fees: decimal.RequireFromString("2.50"), Interest: decimal.RequireFromString("10.25")},
		},
		Unallocated: decimal.RequireFromString("1.75"),
	}

	assert.True(t, alloc.Applied().Equal(decimal.RequireFromString("167.75")))
	totals := alloc.Totals()
	assert.True(t, totals.Penalties.Equal(decimal.NewFromInt(5)))
	assert.True(t, totals.Fees.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, totals.Interest.Equal(decimal.RequireFromString("60.25")))
	assert.True(t, totals.Principal.Equal(decimal.NewFromInt(100)))
}

func TestAllocationScanAcceptsStringAndBytes(t *testing.T) {
	periodID := uuid.New()
	original := Allocation{
		Lines: []AllocationLine{{
			PeriodID:    periodID,
			Period:      3,
			Interest:    decimal.RequireFromString("12.34"),
			Principal:   decimal.RequireFromString("0.66"),
			PriorStatus: enums.PeriodStatusOverdue,
		}},
		Unallocated: decimal.Zero,
	}
	raw, err := original.Value()
	require.NoError(t, err)

	var fromBytes Allocation
	require.NoError(t, fromBytes.Scan(raw))
	require.Len(t, fromBytes.Lines, 1)
	assert.Equal(t, periodID, fromBytes.Lines[0].PeriodID)
	assert.Equal(t, enums.PeriodStatusOverdue, fromBytes.Lines[0].PriorStatus)
	assert.True(t, fromBytes.Lines[0].Interest.Equal(decimal.RequireFromString("12.34")))

	var fromString Allocation
	require.NoError(t, fromString.Scan(string(raw.([]byte))))
	assert.True(t, fromString.Applied().Equal(decimal.NewFromInt(13)))

	var bad Allocation
	require.Error(t, bad.Scan(42))
}
