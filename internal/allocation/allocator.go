package allocation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/types"
)

// Config mirrors the engine settings the allocator needs.
type Config struct {
	Scale int32
}

// Allocate splits amount across the unpaid periods, oldest due date first,
// filling penalties, fees, interest and then principal inside each period.
// The periods are only read. Whatever cannot be placed is returned as
// Unallocated.
func Allocate(amount decimal.Decimal, periods []models.LoanSchedulePeriod, cfg Config) (types.Allocation, error) {
	if !amount.IsPositive() {
		return types.Allocation{}, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !amount.Equal(amount.Round(cfg.Scale)) {
		return types.Allocation{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment amount has more than %d decimal places", cfg.Scale))
	}

	remaining := amount
	lines := make([]types.AllocationLine, 0)
	for _, idx := range unpaidOrder(periods) {
		if !remaining.IsPositive() {
			break
		}
		p := periods[idx]
		line := types.AllocationLine{
			PeriodID:    p.ID,
			Period:      p.Period,
			PriorStatus: p.Status,
		}
		line.Penalties, remaining = take(p.Penalties.Sub(p.PenaltiesPaid), remaining)
		line.Fees, remaining = take(p.Fees.Sub(p.FeesPaid), remaining)
		line.Interest, remaining = take(p.Interest.Sub(p.InterestPaid), remaining)
		line.Principal, remaining = take(p.Principal.Sub(p.PrincipalPaid), remaining)
		if line.Total().IsPositive() {
			lines = append(lines, line)
		}
	}

	return types.Allocation{Lines: lines, Unallocated: remaining}, nil
}

// unpaidOrder returns indexes of periods still owing, by due date then number.
func unpaidOrder(periods []models.LoanSchedulePeriod) []int {
	order := make([]int, 0, len(periods))
	for i, p := range periods {
		if p.Status == enums.PeriodStatusPaid {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := periods[order[a]], periods[order[b]]
		if !pa.DueDate.Equal(pb.DueDate) {
			return pa.DueDate.Before(pb.DueDate)
		}
		return pa.Period < pb.Period
	})
	return order
}

func take(due, remaining decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !due.IsPositive() || !remaining.IsPositive() {
		return decimal.Zero, remaining
	}
	if due.GreaterThan(remaining) {
		return remaining, decimal.Zero
	}
	return due, remaining.Sub(due)
}

// Apply adds the allocation to the matching periods in place and returns the
// indexes it touched. It fails without partial effect if any bucket would be
// overpaid.
func Apply(periods []models.LoanSchedulePeriod, alloc types.Allocation) ([]int, error) {
	touched, err := resolve(periods, alloc)
	if err != nil {
		return nil, err
	}
	next := make([]models.LoanSchedulePeriod, len(touched))
	for i, line := range alloc.Lines {
		p := periods[touched[i]]
		p.PenaltiesPaid = p.PenaltiesPaid.Add(line.Penalties)
		p.FeesPaid = p.FeesPaid.Add(line.Fees)
		p.InterestPaid = p.InterestPaid.Add(line.Interest)
		p.PrincipalPaid = p.PrincipalPaid.Add(line.Principal)
		if err := checkBuckets(p); err != nil {
			return nil, err
		}
		p.Paid = p.PenaltiesPaid.Add(p.FeesPaid).Add(p.InterestPaid).Add(p.PrincipalPaid)
		if p.Paid.GreaterThanOrEqual(p.Total) {
			p.Status = enums.PeriodStatusPaid
		}
		next[i] = p
	}
	for i, idx := range touched {
		periods[idx] = next[i]
	}
	return touched, nil
}

// Reverse subtracts a previously applied allocation bucket by bucket. A period
// that the allocation had settled gets back the status it had before.
func Reverse(periods []models.LoanSchedulePeriod, alloc types.Allocation) ([]int, error) {
	touched, err := resolve(periods, alloc)
	if err != nil {
		return nil, err
	}
	next := make([]models.LoanSchedulePeriod, len(touched))
	for i, line := range alloc.Lines {
		p := periods[touched[i]]
		p.PenaltiesPaid = p.PenaltiesPaid.Sub(line.Penalties)
		p.FeesPaid = p.FeesPaid.Sub(line.Fees)
		p.InterestPaid = p.InterestPaid.Sub(line.Interest)
		p.PrincipalPaid = p.PrincipalPaid.Sub(line.Principal)
		if p.PenaltiesPaid.IsNegative() || p.FeesPaid.IsNegative() || p.InterestPaid.IsNegative() || p.PrincipalPaid.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "reversal exceeds amounts paid on period").
				WithDetails(map[string]any{"period_id": p.ID, "period": p.Period})
		}
		p.Paid = p.PenaltiesPaid.Add(p.FeesPaid).Add(p.InterestPaid).Add(p.PrincipalPaid)
		if p.Status == enums.PeriodStatusPaid && p.Paid.LessThan(p.Total) {
			p.Status = line.PriorStatus
			if p.Status == "" || p.Status == enums.PeriodStatusPaid {
				p.Status = enums.PeriodStatusUpcoming
			}
		}
		next[i] = p
	}
	for i, idx := range touched {
		periods[idx] = next[i]
	}
	return touched, nil
}

func resolve(periods []models.LoanSchedulePeriod, alloc types.Allocation) ([]int, error) {
	byID := make(map[uuid.UUID]int, len(periods))
	for i, p := range periods {
		byID[p.ID] = i
	}
	touched := make([]int, 0, len(alloc.Lines))
	seen := make(map[uuid.UUID]struct{}, len(alloc.Lines))
	for _, line := range alloc.Lines {
		idx, ok := byID[line.PeriodID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "allocation references an unknown period").
				WithDetails(map[string]any{"period_id": line.PeriodID, "period": line.Period})
		}
		if _, dup := seen[line.PeriodID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "allocation lists a period twice").
				WithDetails(map[string]any{"period_id": line.PeriodID})
		}
		seen[line.PeriodID] = struct{}{}
		touched = append(touched, idx)
	}
	return touched, nil
}

func checkBuckets(p models.LoanSchedulePeriod) error {
	if p.PenaltiesPaid.GreaterThan(p.Penalties) || p.FeesPaid.GreaterThan(p.Fees) ||
		p.InterestPaid.GreaterThan(p.Interest) || p.PrincipalPaid.GreaterThan(p.Principal) {
		return pkgerrors.New(pkgerrors.CodeConflict, "allocation exceeds outstanding on period").
			WithDetails(map[string]any{"period_id": p.ID, "period": p.Period})
	}
	return nil
}
