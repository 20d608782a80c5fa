package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/pkg/enums"
)

// AllocationLine is the portion of one payment applied to one schedule period.
type AllocationLine struct {
	PeriodID    uuid.UUID          `json:"period_id"`
	Period      int                `json:"period"`
	Penalties   decimal.Decimal    `json:"penalties"`
	Fees        decimal.Decimal    `json:"fees"`
	Interest    decimal.Decimal    `json:"interest"`
	Principal   decimal.Decimal    `json:"principal"`
	PriorStatus enums.PeriodStatus `json:"prior_status"`
}

// Total sums every bucket on the line.
func (l AllocationLine) Total() decimal.Decimal {
	return l.Penalties.Add(l.Fees).Add(l.Interest).Add(l.Principal)
}

// Allocation is persisted as JSONB on the payment row. Applied() plus
// Unallocated always equals the payment amount.
type Allocation struct {
	Lines       []AllocationLine `json:"lines"`
	Unallocated decimal.Decimal  `json:"unallocated"`
}

// BucketTotals aggregates the allocation per waterfall bucket.
type BucketTotals struct {
	Penalties decimal.Decimal `json:"penalties"`
	Fees      decimal.Decimal `json:"fees"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
}

func (a Allocation) Applied() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.Lines {
		total = total.Add(line.Total())
	}
	return total
}

func (a Allocation) Totals() BucketTotals {
	totals := BucketTotals{
		Penalties: decimal.Zero,
		Fees:      decimal.Zero,
		Interest:  decimal.Zero,
		Principal: decimal.Zero,
	}
	for _, line := range a.Lines {
		totals.Penalties = totals.Penalties.Add(line.Penalties)
		totals.Fees = totals.Fees.Add(line.Fees)
		totals.Interest = totals.Interest.Add(line.Interest)
		totals.Principal = totals.Principal.Add(line.Principal)
	}
	return totals
}

// Value serializes the allocation to JSON.
func (a Allocation) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan decodes JSONB into the allocation.
func (a *Allocation) Scan(value interface{}) error {
	if value == nil {
		*a = Allocation{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded Allocation
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*a = decoded
	return nil
}
