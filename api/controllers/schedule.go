package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/api/responses"
	"github.com/angelmondragon/loanledger/api/validators"
	"github.com/angelmondragon/loanledger/internal/schedule"
	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/logger"
)

type schedulePreviewRequest struct {
	Amount             decimal.Decimal          `json:"amount" validate:"gt=0"`
	InterestRate       decimal.Decimal          `json:"interest_rate" validate:"gte=0"`
	RateBasis          enums.RateBasis          `json:"rate_basis" validate:"omitempty,oneof=per_period annual"`
	TermValue          int                      `json:"term_value" validate:"min=1,max=36500"`
	TermUnit           enums.TermUnit           `json:"term_unit" validate:"required,oneof=days weeks months years"`
	RepaymentFrequency enums.RepaymentFrequency `json:"repayment_frequency" validate:"required,oneof=weekly monthly"`
	InterestMethod     enums.InterestMethod     `json:"interest_method" validate:"required,oneof=flat reducing"`
	DisbursementDate   *time.Time               `json:"disbursement_date"`
}

// SchedulePreview runs the generator without persisting anything.
func SchedulePreview(cfg schedule.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload schedulePreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start := time.Now().UTC()
		if payload.DisbursementDate != nil {
			start = payload.DisbursementDate.UTC()
		}
		basis := payload.RateBasis
		if basis == "" {
			basis = enums.RateBasisPerPeriod
		}
		terms := schedule.Terms{
			Principal:        payload.Amount,
			Rate:             payload.InterestRate,
			RateBasis:        basis,
			TermValue:        payload.TermValue,
			TermUnit:         payload.TermUnit,
			Frequency:        payload.RepaymentFrequency,
			Method:           payload.InterestMethod,
			DisbursementDate: start,
		}
		generated, err := schedule.Generate(terms, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, generated)
	}
}
