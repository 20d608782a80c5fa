package loans

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/loanledger/api/responses"
	"github.com/angelmondragon/loanledger/api/validators"
	internalloans "github.com/angelmondragon/loanledger/internal/loans"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
	"github.com/angelmondragon/loanledger/pkg/pagination"
)

const maxNoteLen = 500

type applyRequest struct {
	BorrowerID         uuid.UUID                `json:"borrower_id" validate:"required"`
	ProductID          *uuid.UUID               `json:"product_id"`
	Currency           string                   `json:"currency" validate:"omitempty,len=3"`
	Amount             decimal.Decimal          `json:"amount" validate:"gt=0"`
	InterestRate       decimal.Decimal          `json:"interest_rate" validate:"gte=0"`
	RateBasis          enums.RateBasis          `json:"rate_basis" validate:"omitempty,oneof=per_period annual"`
	TermValue          int                      `json:"term_value" validate:"min=1,max=36500"`
	TermUnit           enums.TermUnit           `json:"term_unit" validate:"required,oneof=days weeks months years"`
	RepaymentFrequency enums.RepaymentFrequency `json:"repayment_frequency" validate:"required,oneof=weekly monthly"`
	InterestMethod     enums.InterestMethod     `json:"interest_method" validate:"required,oneof=flat reducing"`
}

func (r applyRequest) toInput() internalloans.ApplyInput {
	return internalloans.ApplyInput{
		BorrowerID:         r.BorrowerID,
		ProductID:          r.ProductID,
		Currency:           strings.TrimSpace(r.Currency),
		Amount:             r.Amount,
		InterestRate:       r.InterestRate,
		RateBasis:          r.RateBasis,
		TermValue:          r.TermValue,
		TermUnit:           r.TermUnit,
		RepaymentFrequency: r.RepaymentFrequency,
		InterestMethod:     r.InterestMethod,
	}
}

// Apply records a pending loan application.
func Apply(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload applyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.Apply(r.Context(), actor, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, loanFromModel(*loan))
	}
}

// List pages through the tenant's loans, newest first.
func List(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		borrowerID, err := validators.ParseQueryUUID(r, "borrower_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalloans.ListInput{
			BorrowerID: borrowerID,
			Page:       pagination.Params{Limit: limit, Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseLoanStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"loans":       loansFromModels(result.Loans),
			"next_cursor": result.NextCursor,
		})
	}
}

// Detail returns the loan with its schedule and unpaid balance.
func Detail(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		detail, err := svc.Get(r.Context(), actor, loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(detail))
	}
}

// Approve moves a pending loan to approved.
func Approve(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		loan, err := svc.Approve(r.Context(), actor, loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loanFromModel(*loan))
	}
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Reject closes out a pending application with a reason.
func Reject(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload reasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.Reject(r.Context(), actor, loanID, validators.SanitizeString(payload.Reason, maxNoteLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loanFromModel(*loan))
	}
}

type disburseRequest struct {
	Method enums.PaymentMethod `json:"method" validate:"required,oneof=cash bank mobile_money"`
	Date   *time.Time          `json:"date"`
}

// Disburse generates the schedule and posts the disbursement journal.
func Disburse(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload disburseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Disburse(r.Context(), actor, loanID, internalloans.DisburseInput{Method: payload.Method, Date: payload.Date})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(detail))
	}
}

type noteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// Close settles a fully repaid loan.
func Close(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload noteRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.Close(r.Context(), actor, loanID, validators.SanitizeString(payload.Note, maxNoteLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loanFromModel(*loan))
	}
}

type termsRequest struct {
	InterestRate       *decimal.Decimal          `json:"interest_rate" validate:"omitempty,gte=0"`
	RateBasis          *enums.RateBasis          `json:"rate_basis" validate:"omitempty,oneof=per_period annual"`
	TermValue          *int                      `json:"term_value" validate:"omitempty,min=1,max=36500"`
	TermUnit           *enums.TermUnit           `json:"term_unit" validate:"omitempty,oneof=days weeks months years"`
	RepaymentFrequency *enums.RepaymentFrequency `json:"repayment_frequency" validate:"omitempty,oneof=weekly monthly"`
	InterestMethod     *enums.InterestMethod     `json:"interest_method" validate:"omitempty,oneof=flat reducing"`
}

func (t termsRequest) toOverride() internalloans.TermsOverride {
	return internalloans.TermsOverride{
		InterestRate:       t.InterestRate,
		RateBasis:          t.RateBasis,
		TermValue:          t.TermValue,
		TermUnit:           t.TermUnit,
		RepaymentFrequency: t.RepaymentFrequency,
		InterestMethod:     t.InterestMethod,
	}
}

type rescheduleRequest struct {
	Terms termsRequest `json:"terms"`
	Date  *time.Time   `json:"date"`
	Note  string       `json:"note" validate:"max=500"`
}

// Reschedule replaces a disbursed loan with one carrying its unpaid balance.
func Reschedule(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload rescheduleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Reschedule(r.Context(), actor, loanID, internalloans.RescheduleInput{
			Terms: payload.Terms.toOverride(),
			Date:  payload.Date,
			Note:  validators.SanitizeString(payload.Note, maxNoteLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, rolloverFrom(result))
	}
}

type topUpRequest struct {
	ExtraPrincipal decimal.Decimal     `json:"extra_principal" validate:"gt=0"`
	Method         enums.PaymentMethod `json:"method" validate:"omitempty,oneof=cash bank mobile_money"`
	Terms          termsRequest        `json:"terms"`
	Date           *time.Time          `json:"date"`
	Note           string              `json:"note" validate:"max=500"`
}

// TopUp replaces a disbursed loan with a larger one.
func TopUp(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload topUpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.TopUp(r.Context(), actor, loanID, internalloans.TopUpInput{
			ExtraPrincipal: payload.ExtraPrincipal,
			Method:         payload.Method,
			Terms:          payload.Terms.toOverride(),
			Date:           payload.Date,
			Note:           validators.SanitizeString(payload.Note, maxNoteLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, rolloverFrom(result))
	}
}

// WriteOff charges the unpaid principal to loan-loss expense and closes the loan.
func WriteOff(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload reasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.WriteOff(r.Context(), actor, loanID, validators.SanitizeString(payload.Reason, maxNoteLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loanFromModel(*loan))
	}
}

type chargesRequest struct {
	Period      int             `json:"period" validate:"min=1"`
	Fees        decimal.Decimal `json:"fees" validate:"gte=0"`
	Penalties   decimal.Decimal `json:"penalties" validate:"gte=0"`
	MarkOverdue bool            `json:"mark_overdue"`
}

// AssessCharges adds fees or penalties to a period on behalf of collections.
func AssessCharges(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload chargesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.AssessCharges(r.Context(), actor, loanID, internalloans.ChargeInput{
			Period:      payload.Period,
			Fees:        payload.Fees,
			Penalties:   payload.Penalties,
			MarkOverdue: payload.MarkOverdue,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detailFrom(detail))
	}
}

type overdueRequest struct {
	Cutoff      *time.Time      `json:"cutoff"`
	PenaltyRate decimal.Decimal `json:"penalty_rate" validate:"gte=0"`
}

// MarkOverdue flips due periods to overdue, optionally adding a penalty.
func MarkOverdue(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload overdueRequest
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cutoff := time.Now().UTC()
		if payload.Cutoff != nil {
			cutoff = payload.Cutoff.UTC()
		}
		result, err := svc.MarkOverdue(r.Context(), actor, loanID, internalloans.OverdueInput{Cutoff: cutoff, PenaltyRate: payload.PenaltyRate})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func loanTarget(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (internalloans.Actor, uuid.UUID, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return internalloans.Actor{}, uuid.Nil, false
	}
	loanID, err := validators.ParseUUIDParam(r, "loanId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return internalloans.Actor{}, uuid.Nil, false
	}
	return actor, loanID, true
}

// decodeOptionalBody accepts an empty body for endpoints whose fields are
// all optional.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.ContentLength == 0 {
		return validators.Struct(dest)
	}
	return validators.DecodeJSONBody(r, dest)
}
