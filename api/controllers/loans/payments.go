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
	"github.com/angelmondragon/loanledger/pkg/logger"
)

type recordPaymentRequest struct {
	Amount      decimal.Decimal     `json:"amount" validate:"gt=0"`
	PaymentDate *time.Time          `json:"payment_date"`
	Method      enums.PaymentMethod `json:"method" validate:"required,oneof=cash bank mobile_money"`
	Reference   string              `json:"reference" validate:"max=120"`
	Currency    string              `json:"currency" validate:"omitempty,len=3"`
	Note        string              `json:"note" validate:"max=500"`
	AutoApprove *bool               `json:"auto_approve"`
}

// RecordPayment stores a payment and, when approval is automatic, applies it.
func RecordPayment(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		var payload recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.RecordPayment(r.Context(), actor, loanID, internalloans.RecordPaymentInput{
			Amount:      payload.Amount,
			PaymentDate: payload.PaymentDate,
			Method:      payload.Method,
			Reference:   strings.TrimSpace(payload.Reference),
			Currency:    strings.TrimSpace(payload.Currency),
			Note:        validators.SanitizeString(payload.Note, maxNoteLen),
			AutoApprove: payload.AutoApprove,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, paymentResultFrom(result))
	}
}

// ListPayments returns every payment on a loan, oldest first.
func ListPayments(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		rows, err := svc.ListPayments(r.Context(), actor, loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]paymentResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, paymentFromModel(row))
		}
		responses.WriteSuccess(w, out)
	}
}

// PaymentDetail returns one payment with its allocation.
func PaymentDetail(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, paymentID, ok := paymentTarget(w, r, logg)
		if !ok {
			return
		}
		payment, err := svc.GetPayment(r.Context(), actor, loanID, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentFromModel(*payment))
	}
}

// ApprovePayment allocates a pending payment and posts its journal.
func ApprovePayment(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, paymentID, ok := paymentTarget(w, r, logg)
		if !ok {
			return
		}
		result, err := svc.ApprovePayment(r.Context(), actor, loanID, paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentResultFrom(result))
	}
}

// RejectPayment declines a pending payment; nothing is posted.
func RejectPayment(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, paymentID, ok := paymentTarget(w, r, logg)
		if !ok {
			return
		}
		var payload reasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.RejectPayment(r.Context(), actor, loanID, paymentID, validators.SanitizeString(payload.Reason, maxNoteLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentFromModel(*payment))
	}
}

// VoidPayment reverses an applied payment and posts the mirror journal.
func VoidPayment(svc internalloans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, paymentID, ok := paymentTarget(w, r, logg)
		if !ok {
			return
		}
		var payload reasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.VoidPayment(r.Context(), actor, loanID, paymentID, validators.SanitizeString(payload.Reason, maxNoteLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentResultFrom(result))
	}
}

func paymentTarget(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (internalloans.Actor, uuid.UUID, uuid.UUID, bool) {
	actor, loanID, ok := loanTarget(w, r, logg)
	if !ok {
		return actor, loanID, uuid.Nil, false
	}
	paymentID, err := validators.ParseUUIDParam(r, "paymentId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return actor, loanID, uuid.Nil, false
	}
	return actor, loanID, paymentID, true
}
