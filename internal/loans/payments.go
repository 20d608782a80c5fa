package loans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/loanledger/internal/allocation"
	"github.com/angelmondragon/loanledger/internal/ledger"
	dbpkg "github.com/angelmondragon/loanledger/pkg/db"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/outbox/payloads"
)

const paymentReferenceIndex = "ux_loan_payments_reference"

// RecordPaymentInput is money received against a disbursed loan. AutoApprove
// overrides the configured default when set.
type RecordPaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate *time.Time
	Method      enums.PaymentMethod
	Reference   string
	Currency    string
	Note        string
	AutoApprove *bool
}

// Warning is a non-fatal condition reported next to a successful result.
type Warning struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
	Details any            `json:"details,omitempty"`
}

// PaymentResult is the payment after the operation, the refreshed loan and
// the journal posted for it, if any.
type PaymentResult struct {
	Payment  models.LoanPayment   `json:"payment"`
	Loan     models.Loan          `json:"loan"`
	Journal  *models.JournalEntry `json:"journal,omitempty"`
	Warnings []Warning            `json:"warnings,omitempty"`
}

func (s *service) RecordPayment(ctx context.Context, actor Actor, loanID uuid.UUID, input RecordPaymentInput) (*PaymentResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if err := s.checkScale(input.Amount, "payment amount"); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}
	paidAt := s.now()
	if input.PaymentDate != nil {
		paidAt = input.PaymentDate.UTC()
	}
	autoApprove := s.cfg.AutoApprovePayments
	if input.AutoApprove != nil {
		autoApprove = *input.AutoApprove
	}

	var result *PaymentResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := requireStatus(loan.ID, loan.Status, enums.LoanStatusDisbursed, "record payment"); err != nil {
			return err
		}
		currency := strings.ToUpper(strings.TrimSpace(input.Currency))
		if currency == "" {
			currency = loan.Currency
		}
		if currency != loan.Currency {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment currency does not match loan").
				WithDetails(map[string]any{"loan_currency": loan.Currency, "payment_currency": currency})
		}

		payment := &models.LoanPayment{
			ID:          uuid.New(),
			LoanID:      loan.ID,
			TenantID:    loan.TenantID,
			BranchID:    loan.BranchID,
			Currency:    currency,
			AmountPaid:  input.Amount,
			PaymentDate: paidAt,
			Method:      input.Method,
			Status:      enums.PaymentStatusPending,
			RecordedBy:  actor.ActorID,
		}
		if ref := strings.TrimSpace(input.Reference); ref != "" {
			payment.Reference = &ref
		}
		if note := strings.TrimSpace(input.Note); note != "" {
			payment.Note = &note
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			if dbpkg.IsUniqueViolation(err, paymentReferenceIndex) {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicatePayment, err, "payment reference already recorded for this loan").
					WithDetails(map[string]any{
						"loan_id":   loan.ID,
						"method":    payment.Method,
						"reference": input.Reference,
					})
			}
			return repoErr(err, "create payment")
		}
		if err := s.emit(ctx, tx, actor, enums.EventPaymentRecorded, enums.AggregatePayment, payment.ID, paymentEvent(payment, nil, "")); err != nil {
			return err
		}

		result = &PaymentResult{Payment: *payment, Loan: *loan}
		if !autoApprove {
			return nil
		}
		result, err = s.applyPayment(ctx, tx, repo, actor, loan, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logPayment(ctx, &result.Payment, "payment recorded")
	return result, nil
}

func (s *service) ApprovePayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID) (*PaymentResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	var result *PaymentResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := requireStatus(loan.ID, loan.Status, enums.LoanStatusDisbursed, "approve payment"); err != nil {
			return err
		}
		payment, err := findPayment(ctx, repo, loan.ID, paymentID)
		if err != nil {
			return err
		}
		if err := checkPaymentStatus(payment, enums.PaymentStatusPending, enums.PaymentStatusApproved); err != nil {
			return err
		}
		result, err = s.applyPayment(ctx, tx, repo, actor, loan, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logPayment(ctx, &result.Payment, "payment approved")
	return result, nil
}

func (s *service) RejectPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID, reason string) (*models.LoanPayment, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	var payment *models.LoanPayment
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		found, err := findPayment(ctx, repo, loan.ID, paymentID)
		if err != nil {
			return err
		}
		if err := checkPaymentStatus(found, enums.PaymentStatusPending, enums.PaymentStatusRejected); err != nil {
			return err
		}
		now := s.now()
		found.Status = enums.PaymentStatusRejected
		found.RejectedBy = &actor.ActorID
		found.RejectedAt = &now
		found.RejectReason = &reason
		if err := repo.SavePayment(ctx, found); err != nil {
			return repoErr(err, "update payment")
		}
		payment = found
		return s.emit(ctx, tx, actor, enums.EventPaymentRejected, enums.AggregatePayment, found.ID, paymentEvent(found, nil, reason))
	})
	if err != nil {
		return nil, err
	}
	s.logPayment(ctx, payment, "payment rejected")
	return payment, nil
}

// VoidPayment undoes an approved payment: the allocation is taken back off the
// schedule and the payment journal is mirrored. The original rows are kept.
func (s *service) VoidPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID, reason string) (*PaymentResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason required")
	}
	var result *PaymentResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loan, err := s.lockLoan(ctx, repo, actor, loanID)
		if err != nil {
			return err
		}
		if err := requireStatus(loan.ID, loan.Status, enums.LoanStatusDisbursed, "void payment"); err != nil {
			return err
		}
		payment, err := findPayment(ctx, repo, loan.ID, paymentID)
		if err != nil {
			return err
		}
		if err := checkPaymentStatus(payment, enums.PaymentStatusApproved, enums.PaymentStatusVoided); err != nil {
			return err
		}

		periods, err := repo.ListPeriods(ctx, loan.ID)
		if err != nil {
			return repoErr(err, "load schedule")
		}
		if payment.Allocation != nil && len(payment.Allocation.Lines) > 0 {
			touched, err := allocation.Reverse(periods, *payment.Allocation)
			if err != nil {
				return err
			}
			if err := repo.SavePeriods(ctx, pick(periods, touched)); err != nil {
				return repoErr(err, "update schedule")
			}
		}

		now := s.now()
		var entry *models.JournalEntry
		original, err := s.ledger.FindPaymentJournal(ctx, tx, payment.ID)
		switch {
		case err == nil:
			entry, err = s.ledger.Post(ctx, tx, ledger.Mirror(original, enums.JournalEventPaymentVoid, actor.ActorID, now, reason))
			if err != nil {
				return err
			}
		case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
			// nothing was applied, so nothing was journaled
		default:
			return err
		}

		payment.Status = enums.PaymentStatusVoided
		payment.Applied = false
		payment.VoidedBy = &actor.ActorID
		payment.VoidedAt = &now
		payment.VoidReason = &reason
		if err := repo.SavePayment(ctx, payment); err != nil {
			return repoErr(err, "update payment")
		}

		refreshAggregates(loan, periods)
		if err := repo.SaveLoan(ctx, loan); err != nil {
			return repoErr(err, "update loan")
		}

		event := paymentEvent(payment, loan, reason)
		if entry != nil {
			event.JournalID = &entry.ID
		}
		if err := s.emit(ctx, tx, actor, enums.EventPaymentVoided, enums.AggregatePayment, payment.ID, event); err != nil {
			return err
		}
		result = &PaymentResult{Payment: *payment, Loan: *loan, Journal: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logPayment(ctx, &result.Payment, "payment voided")
	return result, nil
}

func (s *service) GetPayment(ctx context.Context, actor Actor, loanID, paymentID uuid.UUID) (*models.LoanPayment, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if _, err := s.findLoan(ctx, s.repo, actor, loanID); err != nil {
		return nil, err
	}
	return findPayment(ctx, s.repo, loanID, paymentID)
}

func (s *service) ListPayments(ctx context.Context, actor Actor, loanID uuid.UUID) ([]models.LoanPayment, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if _, err := s.findLoan(ctx, s.repo, actor, loanID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, loanID)
	if err != nil {
		return nil, repoErr(err, "list payments")
	}
	return payments, nil
}

// applyPayment allocates a pending payment over the schedule, stores the
// allocation and posts the payment journal. The loan must already be locked.
func (s *service) applyPayment(ctx context.Context, tx *gorm.DB, repo Repository, actor Actor, loan *models.Loan, payment *models.LoanPayment) (*PaymentResult, error) {
	periods, err := repo.ListPeriods(ctx, loan.ID)
	if err != nil {
		return nil, repoErr(err, "load schedule")
	}
	alloc, err := allocation.Allocate(payment.AmountPaid, periods, allocation.Config{Scale: s.cfg.Scale})
	if err != nil {
		return nil, err
	}
	touched, err := allocation.Apply(periods, alloc)
	if err != nil {
		return nil, err
	}
	if err := repo.SavePeriods(ctx, pick(periods, touched)); err != nil {
		return nil, repoErr(err, "update schedule")
	}

	now := s.now()
	payment.Status = enums.PaymentStatusApproved
	payment.Applied = true
	payment.Allocation = &alloc
	payment.ApprovedBy = &actor.ActorID
	payment.ApprovedAt = &now
	if err := repo.SavePayment(ctx, payment); err != nil {
		return nil, repoErr(err, "update payment")
	}

	refreshAggregates(loan, periods)
	if err := repo.SaveLoan(ctx, loan); err != nil {
		return nil, repoErr(err, "update loan")
	}

	result := &PaymentResult{Payment: *payment, Loan: *loan}
	applied := alloc.Applied()
	if applied.IsPositive() {
		entry, err := s.ledger.Post(ctx, tx, ledger.Payment(loan, payment, alloc, actor.ActorID, now))
		if err != nil {
			return nil, err
		}
		result.Journal = entry
	}
	if alloc.Unallocated.IsPositive() {
		meta := pkgerrors.MetadataFor(pkgerrors.CodeAllocationOverflow)
		result.Warnings = append(result.Warnings, Warning{
			Code:    pkgerrors.CodeAllocationOverflow,
			Message: meta.PublicMessage,
			Details: map[string]any{
				"payment_id":  payment.ID,
				"applied":     applied.String(),
				"unallocated": alloc.Unallocated.String(),
			},
		})
		if s.logg != nil {
			logCtx := s.logg.WithPaymentID(ctx, payment.ID.String())
			s.logg.Warn(s.logg.WithField(logCtx, "unallocated", alloc.Unallocated.String()), "payment exceeds outstanding balance")
		}
	}

	event := paymentEvent(payment, loan, "")
	event.Applied = &applied
	event.Unallocated = &alloc.Unallocated
	if result.Journal != nil {
		event.JournalID = &result.Journal.ID
	}
	if err := s.emit(ctx, tx, actor, enums.EventPaymentApplied, enums.AggregatePayment, payment.ID, event); err != nil {
		return nil, err
	}
	return result, nil
}

func findPayment(ctx context.Context, repo Repository, loanID, paymentID uuid.UUID) (*models.LoanPayment, error) {
	payment, err := repo.FindPayment(ctx, loanID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found").
				WithDetails(map[string]any{"loan_id": loanID, "payment_id": paymentID})
		}
		return nil, repoErr(err, "load payment")
	}
	return payment, nil
}

func checkPaymentStatus(payment *models.LoanPayment, required, target enums.PaymentStatus) error {
	if payment.Status == required {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("payment is %s, expected %s", payment.Status, required)).
		WithDetails(map[string]any{
			"payment_id": payment.ID,
			"current":    payment.Status,
			"target":     target,
		})
}

func pick(periods []models.LoanSchedulePeriod, idx []int) []models.LoanSchedulePeriod {
	out := make([]models.LoanSchedulePeriod, 0, len(idx))
	for _, i := range idx {
		out = append(out, periods[i])
	}
	return out
}

func paymentEvent(payment *models.LoanPayment, loan *models.Loan, reason string) payloads.PaymentEvent {
	event := payloads.PaymentEvent{
		PaymentID: payment.ID,
		LoanID:    payment.LoanID,
		Status:    payment.Status,
		Amount:    payment.AmountPaid,
		Currency:  payment.Currency,
		Method:    payment.Method,
		Reference: payment.Reference,
		Reason:    reason,
	}
	if loan != nil {
		outstanding := loan.Outstanding
		event.Outstanding = &outstanding
	}
	return event
}

func (s *service) logPayment(ctx context.Context, payment *models.LoanPayment, msg string) {
	if s.logg == nil || payment == nil {
		return
	}
	logCtx := s.logg.WithPaymentID(ctx, payment.ID.String())
	logCtx = s.logg.WithLoanID(logCtx, payment.LoanID.String())
	logCtx = s.logg.WithField(logCtx, "status", string(payment.Status))
	s.logg.Info(logCtx, msg)
}
