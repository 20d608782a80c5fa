package loans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalloans "github.com/angelmondragon/loanledger/internal/loans"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	"github.com/angelmondragon/loanledger/pkg/types"
)

type loanResponse struct {
	ID                 uuid.UUID                `json:"id"`
	TenantID           uuid.UUID                `json:"tenant_id"`
	BranchID           *uuid.UUID               `json:"branch_id,omitempty"`
	BorrowerID         uuid.UUID                `json:"borrower_id"`
	ProductID          *uuid.UUID               `json:"product_id,omitempty"`
	Status             enums.LoanStatus         `json:"status"`
	Currency           string                   `json:"currency"`
	Amount             decimal.Decimal          `json:"amount"`
	InterestRate       decimal.Decimal          `json:"interest_rate"`
	RateBasis          enums.RateBasis          `json:"rate_basis"`
	TermValue          int                      `json:"term_value"`
	TermUnit           enums.TermUnit           `json:"term_unit"`
	RepaymentFrequency enums.RepaymentFrequency `json:"repayment_frequency"`
	InterestMethod     enums.InterestMethod     `json:"interest_method"`
	Outstanding        decimal.Decimal          `json:"outstanding"`
	TotalPaid          decimal.Decimal          `json:"total_paid"`
	TotalInterest      decimal.Decimal          `json:"total_interest"`
	TotalCharges       decimal.Decimal          `json:"total_charges"`
	WrittenOff         decimal.Decimal          `json:"written_off"`
	RescheduledFromID  *uuid.UUID               `json:"rescheduled_from_id,omitempty"`
	TopUpOfID          *uuid.UUID               `json:"top_up_of_id,omitempty"`
	SupersededByID     *uuid.UUID               `json:"superseded_by_id,omitempty"`
	InitiatedBy        uuid.UUID                `json:"initiated_by"`
	ApprovedBy         *uuid.UUID               `json:"approved_by,omitempty"`
	ApprovalDate       *time.Time               `json:"approval_date,omitempty"`
	RejectedBy         *uuid.UUID               `json:"rejected_by,omitempty"`
	RejectionDate      *time.Time               `json:"rejection_date,omitempty"`
	RejectReason       *string                  `json:"reject_reason,omitempty"`
	DisbursedBy        *uuid.UUID               `json:"disbursed_by,omitempty"`
	DisbursementDate   *time.Time               `json:"disbursement_date,omitempty"`
	DisbursementMethod *enums.PaymentMethod     `json:"disbursement_method,omitempty"`
	ClosedBy           *uuid.UUID               `json:"closed_by,omitempty"`
	ClosedAt           *time.Time               `json:"closed_at,omitempty"`
	CloseReason        *enums.CloseReason       `json:"close_reason,omitempty"`
	CloseNote          *string                  `json:"close_note,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func loanFromModel(m models.Loan) loanResponse {
	return loanResponse{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		BranchID:           m.BranchID,
		BorrowerID:         m.BorrowerID,
		ProductID:          m.ProductID,
		Status:             m.Status,
		Currency:           m.Currency,
		Amount:             m.Amount,
		InterestRate:       m.InterestRate,
		RateBasis:          m.RateBasis,
		TermValue:          m.TermValue,
		TermUnit:           m.TermUnit,
		RepaymentFrequency: m.RepaymentFrequency,
		InterestMethod:     m.InterestMethod,
		Outstanding:        m.Outstanding,
		TotalPaid:          m.TotalPaid,
		TotalInterest:      m.TotalInterest,
		TotalCharges:       m.TotalCharges,
		WrittenOff:         m.WrittenOff,
		RescheduledFromID:  m.RescheduledFromID,
		TopUpOfID:          m.TopUpOfID,
		SupersededByID:     m.SupersededByID,
		InitiatedBy:        m.InitiatedBy,
		ApprovedBy:         m.ApprovedBy,
		ApprovalDate:       m.ApprovalDate,
		RejectedBy:         m.RejectedBy,
		RejectionDate:      m.RejectionDate,
		RejectReason:       m.RejectReason,
		DisbursedBy:        m.DisbursedBy,
		DisbursementDate:   m.DisbursementDate,
		DisbursementMethod: m.DisbursementMethod,
		ClosedBy:           m.ClosedBy,
		ClosedAt:           m.ClosedAt,
		CloseReason:        m.CloseReason,
		CloseNote:          m.CloseNote,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func loansFromModels(rows []models.Loan) []loanResponse {
	out := make([]loanResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, loanFromModel(row))
	}
	return out
}

type periodResponse struct {
	ID            uuid.UUID          `json:"id"`
	Period        int                `json:"period"`
	DueDate       string             `json:"due_date"`
	Status        enums.PeriodStatus `json:"status"`
	Principal     decimal.Decimal    `json:"principal"`
	Interest      decimal.Decimal    `json:"interest"`
	Fees          decimal.Decimal    `json:"fees"`
	Penalties     decimal.Decimal    `json:"penalties"`
	Total         decimal.Decimal    `json:"total"`
	PrincipalPaid decimal.Decimal    `json:"principal_paid"`
	InterestPaid  decimal.Decimal    `json:"interest_paid"`
	FeesPaid      decimal.Decimal    `json:"fees_paid"`
	PenaltiesPaid decimal.Decimal    `json:"penalties_paid"`
	Paid          decimal.Decimal    `json:"paid"`
	Remaining     decimal.Decimal    `json:"remaining"`
}

const dateLayout = "2006-01-02"

func periodsFromModels(rows []models.LoanSchedulePeriod) []periodResponse {
	out := make([]periodResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, periodResponse{
			ID:            p.ID,
			Period:        p.Period,
			DueDate:       p.DueDate.UTC().Format(dateLayout),
			Status:        p.Status,
			Principal:     p.Principal,
			Interest:      p.Interest,
			Fees:          p.Fees,
			Penalties:     p.Penalties,
			Total:         p.Total,
			PrincipalPaid: p.PrincipalPaid,
			InterestPaid:  p.InterestPaid,
			FeesPaid:      p.FeesPaid,
			PenaltiesPaid: p.PenaltiesPaid,
			Paid:          p.Paid,
			Remaining:     p.Remaining(),
		})
	}
	return out
}

type balanceResponse struct {
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	InterestDue decimal.Decimal `json:"interest_due"`
	Fees        decimal.Decimal `json:"fees"`
	Penalties   decimal.Decimal `json:"penalties"`
	Total       decimal.Decimal `json:"total"`
}

func balanceFrom(b internalloans.Balance) balanceResponse {
	return balanceResponse{
		Principal:   b.Principal,
		Interest:    b.Interest,
		InterestDue: b.InterestDue,
		Fees:        b.Fees,
		Penalties:   b.Penalties,
		Total:       b.Total(),
	}
}

type loanDetailResponse struct {
	Loan     loanResponse     `json:"loan"`
	Schedule []periodResponse `json:"schedule"`
	Balance  balanceResponse  `json:"balance"`
}

func detailFrom(d *internalloans.LoanDetail) loanDetailResponse {
	return loanDetailResponse{
		Loan:     loanFromModel(d.Loan),
		Schedule: periodsFromModels(d.Periods),
		Balance:  balanceFrom(d.Balance),
	}
}

type paymentResponse struct {
	ID           uuid.UUID           `json:"id"`
	LoanID       uuid.UUID           `json:"loan_id"`
	Currency     string              `json:"currency"`
	AmountPaid   decimal.Decimal     `json:"amount_paid"`
	PaymentDate  time.Time           `json:"payment_date"`
	Method       enums.PaymentMethod `json:"method"`
	Reference    *string             `json:"reference,omitempty"`
	Status       enums.PaymentStatus `json:"status"`
	Applied      bool                `json:"applied"`
	Allocation   *types.Allocation   `json:"allocation,omitempty"`
	Buckets      *types.BucketTotals `json:"buckets,omitempty"`
	Note         *string             `json:"note,omitempty"`
	RecordedBy   uuid.UUID           `json:"recorded_by"`
	ApprovedBy   *uuid.UUID          `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time          `json:"approved_at,omitempty"`
	RejectedBy   *uuid.UUID          `json:"rejected_by,omitempty"`
	RejectedAt   *time.Time          `json:"rejected_at,omitempty"`
	RejectReason *string             `json:"reject_reason,omitempty"`
	VoidedBy     *uuid.UUID          `json:"voided_by,omitempty"`
	VoidedAt     *time.Time          `json:"voided_at,omitempty"`
	VoidReason   *string             `json:"void_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func paymentFromModel(p models.LoanPayment) paymentResponse {
	var buckets *types.BucketTotals
	if p.Allocation != nil {
		totals := p.Allocation.Totals()
		buckets = &totals
	}
	return paymentResponse{
		ID:           p.ID,
		LoanID:       p.LoanID,
		Currency:     p.Currency,
		AmountPaid:   p.AmountPaid,
		PaymentDate:  p.PaymentDate,
		Method:       p.Method,
		Reference:    p.Reference,
		Status:       p.Status,
		Applied:      p.Applied,
		Allocation:   p.Allocation,
		Buckets:      buckets,
		Note:         p.Note,
		RecordedBy:   p.RecordedBy,
		ApprovedBy:   p.ApprovedBy,
		ApprovedAt:   p.ApprovedAt,
		RejectedBy:   p.RejectedBy,
		RejectedAt:   p.RejectedAt,
		RejectReason: p.RejectReason,
		VoidedBy:     p.VoidedBy,
		VoidedAt:     p.VoidedAt,
		VoidReason:   p.VoidReason,
		CreatedAt:    p.CreatedAt,
	}
}

type journalLineResponse struct {
	AccountID uuid.UUID          `json:"account_id"`
	PeriodID  *uuid.UUID         `json:"period_id,omitempty"`
	Bucket    enums.LedgerBucket `json:"bucket"`
	Debit     decimal.Decimal    `json:"debit"`
	Credit    decimal.Decimal    `json:"credit"`
	Memo      string             `json:"memo,omitempty"`
}

type journalResponse struct {
	ID           uuid.UUID              `json:"id"`
	LoanID       uuid.UUID              `json:"loan_id"`
	PaymentID    *uuid.UUID             `json:"payment_id,omitempty"`
	ReversalOfID *uuid.UUID             `json:"reversal_of_id,omitempty"`
	EventType    enums.JournalEventType `json:"event_type"`
	EntryDate    time.Time              `json:"entry_date"`
	Currency     string                 `json:"currency"`
	Description  string                 `json:"description"`
	PostedBy     uuid.UUID              `json:"posted_by"`
	Lines        []journalLineResponse  `json:"lines"`
}

func journalFromModel(j *models.JournalEntry) *journalResponse {
	if j == nil {
		return nil
	}
	lines := make([]journalLineResponse, 0, len(j.Lines))
	for _, l := range j.Lines {
		lines = append(lines, journalLineResponse{
			AccountID: l.AccountID,
			PeriodID:  l.PeriodID,
			Bucket:    l.Bucket,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		})
	}
	return &journalResponse{
		ID:           j.ID,
		LoanID:       j.LoanID,
		PaymentID:    j.PaymentID,
		ReversalOfID: j.ReversalOfID,
		EventType:    j.EventType,
		EntryDate:    j.EntryDate,
		Currency:     j.Currency,
		Description:  j.Description,
		PostedBy:     j.PostedBy,
		Lines:        lines,
	}
}

type warningResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type paymentResultResponse struct {
	Payment  paymentResponse   `json:"payment"`
	Loan     loanResponse      `json:"loan"`
	Journal  *journalResponse  `json:"journal,omitempty"`
	Warnings []warningResponse `json:"warnings,omitempty"`
}

func paymentResultFrom(res *internalloans.PaymentResult) paymentResultResponse {
	out := paymentResultResponse{
		Payment: paymentFromModel(res.Payment),
		Loan:    loanFromModel(res.Loan),
		Journal: journalFromModel(res.Journal),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, warningResponse{Code: string(w.Code), Message: w.Message, Details: w.Details})
	}
	return out
}

type rolloverResponse struct {
	Previous    loanResponse       `json:"previous"`
	Loan        loanDetailResponse `json:"loan"`
	CarriedOver balanceResponse    `json:"carried_over"`
	Journal     *journalResponse   `json:"journal,omitempty"`
}

func rolloverFrom(res *internalloans.RolloverResult) rolloverResponse {
	return rolloverResponse{
		Previous:    loanFromModel(res.Previous),
		Loan:        detailFrom(&res.Loan),
		CarriedOver: balanceFrom(res.CarriedOver),
		Journal:     journalFromModel(res.Journal),
	}
}
