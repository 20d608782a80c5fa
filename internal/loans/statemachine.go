package loans

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

// transitions lists every legal move. Rejected and closed have no outgoing
// edges.
var transitions = map[enums.LoanStatus][]enums.LoanStatus{
	enums.LoanStatusPending:   {enums.LoanStatusApproved, enums.LoanStatusRejected},
	enums.LoanStatusApproved:  {enums.LoanStatusDisbursed, enums.LoanStatusRejected},
	enums.LoanStatusDisbursed: {enums.LoanStatusClosed},
	enums.LoanStatusRejected:  nil,
	enums.LoanStatusClosed:    nil,
}

// CanTransition reports whether a loan may move from one status to another.
func CanTransition(from, to enums.LoanStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Allowed returns the statuses reachable from the given one.
func Allowed(from enums.LoanStatus) []enums.LoanStatus {
	return append([]enums.LoanStatus(nil), transitions[from]...)
}

func checkTransition(loanID uuid.UUID, from, to enums.LoanStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("loan cannot move from %s to %s", from, to)).
		WithDetails(map[string]any{
			"loan_id": loanID,
			"current": from,
			"target":  to,
			"allowed": Allowed(from),
		})
}

// requireStatus guards operations that keep the status but need one, such as
// taking payments on a disbursed loan.
func requireStatus(loanID uuid.UUID, current, required enums.LoanStatus, operation string) error {
	if current == required {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("%s requires a %s loan", operation, required)).
		WithDetails(map[string]any{
			"loan_id":   loanID,
			"current":   current,
			"required":  required,
			"operation": operation,
		})
}
