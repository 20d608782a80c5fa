package loans

import (
	"net/http"

	"github.com/angelmondragon/loanledger/api/responses"
	"github.com/angelmondragon/loanledger/api/validators"
	"github.com/angelmondragon/loanledger/internal/ledger"
	internalloans "github.com/angelmondragon/loanledger/internal/loans"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
)

// Journals lists the loan's journal entries with their lines plus the net
// movement per account. The loan lookup enforces tenant scope.
func Journals(svc internalloans.Service, ledgerSvc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		if _, err := svc.Get(r.Context(), actor, loanID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := ledgerSvc.ListByLoan(r.Context(), loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		balances, err := ledgerSvc.Balances(r.Context(), loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]*journalResponse, 0, len(entries))
		for i := range entries {
			out = append(out, journalFromModel(&entries[i]))
		}
		if balances == nil {
			balances = []ledger.AccountBalance{}
		}
		responses.WriteSuccess(w, map[string]any{
			"journals": out,
			"balances": balances,
		})
	}
}

// JournalDetail returns one journal entry. Entries posted for another loan
// are reported as not found.
func JournalDetail(svc internalloans.Service, ledgerSvc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, loanID, ok := loanTarget(w, r, logg)
		if !ok {
			return
		}
		journalID, err := validators.ParseUUIDParam(r, "journalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.Get(r.Context(), actor, loanID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := ledgerSvc.FindByID(r.Context(), journalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if entry.LoanID != loanID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "journal entry not found").
				WithDetails(map[string]any{"journal_id": journalID}))
			return
		}
		responses.WriteSuccess(w, journalFromModel(entry))
	}
}
