package loans

import (
	"net/http"

	"github.com/angelmondragon/loanledger/api/middleware"
	internalloans "github.com/angelmondragon/loanledger/internal/loans"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

func actorFromRequest(r *http.Request) (internalloans.Actor, error) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		return internalloans.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	return internalloans.Actor{TenantID: tc.TenantID, BranchID: tc.BranchID, ActorID: tc.ActorID}, nil
}
