package loans

import (
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/outbox"
)

// Actor is the tenant, branch and user on whose behalf an operation runs.
// Identity is resolved upstream; the engine only carries the ids.
type Actor struct {
	TenantID uuid.UUID
	BranchID *uuid.UUID
	ActorID  uuid.UUID
}

func (a Actor) validate() error {
	if a.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if a.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	return nil
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{ActorID: a.ActorID, TenantID: a.TenantID, BranchID: a.BranchID}
}
