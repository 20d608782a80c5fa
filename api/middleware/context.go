package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/api/responses"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
)

const (
	HeaderTenantID = "X-Tenant-Id"
	HeaderBranchID = "X-Branch-Id"
	HeaderActorID  = "X-Actor-Id"
)

type contextKey string

const ctxTenant contextKey = "tenant_context"

// TenantContext is the caller identity resolved by the upstream gateway.
type TenantContext struct {
	TenantID uuid.UUID
	BranchID *uuid.UUID
	ActorID  uuid.UUID
}

// TenantFromContext returns the identity stored by Tenant.
func TenantFromContext(ctx context.Context) (TenantContext, bool) {
	if ctx == nil {
		return TenantContext{}, false
	}
	tc, ok := ctx.Value(ctxTenant).(TenantContext)
	return tc, ok
}

// WithTenant injects the identity into the context.
func WithTenant(ctx context.Context, tc TenantContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, tc)
}

// Tenant reads the tenant, branch and actor headers set by the gateway.
// Tenant and actor are mandatory; branch is optional.
func Tenant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := headerUUID(r, HeaderTenantID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if tenantID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing"))
				return
			}
			actorID, err := headerUUID(r, HeaderActorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if actorID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing"))
				return
			}
			branchID, err := headerUUID(r, HeaderBranchID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithTenant(r.Context(), TenantContext{TenantID: *tenantID, BranchID: branchID, ActorID: *actorID})
			if logg != nil {
				ctx = logg.WithTenantID(ctx, tenantID.String())
				ctx = logg.WithActorID(ctx, actorID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func headerUUID(r *http.Request, header string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+header+" header").WithDetails(map[string]any{"header": header})
	}
	return &id, nil
}
