package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/loanledger/api/responses"
	"github.com/angelmondragon/loanledger/api/validators"
	"github.com/angelmondragon/loanledger/internal/accounts"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
	"github.com/angelmondragon/loanledger/pkg/logger"
)

type accountCreateRequest struct {
	Code     string            `json:"code" validate:"required,max=20"`
	Name     string            `json:"name" validate:"required,max=120"`
	Type     enums.AccountType `json:"type" validate:"required,oneof=asset liability income expense cash bank"`
	ParentID *uuid.UUID        `json:"parent_id"`
}

type accountResponse struct {
	ID        uuid.UUID         `json:"id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      enums.AccountType `json:"type"`
	ParentID  *uuid.UUID        `json:"parent_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func accountFromModel(m models.Account) accountResponse {
	return accountResponse{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Type:      m.Type,
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
	}
}

// AccountCreate adds a chart-of-accounts entry.
func AccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload accountCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), accounts.CreateAccountInput{
			Code:     strings.TrimSpace(payload.Code),
			Name:     strings.TrimSpace(payload.Name),
			Type:     payload.Type,
			ParentID: payload.ParentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, accountFromModel(*created))
	}
}

// AccountList returns the chart of accounts, optionally filtered by type.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var accountType *enums.AccountType
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			parsed, err := enums.ParseAccountType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type"))
				return
			}
			accountType = &parsed
		}
		rows, err := svc.List(r.Context(), accountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]accountResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, accountFromModel(row))
		}
		responses.WriteSuccess(w, out)
	}
}
