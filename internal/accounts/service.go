package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/loanledger/pkg/db"
	"github.com/angelmondragon/loanledger/pkg/db/models"
	"github.com/angelmondragon/loanledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/loanledger/pkg/errors"
)

// Service exposes the account registry.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	List(ctx context.Context, accountType *enums.AccountType) ([]models.Account, error)
	Resolve(ctx context.Context, tx *gorm.DB, roles ...Role) (map[Role]models.Account, error)
}

// CreateAccountInput carries a new chart-of-accounts row.
type CreateAccountInput struct {
	Code     string
	Name     string
	Type     enums.AccountType
	ParentID *uuid.UUID
}

type service struct {
	repo  Repository
	codes Codes
}

// NewService builds the registry over the repository and the role mapping.
func NewService(repo Repository, codes Codes) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("account role codes required")
	}
	return &service{repo: repo, codes: codes}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account code required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid account type %q", input.Type))
	}

	if input.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent account not found").
					WithDetails(map[string]any{"parent_id": *input.ParentID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent account")
		}
	}

	account := &models.Account{
		Code:     code,
		Name:     name,
		Type:     input.Type,
		ParentID: input.ParentID,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account code already exists").
				WithDetails(map[string]any{"code": code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return account, nil
}

func (s *service) List(ctx context.Context, accountType *enums.AccountType) ([]models.Account, error) {
	if accountType != nil && !accountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid account type %q", *accountType))
	}
	rows, err := s.repo.List(ctx, accountType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return rows, nil
}

// Resolve looks up the accounts that back the given roles inside tx. A role
// without a configured or existing account is a setup error reported with the
// missing codes.
func (s *service) Resolve(ctx context.Context, tx *gorm.DB, roles ...Role) (map[Role]models.Account, error) {
	repo := s.repo.WithTx(tx)

	codes := make([]string, 0, len(roles))
	for _, role := range roles {
		code, ok := s.codes[role]
		if !ok || code == "" {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("no account code configured for role %s", role))
		}
		codes = append(codes, code)
	}

	rows, err := repo.FindByCodes(ctx, codes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accounts")
	}
	byCode := make(map[string]models.Account, len(rows))
	for _, row := range rows {
		byCode[row.Code] = row
	}

	resolved := make(map[Role]models.Account, len(roles))
	var missing []string
	for _, role := range roles {
		account, ok := byCode[s.codes[role]]
		if !ok {
			missing = append(missing, s.codes[role])
			continue
		}
		resolved[role] = account
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "posting accounts missing from chart").
			WithDetails(map[string]any{"codes": missing})
	}
	return resolved, nil
}
