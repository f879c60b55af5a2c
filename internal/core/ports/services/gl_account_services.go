package services

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// GLAccountReaderSvc defines read operations for GL account data
type GLAccountReaderSvc interface {
	// GetAccountByID retrieves a specific GL account by its unique identifier.
	GetAccountByID(ctx context.Context, organizationID string, accountID string, userID string) (*domain.GLAccount, error)

	// GetAccountByIDs retrieves multiple GL accounts by their IDs.
	GetAccountByIDs(ctx context.Context, organizationID string, accountIDs []string, userID string) (map[string]domain.GLAccount, error)

	// ListAccounts retrieves a paginated list of GL accounts for a given organization.
	ListAccounts(ctx context.Context, organizationID string, userID string, limit int, offset int) ([]domain.GLAccount, error)
}

// GLAccountWriterSvc defines write operations for GL account data
type GLAccountWriterSvc interface {
	// CreateAccount persists a new GL account in DRAFT status.
	CreateAccount(ctx context.Context, organizationID string, req dto.CreateGLAccountRequest, userID string) (*domain.GLAccount, error)

	// UpdateAccount updates a GL account's descriptive details.
	UpdateAccount(ctx context.Context, organizationID string, accountID string, req dto.UpdateGLAccountRequest, userID string) (*domain.GLAccount, error)

	// TransitionAccount moves an account along its lifecycle
	// (DRAFT->ACTIVE, ACTIVE->INACTIVE, INACTIVE->ACTIVE|ARCHIVED).
	TransitionAccount(ctx context.Context, organizationID string, accountID string, target domain.GLAccountStatus, userID string) (*domain.GLAccount, error)
}

// GLAccountSvcFacade combines all GL-account-related service interfaces
type GLAccountSvcFacade interface {
	GLAccountReaderSvc
	GLAccountWriterSvc
}
