package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// glAccountService implements the GLAccountSvcFacade interface
type glAccountService struct {
	BaseService
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// GLAccountServiceOption is a functional option for configuring the GL account service
type GLAccountServiceOption func(*glAccountService)

// WithGLAccountAuthorizer adds the organization authorizer dependency
func WithGLAccountAuthorizer(authorizer portssvc.OrganizationAuthorizerSvc) GLAccountServiceOption {
	return func(s *glAccountService) {
		s.OrganizationAuthorizer = authorizer
	}
}

// NewGLAccountService creates a new GL account service with the provided options
func NewGLAccountService(repo portsrepo.GLAccountRepositoryFacade, options ...GLAccountServiceOption) portssvc.GLAccountSvcFacade {
	svc := &glAccountService{
		accountRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure glAccountService implements the GLAccountSvcFacade interface
var _ portssvc.GLAccountSvcFacade = (*glAccountService)(nil)

func (s *glAccountService) CreateAccount(ctx context.Context, organizationID string, req dto.CreateGLAccountRequest, userID string) (*domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to create GL account",
			slog.String("user_id", userID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	if !req.AccountType.IsValid() {
		err := fmt.Errorf("invalid account type %q: %w", req.AccountType, apperrors.ErrValidation)
		s.LogError(ctx, err, "Invalid account type", slog.String("account_type", string(req.AccountType)))
		return nil, err
	}

	// Account numbers are unique per organization
	existing, err := s.accountRepo.FindAccountByNumber(ctx, organizationID, req.AccountNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account number uniqueness",
			slog.String("account_number", req.AccountNumber))
		return nil, err
	}
	if existing != nil {
		err := fmt.Errorf("account number %s already exists: %w", req.AccountNumber, apperrors.ErrDuplicate)
		s.LogError(ctx, err, "Duplicate account number",
			slog.String("account_number", req.AccountNumber),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	now := time.Now()
	account := domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: organizationID,
		AccountNumber:  req.AccountNumber,
		Name:           req.Name,
		AccountType:    req.AccountType,
		CurrencyCode:   req.CurrencyCode,
		Description:    req.Description,
		Status:         domain.GLAccountDraft,
		Balance:        decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save GL account",
			slog.String("account_id", account.AccountID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	s.LogInfo(ctx, "GL account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber),
		slog.String("organization_id", organizationID))
	return &account, nil
}

func (s *glAccountService) GetAccountByID(ctx context.Context, organizationID string, accountID string, userID string) (*domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find GL account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}

	// Return NotFound to obscure existence from other organizations
	if account.OrganizationID != organizationID {
		s.LogDebug(ctx, "GL account belongs to different organization",
			slog.String("account_id", accountID),
			slog.String("account_organization", account.OrganizationID),
			slog.String("requested_organization", organizationID))
		return nil, apperrors.ErrNotFound
	}

	return account, nil
}

func (s *glAccountService) GetAccountByIDs(ctx context.Context, organizationID string, accountIDs []string, userID string) (map[string]domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find GL accounts by IDs",
			slog.String("account_ids", fmt.Sprintf("%v", accountIDs)))
		return nil, err
	}

	for _, account := range accounts {
		if account.OrganizationID != organizationID {
			s.LogDebug(ctx, "GL account belongs to different organization",
				slog.String("account_id", account.AccountID))
			return nil, apperrors.ErrNotFound
		}
	}

	return accounts, nil
}

func (s *glAccountService) ListAccounts(ctx context.Context, organizationID string, userID string, limit int, offset int) ([]domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, organizationID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list GL accounts",
			slog.String("organization_id", organizationID),
			slog.Int("limit", limit),
			slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list accounts for organization %s: %w", organizationID, err)
	}

	if accounts == nil {
		return []domain.GLAccount{}, nil
	}
	return accounts, nil
}

func (s *glAccountService) UpdateAccount(ctx context.Context, organizationID string, accountID string, req dto.UpdateGLAccountRequest, userID string) (*domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(ctx, organizationID, accountID, userID)
	if err != nil {
		return nil, err
	}

	// Archived accounts are frozen
	if account.Status == domain.GLAccountArchived {
		err := fmt.Errorf("account %s is archived: %w", accountID, apperrors.ErrValidation)
		s.LogError(ctx, err, "Attempt to update archived account",
			slog.String("account_id", accountID))
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No fields provided for GL account update",
			slog.String("account_id", accountID))
		return account, nil
	}

	now := time.Now()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update GL account",
			slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "GL account updated",
		slog.String("account_id", account.AccountID),
		slog.String("organization_id", account.OrganizationID))
	return account, nil
}

func (s *glAccountService) TransitionAccount(ctx context.Context, organizationID string, accountID string, target domain.GLAccountStatus, userID string) (*domain.GLAccount, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(ctx, organizationID, accountID, userID)
	if err != nil {
		return nil, err
	}

	if !account.Status.CanTransitionTo(target) {
		err := &statemachine.TransitionError{From: string(account.Status), To: string(target)}
		s.LogError(ctx, err, "Illegal GL account transition",
			slog.String("account_id", accountID),
			slog.String("from", string(account.Status)),
			slog.String("to", string(target)))
		return nil, err
	}

	now := time.Now()
	if err := s.accountRepo.UpdateAccountStatus(ctx, accountID, account.Status, target, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to transition GL account",
			slog.String("account_id", accountID),
			slog.String("target", string(target)))
		return nil, err
	}

	account.Status = target
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	s.LogInfo(ctx, "GL account transitioned",
		slog.String("account_id", accountID),
		slog.String("status", string(target)))
	return account, nil
}
