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
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/ledgercore/subledger_app/internal/utils/accounting"
)

// journalService implements the JournalSvcFacade interface
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalAuthorizer adds the organization authorizer dependency
func WithJournalAuthorizer(authorizer portssvc.OrganizationAuthorizerSvc) JournalServiceOption {
	return func(s *journalService) {
		s.OrganizationAuthorizer = authorizer
	}
}

// NewJournalService creates a new journal service with the provided options
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.GLAccountRepositoryFacade, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildTransactions converts the request lines into domain transactions and
// validates them structurally.
func (s *journalService) buildTransactions(journalID string, req dto.CreateJournalRequest, userID string, now time.Time) ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, len(req.Transactions))
	for i, line := range req.Transactions {
		txnDate := req.Date
		if line.TransactionDate != nil {
			txnDate = *line.TransactionDate
		}
		transactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       line.AccountID,
			Amount:          line.Amount,
			TransactionType: line.TransactionType,
			CurrencyCode:    req.CurrencyCode,
			Notes:           line.Notes,
			TransactionDate: txnDate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	if err := accounting.ValidateJournalLines(transactions); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), apperrors.ErrValidation)
	}
	return transactions, nil
}

// fetchAndCheckAccounts loads the accounts referenced by the lines and
// verifies they belong to the organization and can take postings.
func (s *journalService) fetchAndCheckAccounts(ctx context.Context, organizationID string, transactions []domain.Transaction) (map[string]domain.GLAccount, error) {
	idSet := make(map[string]struct{}, len(transactions))
	ids := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		if _, seen := idSet[txn.AccountID]; !seen {
			idSet[txn.AccountID] = struct{}{}
			ids = append(ids, txn.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for journal: %w", err)
	}

	for _, id := range ids {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		if account.OrganizationID != organizationID {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		if account.Status != domain.GLAccountActive {
			return nil, fmt.Errorf("account %s is not active: %w", id, apperrors.ErrValidation)
		}
	}
	return accounts, nil
}

func (s *journalService) CreateJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, organizationID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to create journal",
			slog.String("user_id", creatorUserID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	now := time.Now()
	journalID := uuid.NewString()

	transactions, err := s.buildTransactions(journalID, req, creatorUserID, now)
	if err != nil {
		s.LogError(ctx, err, "Invalid journal lines", slog.String("journal_id", journalID))
		return nil, err
	}

	if _, err := s.fetchAndCheckAccounts(ctx, organizationID, transactions); err != nil {
		s.LogError(ctx, err, "Journal references unusable accounts",
			slog.String("journal_id", journalID))
		return nil, err
	}

	totalDebit, totalCredit := accounting.ComputeTotals(transactions)
	if !totalDebit.Equal(totalCredit) {
		err := fmt.Errorf("journal does not balance: debits %s, credits %s: %w",
			totalDebit.String(), totalCredit.String(), apperrors.ErrUnbalanced)
		s.LogError(ctx, err, "Unbalanced journal rejected",
			slog.String("journal_id", journalID),
			slog.String("total_debit", totalDebit.String()),
			slog.String("total_credit", totalCredit.String()))
		return nil, err
	}

	journal := domain.Journal{
		JournalID:      journalID,
		OrganizationID: organizationID,
		JournalDate:    req.Date,
		Description:    req.Description,
		CurrencyCode:   req.CurrencyCode,
		Status:         domain.JournalDraft,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		Transactions:   transactions,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// Drafts carry no balance changes; balances move at posting time.
	if err := s.journalRepo.SaveJournal(ctx, journal, transactions, nil); err != nil {
		s.LogError(ctx, err, "Failed to save journal",
			slog.String("journal_id", journalID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal created",
		slog.String("journal_id", journalID),
		slog.String("organization_id", organizationID),
		slog.Int("line_count", len(transactions)))
	return &journal, nil
}

func (s *journalService) PostJournal(ctx context.Context, organizationID string, journalID string, userID string) (*domain.Journal, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	journal, err := s.GetJournalByID(ctx, organizationID, journalID, userID)
	if err != nil {
		return nil, err
	}

	if journal.Status == domain.JournalPosted {
		err := fmt.Errorf("journal %s: %w", journalID, apperrors.ErrAlreadyPosted)
		s.LogError(ctx, err, "Journal already posted", slog.String("journal_id", journalID))
		return nil, err
	}

	transactions := journal.Transactions
	if len(transactions) == 0 {
		transactions, err = s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
		if err != nil {
			s.LogError(ctx, err, "Failed to load journal lines", slog.String("journal_id", journalID))
			return nil, err
		}
	}

	accounts, err := s.fetchAndCheckAccounts(ctx, organizationID, transactions)
	if err != nil {
		s.LogError(ctx, err, "Journal references unusable accounts",
			slog.String("journal_id", journalID))
		return nil, err
	}

	balanceChanges, err := accounting.CalculateBalanceChanges(transactions, accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate balance changes",
			slog.String("journal_id", journalID))
		return nil, err
	}

	postingDate := time.Now()
	if err := s.journalRepo.PostJournal(ctx, journalID, postingDate, balanceChanges, userID); err != nil {
		s.LogError(ctx, err, "Failed to post journal", slog.String("journal_id", journalID))
		return nil, err
	}

	journal.Status = domain.JournalPosted
	journal.PostingDate = &postingDate
	journal.LastUpdatedAt = postingDate
	journal.LastUpdatedBy = userID

	s.LogInfo(ctx, "Journal posted",
		slog.String("journal_id", journalID),
		slog.String("organization_id", organizationID))
	return journal, nil
}

func (s *journalService) ReverseJournal(ctx context.Context, organizationID string, journalID string, reversalReason string, userID string) (*domain.Journal, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	source, err := s.GetJournalByID(ctx, organizationID, journalID, userID)
	if err != nil {
		return nil, err
	}

	// Only posted journals can be reversed; drafts are simply edited or discarded.
	if source.Status != domain.JournalPosted {
		err := fmt.Errorf("journal %s is not posted: %w", journalID, apperrors.ErrValidation)
		s.LogError(ctx, err, "Attempt to reverse unposted journal",
			slog.String("journal_id", journalID),
			slog.String("status", string(source.Status)))
		return nil, err
	}

	sourceLines := source.Transactions
	if len(sourceLines) == 0 {
		sourceLines, err = s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
		if err != nil {
			s.LogError(ctx, err, "Failed to load source journal lines",
				slog.String("journal_id", journalID))
			return nil, err
		}
	}

	now := time.Now()
	reversalID := uuid.NewString()
	sourceID := source.JournalID

	reversalLines := make([]domain.Transaction, len(sourceLines))
	for i, line := range sourceLines {
		reversalLines[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       reversalID,
			AccountID:       line.AccountID,
			Amount:          line.Amount,
			TransactionType: line.TransactionType.Opposite(),
			CurrencyCode:    line.CurrencyCode,
			Notes:           line.Notes,
			TransactionDate: now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accounts, err := s.fetchAndCheckAccounts(ctx, organizationID, reversalLines)
	if err != nil {
		s.LogError(ctx, err, "Reversal references unusable accounts",
			slog.String("journal_id", journalID))
		return nil, err
	}

	balanceChanges, err := accounting.CalculateBalanceChanges(reversalLines, accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate reversal balance changes",
			slog.String("journal_id", journalID))
		return nil, err
	}

	totalDebit, totalCredit := accounting.ComputeTotals(reversalLines)
	reversal := domain.Journal{
		JournalID:           reversalID,
		OrganizationID:      organizationID,
		JournalDate:         now,
		Description:         fmt.Sprintf("Reversal of journal %s: %s", sourceID, reversalReason),
		CurrencyCode:        source.CurrencyCode,
		Status:              domain.JournalPosted,
		TotalDebit:          totalDebit,
		TotalCredit:         totalCredit,
		PostingDate:         &now,
		ReversalOfJournalID: &sourceID,
		Transactions:        reversalLines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// The reversal is written already posted, with its balance changes, in
	// one database transaction. The source journal is left untouched.
	if err := s.journalRepo.SaveJournal(ctx, reversal, reversalLines, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save reversal journal",
			slog.String("journal_id", journalID),
			slog.String("reversal_id", reversalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal reversed",
		slog.String("journal_id", journalID),
		slog.String("reversal_id", reversalID),
		slog.String("organization_id", organizationID))
	return &reversal, nil
}

func (s *journalService) GetJournalByID(ctx context.Context, organizationID string, journalID string, requestingUserID string) (*domain.Journal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID",
				slog.String("journal_id", journalID))
		}
		return nil, err
	}

	if journal.OrganizationID != organizationID {
		s.LogDebug(ctx, "Journal belongs to different organization",
			slog.String("journal_id", journalID))
		return nil, apperrors.ErrNotFound
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal lines",
			slog.String("journal_id", journalID))
		return nil, err
	}
	journal.Transactions = transactions

	return journal, nil
}

func (s *journalService) ListJournals(ctx context.Context, organizationID string, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournalsByOrganization(ctx, organizationID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals",
			slog.String("organization_id", organizationID))
		return nil, fmt.Errorf("failed to list journals for organization %s: %w", organizationID, err)
	}

	resp := &dto.ListJournalsResponse{
		Journals:  make([]dto.JournalResponse, 0, len(journals)),
		NextToken: nextToken,
	}

	if params.IncludeTransactions && len(journals) > 0 {
		journalIDs := make([]string, len(journals))
		for i, j := range journals {
			journalIDs[i] = j.JournalID
		}
		txnsByJournal, err := s.journalRepo.FindTransactionsByJournalIDs(ctx, journalIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to load lines for journal page",
				slog.String("organization_id", organizationID))
			return nil, err
		}
		for i := range journals {
			journals[i].Transactions = txnsByJournal[journals[i].JournalID]
		}
	}

	for i := range journals {
		resp.Journals = append(resp.Journals, dto.ToJournalResponse(&journals[i]))
	}
	return resp, nil
}

func (s *journalService) ListTransactionsByAccount(ctx context.Context, organizationID string, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	// Verify the account exists and belongs to the organization.
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OrganizationID != organizationID {
		return nil, apperrors.ErrNotFound
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.journalRepo.ListTransactionsByAccountID(ctx, organizationID, accountID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account transactions",
			slog.String("account_id", accountID))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}
