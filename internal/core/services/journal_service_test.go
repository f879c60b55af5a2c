package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

// Ensure MockJournalRepository implements the full interface
var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListJournalsByOrganization(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	var journals []domain.Journal
	if args.Get(0) != nil {
		journals = args.Get(0).([]domain.Journal)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return journals, token, args.Error(2)
}

func (m *MockJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, transactions, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) PostJournal(ctx context.Context, journalID string, postingDate time.Time, balanceChanges map[string]decimal.Decimal, userID string) error {
	args := m.Called(ctx, journalID, postingDate, balanceChanges, userID)
	return args.Error(0)
}

func (m *MockJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error) {
	args := m.Called(ctx, journalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) ListTransactionsByAccountID(ctx context.Context, organizationID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, organizationID, accountID, limit, nextToken)
	var transactions []domain.Transaction
	if args.Get(0) != nil {
		transactions = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		token = &tokenVal
	}
	return transactions, token, args.Error(2)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock GLAccountRepository ---
type MockGLAccountRepository struct {
	mock.Mock
}

// Ensure MockGLAccountRepository implements the full interface
var _ portsrepo.GLAccountRepositoryFacade = (*MockGLAccountRepository)(nil)

func (m *MockGLAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.GLAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) FindAccountByNumber(ctx context.Context, organizationID string, accountNumber string) (*domain.GLAccount, error) {
	args := m.Called(ctx, organizationID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.GLAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) ListAccounts(ctx context.Context, organizationID string, limit int, offset int) ([]domain.GLAccount, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) SaveAccount(ctx context.Context, account domain.GLAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockGLAccountRepository) UpdateAccount(ctx context.Context, account domain.GLAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockGLAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, expected domain.GLAccountStatus, target domain.GLAccountStatus, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, expected, target, userID, now)
	return args.Error(0)
}

func (m *MockGLAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.GLAccount, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockGLAccountRepository
	service         portssvc.JournalSvcFacade
	assetAccount    domain.GLAccount
	revenueAccount  domain.GLAccount
	inactiveAccount domain.GLAccount
	organizationID  string
	userID          string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockGLAccountRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountRepo)

	suite.organizationID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.assetAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "1000",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountActive,
	}
	suite.revenueAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "4000",
		AccountType:    domain.Revenue,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountActive,
	}
	suite.inactiveAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "1090",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountInactive,
	}
}

func (suite *JournalServiceTestSuite) accountsMap(accounts ...domain.GLAccount) map[string]domain.GLAccount {
	m := make(map[string]domain.GLAccount, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}

func (suite *JournalServiceTestSuite) balancedRequest(amount int64) dto.CreateJournalRequest {
	return dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Invoice posting",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(amount), TransactionType: domain.Debit},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(amount), TransactionType: domain.Credit},
		},
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestCreateJournal_Success() {
	ctx := context.Background()
	req := suite.balancedRequest(100)

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.assetAccount.AccountID, suite.revenueAccount.AccountID}).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			journal := args.Get(1).(domain.Journal)
			suite.Equal(domain.JournalDraft, journal.Status)
			suite.Nil(args.Get(3))
		}).
		Return(nil).Once()

	created, err := suite.service.CreateJournal(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.JournalID)
	suite.Equal(suite.organizationID, created.OrganizationID)
	suite.Equal(domain.JournalDraft, created.Status)
	suite.True(created.TotalDebit.Equal(decimal.NewFromInt(100)))
	suite.True(created.TotalCredit.Equal(decimal.NewFromInt(100)))
	suite.Nil(created.PostingDate)
	suite.Equal(suite.userID, created.CreatedBy)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateJournal_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Debits exceed credits",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Credit},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()

	created, err := suite.service.CreateJournal(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.True(errors.Is(err, apperrors.ErrUnbalanced))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_SingleLineRejected() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "One-sided entry",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
		},
	}

	created, err := suite.service.CreateJournal(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateJournal_InactiveAccountRejected() {
	ctx := context.Background()
	req := dto.CreateJournalRequest{
		Date:         time.Now(),
		Description:  "Line against inactive account",
		CurrencyCode: "USD",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.inactiveAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.inactiveAccount, suite.revenueAccount), nil).Once()

	created, err := suite.service.CreateJournal(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournal_Success() {
	ctx := context.Background()
	journalID := uuid.NewString()
	lines := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit, CurrencyCode: "USD"},
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit, CurrencyCode: "USD"},
	}
	draft := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: suite.organizationID,
		CurrencyCode:   "USD",
		Status:         domain.JournalDraft,
		TotalDebit:     decimal.NewFromInt(100),
		TotalCredit:    decimal.NewFromInt(100),
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(draft, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(lines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockJournalRepo.On("PostJournal", ctx, journalID, mock.AnythingOfType("time.Time"), mock.Anything, suite.userID).
		Run(func(args mock.Arguments) {
			balanceChanges := args.Get(3).(map[string]decimal.Decimal)
			// Debit increases the asset, credit increases the revenue.
			suite.True(balanceChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(100)))
			suite.True(balanceChanges[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(100)))
		}).
		Return(nil).Once()

	posted, err := suite.service.PostJournal(ctx, suite.organizationID, journalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.JournalPosted, posted.Status)
	suite.Require().NotNil(posted.PostingDate)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournal_AlreadyPosted() {
	ctx := context.Background()
	journalID := uuid.NewString()
	now := time.Now()
	posted := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: suite.organizationID,
		Status:         domain.JournalPosted,
		PostingDate:    &now,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(posted, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return([]domain.Transaction{}, nil).Once()

	result, err := suite.service.PostJournal(ctx, suite.organizationID, journalID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.True(errors.Is(err, apperrors.ErrAlreadyPosted))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournal_WrongOrganization() {
	ctx := context.Background()
	journalID := uuid.NewString()
	foreign := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: uuid.NewString(),
		Status:         domain.JournalDraft,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(foreign, nil).Once()

	result, err := suite.service.PostJournal(ctx, suite.organizationID, journalID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func (suite *JournalServiceTestSuite) TestReverseJournal_Success() {
	ctx := context.Background()
	journalID := uuid.NewString()
	postingDate := time.Now().Add(-24 * time.Hour)
	sourceLines := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(250), TransactionType: domain.Debit, CurrencyCode: "USD"},
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(250), TransactionType: domain.Credit, CurrencyCode: "USD"},
	}
	source := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: suite.organizationID,
		CurrencyCode:   "USD",
		Status:         domain.JournalPosted,
		TotalDebit:     decimal.NewFromInt(250),
		TotalCredit:    decimal.NewFromInt(250),
		PostingDate:    &postingDate,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(source, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(sourceLines, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			reversal := args.Get(1).(domain.Journal)
			reversalLines := args.Get(2).([]domain.Transaction)
			balanceChanges := args.Get(3).(map[string]decimal.Decimal)

			suite.Equal(domain.JournalPosted, reversal.Status)
			suite.Require().NotNil(reversal.ReversalOfJournalID)
			suite.Equal(journalID, *reversal.ReversalOfJournalID)
			suite.NotEqual(journalID, reversal.JournalID)

			suite.Require().Len(reversalLines, 2)
			suite.Equal(domain.Credit, reversalLines[0].TransactionType)
			suite.Equal(domain.Debit, reversalLines[1].TransactionType)
			suite.True(reversalLines[0].Amount.Equal(decimal.NewFromInt(250)))

			// The reversal undoes the signed effects of the source.
			suite.True(balanceChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(-250)))
			suite.True(balanceChanges[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(-250)))
		}).
		Return(nil).Once()

	reversal, err := suite.service.ReverseJournal(ctx, suite.organizationID, journalID, "duplicate invoice", suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.JournalPosted, reversal.Status)
	suite.Contains(reversal.Description, journalID)
	suite.Contains(reversal.Description, "duplicate invoice")

	// The source journal is never mutated; reversal is a new entry only.
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.Equal(domain.JournalPosted, source.Status)
	suite.Nil(source.ReversalOfJournalID)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseJournal_DraftRejected() {
	ctx := context.Background()
	journalID := uuid.NewString()
	draft := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: suite.organizationID,
		Status:         domain.JournalDraft,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(draft, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return([]domain.Transaction{}, nil).Once()

	reversal, err := suite.service.ReverseJournal(ctx, suite.organizationID, journalID, "reason", suite.userID)

	suite.Require().Error(err)
	suite.Nil(reversal)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestGetJournalByID_LoadsLines() {
	ctx := context.Background()
	journalID := uuid.NewString()
	journal := &domain.Journal{
		JournalID:      journalID,
		OrganizationID: suite.organizationID,
		Status:         domain.JournalDraft,
	}
	lines := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: journalID, AccountID: suite.assetAccount.AccountID},
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, journalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, journalID).Return(lines, nil).Once()

	got, err := suite.service.GetJournalByID(ctx, suite.organizationID, journalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Len(got.Transactions, 1)
}

func (suite *JournalServiceTestSuite) TestListJournals_PassesToken() {
	ctx := context.Background()
	token := "page-2"
	journals := []domain.Journal{
		{JournalID: uuid.NewString(), OrganizationID: suite.organizationID, Status: domain.JournalPosted},
	}

	suite.mockJournalRepo.On("ListJournalsByOrganization", ctx, suite.organizationID, 20, (*string)(nil)).
		Return(journals, token, nil).Once()

	resp, err := suite.service.ListJournals(ctx, suite.organizationID, suite.userID, dto.ListJournalsParams{})

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Len(resp.Journals, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
