package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	GLAccountRepo    GLAccountRepositoryFacade
	JournalRepo      JournalRepositoryWithTx
	RefundRepo       RefundRepositoryWithTx
	RuleSetRepo      RuleSetRepositoryFacade
	EventRepo        EventRepositoryFacade
	UserRepo         UserRepositoryFacade
	OrganizationRepo OrganizationRepositoryFacade
	APITokenRepo     APITokenRepository
}
