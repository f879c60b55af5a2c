package pgsql

import (
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	glAccountRepo := newPgxGLAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, glAccountRepo)
	refundRepo := newPgxRefundRepository(dbPool)
	ruleSetRepo := newPgxRuleSetRepository(dbPool)
	eventRepo := newPgxEventRepository(dbPool, glAccountRepo)
	userRepo := newPgxUserRepository(dbPool)
	organizationRepo := newPgxOrganizationRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		GLAccountRepo:    glAccountRepo,
		JournalRepo:      journalRepo,
		RefundRepo:       refundRepo,
		RuleSetRepo:      ruleSetRepo,
		EventRepo:        eventRepo,
		UserRepo:         userRepo,
		OrganizationRepo: organizationRepo,
		APITokenRepo:     apiTokenRepo,
	}
}
