package services

import (
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Organization service first since every other service authorizes through it
	container.Organization = NewOrganizationService(repos.OrganizationRepo)
	authorizer := portssvc.OrganizationAuthorizerSvc(container.Organization)

	container.GLAccount = NewGLAccountService(
		repos.GLAccountRepo,
		WithGLAccountAuthorizer(authorizer),
	)
	container.Journal = NewJournalService(
		repos.JournalRepo,
		repos.GLAccountRepo,
		WithJournalAuthorizer(authorizer),
	)
	container.Refund = NewRefundService(
		repos.RefundRepo,
		WithRefundAuthorizer(authorizer),
	)
	container.RuleSet = NewRuleSetService(
		repos.RuleSetRepo,
		repos.GLAccountRepo,
		WithRuleSetAuthorizer(authorizer),
	)
	container.Event = NewEventService(
		repos.EventRepo,
		repos.RuleSetRepo,
		repos.GLAccountRepo,
		WithEventAuthorizer(authorizer),
	)

	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, repos.UserRepo)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	return container
}
