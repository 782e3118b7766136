package unitofwork

import (
	"context"

	"gen8n-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one transaction once Begin is
// called, or to the plain pool otherwise.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SettingsRepository() contract.SettingsRepository
	ProfileRepository() contract.ProfileRepository
	WorkflowRepository() contract.WorkflowRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
	FeedbackRepository() contract.FeedbackRepository
}
