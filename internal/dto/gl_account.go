package dto

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGLAccountRequest defines the data needed to create a new GL account.
type CreateGLAccountRequest struct {
	AccountNumber string             `json:"accountNumber" binding:"required"`
	Name          string             `json:"name" binding:"required"`
	AccountType   domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode  string             `json:"currencyCode" binding:"required,iso4217"`
	Description   string             `json:"description"` // Optional
}

// UpdateGLAccountRequest defines the data allowed for updating a GL account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateGLAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// TransitionGLAccountRequest names the target lifecycle status for an account.
type TransitionGLAccountRequest struct {
	TargetStatus domain.GLAccountStatus `json:"targetStatus" binding:"required,oneof=ACTIVE INACTIVE ARCHIVED"`
}

// GLAccountResponse defines the data returned for a GL account.
type GLAccountResponse struct {
	AccountID     string                 `json:"accountID"`
	AccountNumber string                 `json:"accountNumber"`
	Name          string                 `json:"name"`
	AccountType   domain.AccountType     `json:"accountType"`
	CurrencyCode  string                 `json:"currencyCode"`
	Description   string                 `json:"description"`
	Status        domain.GLAccountStatus `json:"status"`
	Balance       decimal.Decimal        `json:"balance"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy string                 `json:"lastUpdatedBy"`
}

// ToGLAccountResponse converts a domain.GLAccount to GLAccountResponse DTO
func ToGLAccountResponse(acc *domain.GLAccount) GLAccountResponse {
	return GLAccountResponse{
		AccountID:     acc.AccountID,
		AccountNumber: acc.AccountNumber,
		Name:          acc.Name,
		AccountType:   acc.AccountType,
		CurrencyCode:  acc.CurrencyCode,
		Description:   acc.Description,
		Status:        acc.Status,
		Balance:       acc.Balance,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToListGLAccountResponse converts a slice of domain.GLAccount to DTOs.
func ToListGLAccountResponse(accounts []domain.GLAccount) []GLAccountResponse {
	res := make([]GLAccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToGLAccountResponse(&acc)
	}
	return res
}

// ListGLAccountsParams defines query parameters for listing GL accounts.
type ListGLAccountsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
