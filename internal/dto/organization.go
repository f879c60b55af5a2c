package dto

import (
	"github.com/ledgercore/subledger_app/internal/core/domain"
)

// CreateOrganizationRequest defines the data needed to create an organization.
type CreateOrganizationRequest struct {
	Name                string  `json:"name" binding:"required"`
	Description         string  `json:"description"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode" binding:"omitempty,len=3"`
}

// UpdateOrganizationRequest defines the fields that can be updated on an organization.
type UpdateOrganizationRequest struct {
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode,omitempty" binding:"omitempty,len=3"`
}

// AddUserToOrganizationRequest defines the data needed to add a user to an organization.
type AddUserToOrganizationRequest struct {
	UserID string `json:"userID" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UpdateUserOrganizationRoleRequest changes a member's role within an organization.
type UpdateUserOrganizationRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY REMOVED"`
}

// OrganizationResponse defines the data returned for an organization.
type OrganizationResponse struct {
	OrganizationID      string  `json:"organizationID"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode,omitempty"`
	IsActive            bool    `json:"isActive"`
}

// ToOrganizationResponse converts a domain.Organization to OrganizationResponse DTO.
func ToOrganizationResponse(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		OrganizationID:      org.OrganizationID,
		Name:                org.Name,
		Description:         org.Description,
		DefaultCurrencyCode: org.DefaultCurrencyCode,
		IsActive:            org.IsActive,
	}
}

// ToOrganizationsResponse converts a slice of domain.Organization to response DTOs.
func ToOrganizationsResponse(orgs []domain.Organization) []OrganizationResponse {
	responses := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		responses[i] = ToOrganizationResponse(&orgs[i])
	}
	return responses
}

// UserOrganizationResponse describes a user's membership in an organization.
type UserOrganizationResponse struct {
	UserID         string `json:"userID"`
	UserName       string `json:"userName"`
	OrganizationID string `json:"organizationID"`
	Role           string `json:"role"`
}

// ToUserOrganizationResponse converts a domain.UserOrganization to its response DTO.
func ToUserOrganizationResponse(uo *domain.UserOrganization) UserOrganizationResponse {
	return UserOrganizationResponse{
		UserID:         uo.UserID,
		UserName:       uo.UserName,
		OrganizationID: uo.OrganizationID,
		Role:           string(uo.Role),
	}
}

// ToUserOrganizationsResponse converts memberships to response DTOs.
func ToUserOrganizationsResponse(memberships []domain.UserOrganization) []UserOrganizationResponse {
	responses := make([]UserOrganizationResponse, len(memberships))
	for i := range memberships {
		responses[i] = ToUserOrganizationResponse(&memberships[i])
	}
	return responses
}
