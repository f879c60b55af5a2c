package domain

import "time"

// Organization represents an isolated subledger tenant containing GL
// accounts, journals, refunds, rule sets and ingested events.
type Organization struct {
	OrganizationID      string  `json:"organizationID"` // Primary Key (e.g., UUID)
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode"` // e.g., "USD"
	IsActive            bool    `json:"isActive"`
	AuditFields
}

// UserOrganizationRole defines the possible roles a user can have within an organization.
type UserOrganizationRole string

const (
	RoleAdmin    UserOrganizationRole = "ADMIN"
	RoleMember   UserOrganizationRole = "MEMBER"
	RoleReadOnly UserOrganizationRole = "READONLY"
	RoleRemoved  UserOrganizationRole = "REMOVED" // For users removed from the organization
)

// UserOrganization represents the membership of a User in an Organization.
type UserOrganization struct {
	UserID         string               `json:"userID"` // FK -> users.user_id
	UserName       string               `json:"userName"`
	OrganizationID string               `json:"organizationID"` // FK -> organizations.organization_id
	Role           UserOrganizationRole `json:"role"`
	JoinedAt       time.Time            `json:"joinedAt"`
}
