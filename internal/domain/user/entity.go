package user

import "time"

type Role string

const (
	RoleOwner    Role = "owner"    // Organization owner - full access
	RoleHR       Role = "hr"       // Runs payroll for the whole organization
	RoleManager  Role = "manager"  // Acts on direct reports
	RoleEmployee Role = "employee" // Regular employee
)

type User struct {
	ID             string
	OrganizationID string
	Email          string
	FullName       string
	Role           Role
	ManagerID      *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsManagedBy reports whether managerID is u's direct manager.
func (u User) IsManagedBy(managerID string) bool {
	return u.ManagerID != nil && *u.ManagerID != "" && *u.ManagerID == managerID
}

// SameOrganization reports whether both users belong to the same tenant.
func (u User) SameOrganization(other User) bool {
	return u.OrganizationID != "" && u.OrganizationID == other.OrganizationID
}
