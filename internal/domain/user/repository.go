package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// ListByIDs returns the users of organizationID among ids; unknown ids are skipped.
	ListByIDs(ctx context.Context, organizationID string, ids []string) ([]User, error)
}

// RolePermissionRepository reads the role to permission policy table.
type RolePermissionRepository interface {
	ListRolePermissions(ctx context.Context) (map[Role][]Permission, error)
}
