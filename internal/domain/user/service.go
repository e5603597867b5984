package user

import "context"

// PermissionLookup resolves the permission keys a user holds.
type PermissionLookup interface {
	HasPermission(ctx context.Context, u User, permission Permission) (bool, error)
	PermissionsOf(ctx context.Context, u User) (PermissionSet, error)
}
