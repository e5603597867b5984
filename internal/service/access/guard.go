package access

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

// Subjects are the loaded parties of one authorization decision.
type Subjects struct {
	Requester user.User
	Target    user.User
	Granted   user.PermissionSet
}

// Allows reports whether any of scopes admits the requester on the target.
func (s Subjects) Allows(scopes ...user.AccessScope) bool {
	for _, scope := range scopes {
		if user.CanAccess(s.Requester, s.Target, s.Granted, scope) {
			return true
		}
	}
	return false
}

// Guard loads users and permissions and applies user.CanAccess. Targets in
// another organization are reported as not found.
type Guard struct {
	users user.UserRepository
	perms user.PermissionLookup
}

func NewGuard(users user.UserRepository, perms user.PermissionLookup) *Guard {
	return &Guard{users: users, perms: perms}
}

// Requester loads the acting user and their permission set.
func (g *Guard) Requester(ctx context.Context, requesterID string) (user.User, user.PermissionSet, error) {
	requester, err := g.users.GetByID(ctx, requesterID)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.User{}, nil, apperror.ErrUnauthenticated
	}
	if err != nil {
		return user.User{}, nil, apperror.Storage(err)
	}
	if !requester.IsActive {
		return user.User{}, nil, apperror.ErrUnauthorized
	}

	granted, err := g.perms.PermissionsOf(ctx, requester)
	if err != nil {
		return user.User{}, nil, apperror.Storage(err)
	}
	return requester, granted, nil
}

// Target loads targetID within the requester's organization.
func (g *Guard) Target(ctx context.Context, requester user.User, targetID string) (user.User, error) {
	if targetID == requester.ID {
		return requester, nil
	}
	target, err := g.users.GetByID(ctx, targetID)
	if err != nil {
		return user.User{}, apperror.Storage(err)
	}
	if !requester.SameOrganization(target) {
		return user.User{}, user.ErrUserNotFound
	}
	return target, nil
}

// Authorize loads both users and requires one of scopes to admit the request.
func (g *Guard) Authorize(ctx context.Context, requesterID, targetID string, scopes ...user.AccessScope) (Subjects, error) {
	requester, granted, err := g.Requester(ctx, requesterID)
	if err != nil {
		return Subjects{}, err
	}
	target, err := g.Target(ctx, requester, targetID)
	if err != nil {
		return Subjects{}, err
	}

	subjects := Subjects{Requester: requester, Target: target, Granted: granted}
	if !subjects.Allows(scopes...) {
		return Subjects{}, apperror.ErrUnauthorized
	}
	return subjects, nil
}
