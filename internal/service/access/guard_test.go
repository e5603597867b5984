package access

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]user.User
	err   error
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListByIDs(ctx context.Context, organizationID string, ids []string) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok && u.OrganizationID == organizationID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePerms map[user.Role]user.PermissionSet

func (f fakePerms) HasPermission(ctx context.Context, u user.User, p user.Permission) (bool, error) {
	return f[u.Role].Has(p), nil
}

func (f fakePerms) PermissionsOf(ctx context.Context, u user.User) (user.PermissionSet, error) {
	if set, ok := f[u.Role]; ok {
		return set, nil
	}
	return user.NewPermissionSet(), nil
}

func strPtr(s string) *string { return &s }

func newGuard() *Guard {
	users := &fakeUsers{users: map[string]user.User{
		"mgr":      {ID: "mgr", OrganizationID: "org", Role: user.RoleManager, IsActive: true},
		"emp":      {ID: "emp", OrganizationID: "org", Role: user.RoleEmployee, IsActive: true, ManagerID: strPtr("mgr")},
		"outsider": {ID: "outsider", OrganizationID: "other", Role: user.RoleEmployee, IsActive: true},
		"gone":     {ID: "gone", OrganizationID: "org", Role: user.RoleHR, IsActive: false},
	}}
	perms := fakePerms{
		user.RoleManager:  user.NewPermissionSet(user.DefaultRolePermissions[user.RoleManager]...),
		user.RoleEmployee: user.NewPermissionSet(user.DefaultRolePermissions[user.RoleEmployee]...),
		user.RoleHR:       user.NewPermissionSet(user.DefaultRolePermissions[user.RoleHR]...),
	}
	return NewGuard(users, perms)
}

func TestGuard_Authorize(t *testing.T) {
	g := newGuard()
	ctx := context.Background()

	s, err := g.Authorize(ctx, "mgr", "emp", user.ScopeGenerateSalary)
	require.NoError(t, err)
	assert.Equal(t, "emp", s.Target.ID)

	_, err = g.Authorize(ctx, "emp", "emp", user.ScopeGenerateSalary)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = g.Authorize(ctx, "emp", "emp", user.ScopeViewSalarySlip)
	assert.NoError(t, err)

	_, err = g.Authorize(ctx, "emp", "mgr", user.ScopeViewSalarySlip)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGuard_Authorize_TenantIsolation(t *testing.T) {
	_, err := newGuard().Authorize(context.Background(), "mgr", "outsider", user.ScopeViewSalarySlip)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestGuard_Authorize_UnknownTarget(t *testing.T) {
	_, err := newGuard().Authorize(context.Background(), "mgr", "nobody", user.ScopeViewSalarySlip)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestGuard_Requester(t *testing.T) {
	g := newGuard()
	ctx := context.Background()

	_, _, err := g.Requester(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, _, err = g.Requester(ctx, "gone")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGuard_StorageFailure(t *testing.T) {
	g := NewGuard(&fakeUsers{err: errors.New("connection reset")}, fakePerms{})
	_, err := g.Authorize(context.Background(), "mgr", "emp", user.ScopeViewSalarySlip)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStorage, appErr.Code)
}

func TestSubjects_AllowsAnyScope(t *testing.T) {
	s := Subjects{
		Requester: user.User{ID: "a"},
		Target:    user.User{ID: "b"},
		Granted:   user.NewPermissionSet(user.PermissionManageSalaryProfileOfAll),
	}
	assert.False(t, s.Allows(user.ScopeViewSalarySlip))
	assert.True(t, s.Allows(user.ScopeViewSalarySlip, user.ScopeManageSalaryProfile))
}
