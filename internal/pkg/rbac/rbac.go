package rbac

import (
	"context"
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"go.uber.org/zap"
)

// Roles map straight to permission keys; there is no resource/action split.
const modelText = `[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	return casbin.NewEnforcer(m)
}

// Service answers permission lookups from a casbin enforcer loaded with the
// role_permissions table.
type Service struct {
	repo     user.RolePermissionRepository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

var _ user.PermissionLookup = (*Service)(nil)

func NewService(repo user.RolePermissionRepository, enforcer *casbin.Enforcer, logger ...*zap.Logger) *Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &Service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

// LoadPolicy replaces the in-memory policy. An empty table falls back to
// user.DefaultRolePermissions.
func (s *Service) LoadPolicy(ctx context.Context) error {
	rolePerms, err := s.repo.ListRolePermissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list role permissions: %w", err)
	}
	source := "table"
	if len(rolePerms) == 0 {
		rolePerms = user.DefaultRolePermissions
		source = "defaults"
	}

	var rules [][]string
	for role, perms := range rolePerms {
		for _, p := range perms {
			rules = append(rules, []string{string(role), string(p)})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	if len(rules) > 0 {
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return fmt.Errorf("failed to add rbac policies: %w", err)
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.String("source", source),
		zap.Int("roles", len(rolePerms)),
		zap.Int("rules", len(rules)),
	)
	return nil
}

func (s *Service) HasPermission(ctx context.Context, u user.User, permission user.Permission) (bool, error) {
	if !u.IsActive || u.Role == "" || permission == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(string(u.Role), string(permission))
	if err != nil {
		return false, fmt.Errorf("failed to enforce %s for role %s: %w", permission, u.Role, err)
	}
	return allowed, nil
}

func (s *Service) PermissionsOf(ctx context.Context, u user.User) (user.PermissionSet, error) {
	set := user.NewPermissionSet()
	if !u.IsActive || u.Role == "" {
		return set, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.enforcer.GetFilteredPolicy(0, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions for role %s: %w", u.Role, err)
	}
	for _, rule := range rules {
		if len(rule) > 1 {
			set[user.Permission(rule[1])] = struct{}{}
		}
	}
	return set, nil
}
