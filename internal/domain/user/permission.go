package user

type Permission string

const (
	// Payslip read
	PermissionViewSalarySlipOfMyself       Permission = "view_salary_slip_of_myself"
	PermissionViewSalarySlipOfSubordinates Permission = "view_salary_slip_of_subordinates"
	PermissionViewSalarySlipOfAll          Permission = "view_salary_slip_of_all"

	// Salary generation
	PermissionGenerateSalaryToMyself       Permission = "generate_salary_to_myself"
	PermissionGenerateSalaryOfSubordinates Permission = "generate_salary_of_subordinates"
	PermissionGenerateSalaryOfAll          Permission = "generate_salary_of_all"

	// Payment completion and salary parameters
	PermissionPaySalaryOfAll           Permission = "pay_salary_of_all"
	PermissionManageSalaryProfileOfAll Permission = "manage_salary_profile_of_all"

	// Leave approval
	PermissionApproveLeaveOfSubordinates Permission = "approve_leave_of_subordinates"
	PermissionApproveLeaveOfAll          Permission = "approve_leave_of_all"

	// Attendance verification
	PermissionVerifyAttendanceOfSubordinates Permission = "verify_attendance_of_subordinates"
	PermissionVerifyAttendanceOfAll          Permission = "verify_attendance_of_all"
)

// AccessScope names the self / subordinate / all permission keys of one
// action. An empty key is never granted.
type AccessScope struct {
	Self        Permission
	Subordinate Permission
	All         Permission
}

var (
	ScopeViewSalarySlip = AccessScope{
		Self:        PermissionViewSalarySlipOfMyself,
		Subordinate: PermissionViewSalarySlipOfSubordinates,
		All:         PermissionViewSalarySlipOfAll,
	}
	ScopeGenerateSalary = AccessScope{
		Self:        PermissionGenerateSalaryToMyself,
		Subordinate: PermissionGenerateSalaryOfSubordinates,
		All:         PermissionGenerateSalaryOfAll,
	}
	ScopePaySalary = AccessScope{
		All: PermissionPaySalaryOfAll,
	}
	ScopeManageSalaryProfile = AccessScope{
		All: PermissionManageSalaryProfileOfAll,
	}
	ScopeApproveLeave = AccessScope{
		Subordinate: PermissionApproveLeaveOfSubordinates,
		All:         PermissionApproveLeaveOfAll,
	}
	ScopeVerifyAttendance = AccessScope{
		Subordinate: PermissionVerifyAttendanceOfSubordinates,
		All:         PermissionVerifyAttendanceOfAll,
	}
)

// PermissionSet is the set of permission keys a requester holds.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	if p == "" {
		return false
	}
	_, ok := s[p]
	return ok
}

// CanAccess is the single authorization predicate for salary, leave and
// attendance actions. requester may act on target when acting on
// themselves with scope.Self, when they are target's direct manager with
// scope.Subordinate, or when they hold scope.All.
func CanAccess(requester User, target User, granted PermissionSet, scope AccessScope) bool {
	if requester.ID == "" || target.ID == "" {
		return false
	}
	if requester.ID == target.ID && granted.Has(scope.Self) {
		return true
	}
	if target.IsManagedBy(requester.ID) && granted.Has(scope.Subordinate) {
		return true
	}
	return granted.Has(scope.All)
}

// DefaultRolePermissions seeds the policy when the role_permissions table is empty.
var DefaultRolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionViewSalarySlipOfMyself,
		PermissionViewSalarySlipOfAll,
		PermissionGenerateSalaryToMyself,
		PermissionGenerateSalaryOfAll,
		PermissionPaySalaryOfAll,
		PermissionManageSalaryProfileOfAll,
		PermissionApproveLeaveOfAll,
		PermissionVerifyAttendanceOfAll,
	},
	RoleHR: {
		PermissionViewSalarySlipOfMyself,
		PermissionViewSalarySlipOfAll,
		PermissionGenerateSalaryOfAll,
		PermissionPaySalaryOfAll,
		PermissionManageSalaryProfileOfAll,
		PermissionApproveLeaveOfAll,
		PermissionVerifyAttendanceOfAll,
	},
	RoleManager: {
		PermissionViewSalarySlipOfMyself,
		PermissionViewSalarySlipOfSubordinates,
		PermissionGenerateSalaryOfSubordinates,
		PermissionApproveLeaveOfSubordinates,
		PermissionVerifyAttendanceOfSubordinates,
	},
	RoleEmployee: {
		PermissionViewSalarySlipOfMyself,
	},
}
