// Package permissions holds the static role/permission table gating
// every management action. Lookups are pure; changing a role's grants is
// a code change, not a runtime operation.
package permissions

type Permission string

const (
	DashboardAccess     Permission = "dashboard.access"
	DashboardPayments   Permission = "dashboard.payments"
	ManageEvents        Permission = "manage.events"
	ManageRegistrations Permission = "manage.registrations"
	ManageCertificates  Permission = "manage.certificates"
	ManageMembers       Permission = "manage.members"
	ManageUsers         Permission = "manage.users"
)

const (
	RoleUser             = "user"
	RoleMember           = "member"
	RoleExecutiveMember  = "executive_member"
	RoleModerator        = "moderator"
	RoleGeneralSecretary = "general_secretary"
	RolePresident        = "president"
	RoleAdmin            = "admin"
)

// Hierarchy lists roles from least to most privileged. Each role's grant
// set is built from the previous role's set plus deltas, so the superset
// chain holds by construction instead of by hand-kept duplication.
var Hierarchy = []string{
	RoleUser,
	RoleMember,
	RoleExecutiveMember,
	RoleModerator,
	RoleGeneralSecretary,
	RolePresident,
	RoleAdmin,
}

var grants = buildGrants()

func buildGrants() map[string]map[Permission]bool {
	deltas := map[string][]Permission{
		RoleUser:             {},
		RoleMember:           {},
		RoleExecutiveMember:  {DashboardAccess},
		RoleModerator:        {ManageEvents, ManageRegistrations},
		RoleGeneralSecretary: {ManageCertificates, ManageMembers, DashboardPayments},
		RolePresident:        {ManageUsers},
		RoleAdmin:            {},
	}

	table := make(map[string]map[Permission]bool, len(Hierarchy))
	acc := map[Permission]bool{}
	for _, role := range Hierarchy {
		for _, p := range deltas[role] {
			acc[p] = true
		}
		set := make(map[Permission]bool, len(acc))
		for p := range acc {
			set[p] = true
		}
		table[role] = set
	}
	return table
}

// Has reports whether the role is granted the permission. Unknown roles
// hold no permissions.
func Has(role string, perm Permission) bool {
	return grants[role][perm]
}

// HasAny reports whether the role holds at least one of the permissions.
func HasAny(role string, perms ...Permission) bool {
	for _, p := range perms {
		if Has(role, p) {
			return true
		}
	}
	return false
}

// Granted returns a copy of the role's permission set.
func Granted(role string) []Permission {
	set := grants[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// IsMemberTier reports whether the role satisfies members_only category
// access. Plain users and unknown roles do not.
func IsMemberTier(role string) bool {
	for _, r := range Hierarchy[1:] {
		if r == role {
			return true
		}
	}
	return false
}
