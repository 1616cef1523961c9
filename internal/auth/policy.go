package auth

// Account roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleUser       = "user"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleSupervisor || s == RoleUser
}

// IsAdministrative reports whether a role passes the administrative checks:
// user management, log viewing and cross-user record access. Both admin and
// supervisor qualify.
func IsAdministrative(role string) bool {
	return role == RoleAdmin || role == RoleSupervisor
}

// Policy is the single decision point for role questions. Every handler
// consults it instead of re-deriving role checks in place. Blocked accounts
// never reach these checks: the session authority refuses to resolve them.
type Policy struct {
	// RootUsername is the one account allowed to grant administrative roles.
	RootUsername string
}

// CanAssignRole reports whether the actor may set the given role on any
// account. Only the root admin may grant admin or supervisor.
func (p Policy) CanAssignRole(actorUsername, role string) bool {
	if role == RoleAdmin || role == RoleSupervisor {
		return actorUsername == p.RootUsername
	}
	return true
}

// IsRoot reports whether the username is the distinguished root account.
func (p Policy) IsRoot(username string) bool {
	return username == p.RootUsername
}

// CanAccessRecord reports whether a principal may read or mutate a record
// owned by ownerID. Owners always may; anyone administrative may, but
// mutations through that path must go through the audited override
// endpoints.
func (p Policy) CanAccessRecord(role string, principalID, ownerID uint) bool {
	if principalID == ownerID {
		return true
	}
	return IsAdministrative(role)
}
