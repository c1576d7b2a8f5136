package roles

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// Role is an account role name as issued by the backend.
type Role string

const (
	SuperAdmin Role = "superAdmin"
	NLA        Role = "nla"
	Admin      Role = "admin"
	Manager    Role = "manager"
	Agent      Role = "agent"
	Notary     Role = "notary"
	Blocker    Role = "blocker"
	Paterns    Role = "paterns"
	Buyer      Role = "buyer"
)

var (
	ErrUnknownRole     = goerr.New("unknown role")
	ErrCannotManage    = goerr.New("actor cannot manage roles")
	ErrCannotAssign    = goerr.New("actor cannot assign role")
	ErrNoRolesProvided = goerr.New("at least one role is required")
)

const (
	ActorKey = "actor"
	RoleKey  = "role"
)

// All lists the known roles from most to least privileged.
var All = []Role{SuperAdmin, NLA, Admin, Manager, Agent, Notary, Blocker, Paterns, Buyer}

// Level is the rank of r in the hierarchy; unknown roles rank 0.
func Level(r Role) int {
	idx := slices.Index(All, r)
	if idx < 0 {
		return 0
	}
	return len(All) - idx
}

// Valid reports whether r is a known role.
func Valid(r Role) bool {
	return Level(r) > 0
}

// Highest returns the most privileged of roles, or "" for none. Ties keep
// the first occurrence.
func Highest(roles []Role) Role {
	var best Role
	for _, r := range roles {
		if best == "" || Level(r) > Level(best) {
			best = r
		}
	}
	return best
}

// FromStrings converts backend role names.
func FromStrings(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, name := range names {
		out = append(out, Role(name))
	}
	return out
}

// CanManage reports whether actor may change other users' roles.
func CanManage(actor Role) bool {
	switch actor {
	case SuperAdmin, NLA, Admin, Manager:
		return true
	}
	return false
}

// CanAssign reports whether actor may grant target. superAdmin and nla may
// grant anything; everyone else only strictly lower roles.
func CanAssign(actor, target Role) bool {
	if actor == SuperAdmin || actor == NLA {
		return true
	}
	return Level(actor) > Level(target)
}

// Assignable lists the roles actor may grant, most privileged first.
func Assignable(actor Role) []Role {
	if !CanManage(actor) {
		return nil
	}
	var out []Role
	for _, r := range All {
		if CanAssign(actor, r) {
			out = append(out, r)
		}
	}
	return out
}

// CheckAssignment verifies that an actor holding actorRoles may replace a
// user's roles with targets.
func CheckAssignment(actorRoles []Role, targets []Role) error {
	actor := Highest(actorRoles)
	if !CanManage(actor) {
		return goerr.Wrap(ErrCannotManage, "role change denied", goerr.V(ActorKey, actor))
	}
	if len(targets) == 0 {
		return ErrNoRolesProvided
	}
	for _, target := range targets {
		if !Valid(target) {
			return goerr.Wrap(ErrUnknownRole, "role change denied", goerr.V(RoleKey, target))
		}
		if !CanAssign(actor, target) {
			return goerr.Wrap(ErrCannotAssign, "role change denied", goerr.V(ActorKey, actor), goerr.V(RoleKey, target))
		}
	}
	return nil
}
