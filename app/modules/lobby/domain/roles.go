// Package lobbydomain implements the candidate queue and team balancing
// engine behind custom game lobbies.
package lobbydomain

import (
	"strings"
)

// Role is one of the five fixed positions a candidate can queue for.
type Role int

const (
	RoleTop Role = iota
	RoleJungle
	RoleMid
	RoleBottom
	RoleSupport
)

// NumRoles is the size of the fixed role set.
const NumRoles = 5

// AllRoles lists every role in display order.
var AllRoles = [NumRoles]Role{RoleTop, RoleJungle, RoleMid, RoleBottom, RoleSupport}

var roleNames = [NumRoles]string{"TOP", "JUNGLE", "MID", "BOTTOM", "SUPPORT"}

func (r Role) String() string {
	if r < 0 || int(r) >= NumRoles {
		return "UNKNOWN"
	}
	return roleNames[r]
}

var roleAliases = map[string]Role{
	"TOP":     RoleTop,
	"JUNGLE":  RoleJungle,
	"JG":      RoleJungle,
	"JGL":     RoleJungle,
	"MID":     RoleMid,
	"MIDDLE":  RoleMid,
	"BOTTOM":  RoleBottom,
	"BOT":     RoleBottom,
	"ADC":     RoleBottom,
	"SUPPORT": RoleSupport,
	"SUPP":    RoleSupport,
	"SUP":     RoleSupport,
}

// ParseRole resolves a role name or common alias, case-insensitively.
func ParseRole(s string) (Role, bool) {
	r, ok := roleAliases[strings.ToUpper(strings.TrimSpace(s))]
	return r, ok
}

// RoleSet is a set of roles stored as a bitmask.
type RoleSet uint8

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.With(r)
	}
	return s
}

// With returns the set with r added.
func (s RoleSet) With(r Role) RoleSet {
	if r < 0 || int(r) >= NumRoles {
		return s
	}
	return s | 1<<uint(r)
}

// Without returns the set with r removed.
func (s RoleSet) Without(r Role) RoleSet {
	if r < 0 || int(r) >= NumRoles {
		return s
	}
	return s &^ (1 << uint(r))
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	if r < 0 || int(r) >= NumRoles {
		return false
	}
	return s&(1<<uint(r)) != 0
}

// IsEmpty reports whether the set holds no roles.
func (s RoleSet) IsEmpty() bool {
	return s == 0
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	n := 0
	for _, r := range AllRoles {
		if s.Has(r) {
			n++
		}
	}
	return n
}

// Roles returns the set's members in display order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, NumRoles)
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings returns the set's member names in display order.
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
