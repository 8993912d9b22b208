package domain

import "time"

// Role identifies a member's rank inside a gang.
type Role string

const (
	RoleUnspecified Role = ""
	RoleLeader      Role = "leader"
	RoleUnderboss   Role = "underboss"
	RoleCapo        Role = "capo"
	RoleSoldier     Role = "soldier"
)

// NormalizeRole parses a role label into a canonical value.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleLeader:
		return RoleLeader, true
	case RoleUnderboss:
		return RoleUnderboss, true
	case RoleCapo:
		return RoleCapo, true
	case RoleSoldier:
		return RoleSoldier, true
	}
	return RoleUnspecified, false
}

// Capability names a role-gated gang operation.
type Capability string

const (
	CapabilityWithdraw Capability = "withdraw"
	CapabilityAttack   Capability = "attack"
	CapabilitySetRoles Capability = "set-roles"
	CapabilityKick     Capability = "kick"
	CapabilityDisband  Capability = "disband"
)

// roleCapabilities is the closed capability table. Role checks go through
// Can rather than comparing role strings at call sites.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleLeader: {
		CapabilityWithdraw: true,
		CapabilityAttack:   true,
		CapabilitySetRoles: true,
		CapabilityKick:     true,
		CapabilityDisband:  true,
	},
	RoleUnderboss: {
		CapabilityWithdraw: true,
		CapabilityAttack:   true,
		CapabilitySetRoles: true,
		CapabilityKick:     true,
	},
	RoleCapo:    {},
	RoleSoldier: {},
}

// Can reports whether the role grants the capability.
func (r Role) Can(capability Capability) bool {
	return roleCapabilities[r][capability]
}

// Member is a user's membership in a gang. A user holds at most one
// membership across all gangs.
type Member struct {
	GangID       int64
	UserID       int64
	Role         Role
	Contribution int64
	JoinedAt     time.Time
}
