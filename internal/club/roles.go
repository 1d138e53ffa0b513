package club

// Role of a person inside the club, as seen either by the game or by the guild
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleSenior
	RoleVicePresident
	RolePresident
	RoleFriends
)

// Name of a guild role
type RoleName string

// Order in which guild roles are looked up to find the one a member holds
var DefaultPrecedence = []RoleName{"Member", "Senior", "Vice-President", "President", "Friends"}

var roleByName = map[RoleName]Role{
	"Member":         RoleMember,
	"Senior":         RoleSenior,
	"Vice-President": RoleVicePresident,
	"President":      RolePresident,
	"Friends":        RoleFriends,
}

var roleByClubName = map[string]Role{
	"member":        RoleMember,
	"senior":        RoleSenior,
	"vicePresident": RoleVicePresident,
	"president":     RolePresident,
}

func (role Role) String() string {
	switch role {
	case RoleMember:
		return "Member"
	case RoleSenior:
		return "Senior"
	case RoleVicePresident:
		return "Vice-President"
	case RolePresident:
		return "President"
	case RoleFriends:
		return "Friends"
	default:
		return "None"
	}
}

// Roles that are held by actual club members. Friends are not part of the club
func (role Role) IsClubRole() bool {
	return role >= RoleMember && role <= RolePresident
}

// Map a role as reported by the game API. Unknown names map to RoleNone
func RoleFromClub(name string) Role {
	return roleByClubName[name]
}

// Map the name of a guild role. Unknown names map to RoleNone
func RoleFromName(name RoleName) Role {
	return roleByName[name]
}

// Find the one club role a guild member holds: the first entry of the
// precedence list present among the member's role names
func ResolveRole(roleNames []string, precedence []RoleName) Role {
	held := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		held[name] = struct{}{}
	}
	for _, name := range precedence {
		if _, ok := held[string(name)]; ok {
			return RoleFromName(name)
		}
	}
	return RoleNone
}
