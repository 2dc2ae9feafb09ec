package tenant

import "fmt"

// Role is the privilege level of a membership. The numeric order is the
// privilege order: owner beats admin beats member. Comparisons must use
// the integral values, never the string names.
type Role uint8

const (
	RoleMember Role = iota + 1
	RoleAdmin
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole converts the persisted text form back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "member":
		return RoleMember, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// MarshalText persists the role as its stable string name.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleMember, RoleAdmin, RoleOwner:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
}

// UnmarshalText parses the stable string name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
