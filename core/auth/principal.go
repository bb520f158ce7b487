package auth

import (
	"context"
	"fmt"
	"strings"
)

// Role is the closed set of roles a principal can hold.
// The zero value is not a role.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleInstructor
	RoleStudent
)

var Roles = []Role{RoleAdmin, RoleInstructor, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleInstructor:
		return "instructor"
	case RoleStudent:
		return "student"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole parses the textual form returned by Role.String.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "instructor":
		return RoleInstructor, nil
	case "student":
		return RoleStudent, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// Principal is the identity an operation runs as. Immutable per request.
type Principal struct {
	ID   int  `json:"id"`
	Role Role `json:"role"`
}

func (p Principal) IsAuthenticated() bool {
	return p.ID > 0 && p.Role.Valid()
}

func (p Principal) IsAdmin() bool      { return p.IsAuthenticated() && p.Role == RoleAdmin }
func (p Principal) IsInstructor() bool { return p.IsAuthenticated() && p.Role == RoleInstructor }
func (p Principal) IsStudent() bool    { return p.IsAuthenticated() && p.Role == RoleStudent }

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal carried by ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.IsAuthenticated()
}
