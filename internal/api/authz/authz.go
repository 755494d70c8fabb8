package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// AuthUser is the venue operator behind an admin request.
type AuthUser struct {
	ID    string
	Email string
	Role  string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsStaff reports whether user may operate bookings. Admins are staff.
func IsStaff(user *AuthUser) bool {
	if user == nil {
		return false
	}
	return strings.EqualFold(user.Role, RoleStaff) || strings.EqualFold(user.Role, RoleAdmin)
}

// Actor names the user for audit fields, preferring the email.
func (u *AuthUser) Actor() string {
	if u == nil {
		return ""
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// RequireRole checks that the user in ctx holds one of roles.
func RequireRole(ctx context.Context, roles ...string) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	for _, role := range roles {
		if strings.EqualFold(user.Role, role) {
			return nil
		}
	}
	return ErrForbidden
}
