// Package principal carries the authenticated caller identity through request
// context, replacing ambient session globals with an explicit lifecycle:
// established by the auth middleware, gone when the request ends.
package principal

import "context"

// Role distinguishes the two kinds of authenticated users.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Principal is an authenticated user recognized via a matching profile.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

type ctxKey string

const principalKey ctxKey = "medconnect.principal"

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the principal if present.
func FromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	if val == nil {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok && p.UserID != ""
}
