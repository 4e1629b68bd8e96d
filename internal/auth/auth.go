package auth

import (
	"context"
	"strings"

	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
)

const bearerScheme = "bearer "

// Identity is what an identity provider vouches for.
type Identity struct {
	UserID string
	Email  string
}

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller may run mutations.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// Verifier exchanges a bearer token for an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// RoleLookup finds the stored role of a user.
type RoleLookup interface {
	LookupRole(ctx context.Context, userID string) (role string, found bool, err error)
}

// RoleLookupFunc adapts a function to RoleLookup.
type RoleLookupFunc func(ctx context.Context, userID string) (string, bool, error)

func (f RoleLookupFunc) LookupRole(ctx context.Context, userID string) (string, bool, error) {
	return f(ctx, userID)
}

// ExtractBearer returns the token of a "Bearer <token>" header value.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", domain.Unauthenticated("Authorization header required")
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", domain.Unauthenticated("Authorization header required")
	}
	return token, nil
}

// Resolver turns an Authorization header into a Caller.
type Resolver struct {
	verifier Verifier
	roles    RoleLookup
}

func NewResolver(verifier Verifier, roles RoleLookup) *Resolver {
	return &Resolver{verifier: verifier, roles: roles}
}

// Resolve verifies the bearer token and attaches the caller's role.
// Users without a role row are employees.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (Caller, error) {
	token, err := ExtractBearer(authorization)
	if err != nil {
		return Caller{}, err
	}

	identity, err := r.verifier.Verify(ctx, token)
	if err != nil {
		logger.DebugLog(ctx, "token verification failed: %v", err)
		return Caller{}, unauthorized(err)
	}
	if identity.UserID == "" {
		return Caller{}, unauthorized(nil)
	}

	role, found, err := r.roles.LookupRole(ctx, identity.UserID)
	if err != nil {
		return Caller{}, domain.StoreError(err)
	}
	if !found {
		role = domain.RoleEmployee
	}
	return Caller{UserID: identity.UserID, Role: role}, nil
}

func unauthorized(cause error) error {
	return &domain.Error{Code: domain.CodeUnauthorized, Message: "Unauthorized", Err: cause}
}

type callerKey struct{}

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
