package auth

import (
	"context"

	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
)

// UserContext carries the authenticated user through a request
type UserContext struct {
	UserID   string
	Email    string
	UserName string
}

type userContextKey struct{}

// SetUserInContext attaches the user context to a request context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
