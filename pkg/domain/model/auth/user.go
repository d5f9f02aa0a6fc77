package auth

import (
	"context"

	"github.com/secmon-lab/toolforge/pkg/domain/model"
)

// User is the authenticated caller of a protected route
type User struct {
	ID      model.UserID
	Email   string
	IsAdmin bool
}

type ctxUserKey struct{}

// ContextWithUser stores user in ctx
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, user)
}

// UserFromContext returns the authenticated user, or nil if none
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(ctxUserKey{}).(*User)
	return user
}
