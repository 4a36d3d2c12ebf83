package utils

import (
	"context"

	"github.com/google/uuid"
)

// SetUserContext stores the authenticated user into ctx (called by middleware).
func SetUserContext(ctx context.Context, id uuid.UUID, admin bool) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserAdminKey, admin)
	return ctx
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func IsAdminFromContext(ctx context.Context) bool {
	admin, _ := ctx.Value(UserAdminKey).(bool)
	return admin
}
