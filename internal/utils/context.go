package utils

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserAdminKey contextKey = "admin"
)
