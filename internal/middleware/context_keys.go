package middleware

import "context"

// contextKey is a private type for context keys to prevent collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	userIDCtxKey = contextKey("userID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the request
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(userIDCtxKey)
	if val == nil {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok
}

// WithUserID returns a context carrying the authenticated user ID. Exposed
// for tests and for the scheduler, which acts without an HTTP request.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}
