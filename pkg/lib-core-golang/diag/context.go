package diag

import "context"

type contextKeys string

const (
	requestIDKey contextKeys = "requestID"
	ownerKey     contextKeys = "owner"
)

// ContextWithRequestID - create context with requestID
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDValue - returns requestID value taken from context
func RequestIDValue(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// ContextWithOwner - create context with owner identity.
// The owner is attached for logging purposes only and must not be
// used to authorize anything
func ContextWithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerValue - returns owner value taken from context
func OwnerValue(ctx context.Context) string {
	return stringValue(ctx, ownerKey)
}

func stringValue(ctx context.Context, key contextKeys) string {
	val, ok := ctx.Value(key).(string)
	if !ok {
		return ""
	}
	return val
}

// contextData returns log context fields present in the context
func contextData(ctx context.Context) map[string]string {
	data := map[string]string{}
	if requestID := RequestIDValue(ctx); requestID != "" {
		data["requestID"] = requestID
	}
	if owner := OwnerValue(ctx); owner != "" {
		data["owner"] = owner
	}
	return data
}
