package masklog

import "context"

// ContextKey is a type for context value keys
type ContextKey string

// Common context keys
const (
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyTransactionID ContextKey = "transaction_id"
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeyModule        ContextKey = "module"
	contextKeyLogger        ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, l)
}

// FromContext returns the Logger stored by NewContext, or nil.
func FromContext(ctx context.Context) *Logger {
	l, _ := ctx.Value(contextKeyLogger).(*Logger)
	return l
}

// WithTrace stores correlation ids received from an upstream caller.
func WithTrace(ctx context.Context, sessionID, transactionID string) context.Context {
	if sessionID != "" {
		ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
	}
	if transactionID != "" {
		ctx = context.WithValue(ctx, ContextKeyTransactionID, transactionID)
	}
	return ctx
}

// WithUserID stores the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// WithRequestModule stores the module handling the request.
func WithRequestModule(ctx context.Context, module string) context.Context {
	return context.WithValue(ctx, ContextKeyModule, module)
}

// InitOptionsFromContext collects the values set by WithTrace, WithUserID
// and WithRequestModule.
func InitOptionsFromContext(ctx context.Context) InitOptions {
	value := func(key ContextKey) string {
		s, _ := ctx.Value(key).(string)
		return s
	}
	return InitOptions{
		SessionID:     value(ContextKeySessionID),
		TransactionID: value(ContextKeyTransactionID),
		UserID:        value(ContextKeyUserID),
		Module:        value(ContextKeyModule),
	}
}

// InitContext starts a unit of work seeded from ctx.
func (l *Logger) InitContext(ctx context.Context) *Logger {
	return l.Init(InitOptionsFromContext(ctx))
}
