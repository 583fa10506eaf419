// Package ledgerctx carries request/operation-scoped values (the
// structured logger, the actor performing a posting) on a standard
// context.Context.
package ledgerctx

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is unexported so values set by this package can never
// collide with keys set elsewhere.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	actorCtxKey  = contextKey("actor")
	opIDCtxKey   = contextKey("op_id")
)

// WithLogger returns a context carrying logger and a freshly generated
// operation ID for correlating the lines a single call emits. The ID
// is attached to the context, not the logger itself; callers that want
// it on every log line retrieve it with OperationID and add it
// themselves (see services.ledgerService.loggerFor).
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	opID := uuid.NewString()
	ctx = context.WithValue(ctx, opIDCtxKey, opID)
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// FromContext retrieves the operation-scoped logger, falling back to
// slog.Default if the context was never enriched.
func FromContext(ctx context.Context) *slog.Logger {
	loggerVal := ctx.Value(loggerCtxKey)
	if loggerVal == nil {
		return slog.Default()
	}

	logger, ok := loggerVal.(*slog.Logger)
	if !ok {
		slog.Error("value found for logger key in context is not of type *slog.Logger")
		return slog.Default()
	}

	return logger
}

// WithActor returns a context recording the identity (created_by /
// service account name) performing the current operation.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext retrieves the actor set by WithActor, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(actorCtxKey).(string)
	return v, ok
}

// OperationID retrieves the operation ID generated by WithLogger.
func OperationID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(opIDCtxKey).(string)
	return v, ok
}
