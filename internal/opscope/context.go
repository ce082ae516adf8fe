// Package opscope carries the acting user and correlation id for one
// business operation through the context. Every public orchestrator call
// opens one scope; the audit trail and request logs share its id.
package opscope

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
)

type actorKey struct{}
type correlationKey struct{}

// Scope is the resolved actor/correlation pair for one operation.
type Scope struct {
	Actor         string
	CorrelationID string
}

// WithActor stores the acting user identity in the context.
func WithActor(ctx context.Context, actor string) context.Context {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user identity, or "system" when unset.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return "system"
	}
	if value, ok := ctx.Value(actorKey{}).(string); ok && value != "" {
		return value
	}
	return "system"
}

// WithCorrelationID sets the correlation id onto the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext fetches the correlation id if present.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(correlationKey{}).(string); ok {
		return value
	}
	return ""
}

// Begin guarantees an actor and correlation id on the context, generating a
// correlation id when missing, and returns the resolved scope.
func Begin(ctx context.Context, actor string) (context.Context, Scope) {
	ctx = WithActor(ctx, actor)

	cid := CorrelationIDFromContext(ctx)
	if cid == "" {
		cid = ulid.Make().String()
		ctx = WithCorrelationID(ctx, cid)
	}

	return ctx, Scope{
		Actor:         ActorFromContext(ctx),
		CorrelationID: cid,
	}
}
