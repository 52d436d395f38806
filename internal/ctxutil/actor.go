// Package ctxutil carries request-scoped values through context.Context.
// It has no internal dependencies so any layer can import it.
package ctxutil

import "context"

type actorKey struct{}

// WithActor returns a context that records who is making changes.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the recorded actor, or "" if none was set.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
