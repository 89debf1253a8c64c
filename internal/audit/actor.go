package audit

import "context"

type actorKey struct{}

// SystemActor is recorded when no caller identity reached the commit path.
const SystemActor = "system"

// WithActor attaches the caller identity carried from the request boundary
// down into the commit hook.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the attached caller identity, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
