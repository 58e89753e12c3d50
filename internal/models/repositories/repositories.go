package repositories

import "context"

// Actor identifies who performs a write. It is threaded through the request
// context and recorded in the iuser/uuser audit columns.
type Actor string

// SystemActor is used for writes triggered by internal recomputation
// cascades rather than an inbound request.
const SystemActor Actor = "system"

type actorKey struct{}

// WithActor returns a context carrying the acting user.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom extracts the acting user from the context,
// falling back to SystemActor.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok && a != "" {
		return a
	}
	return SystemActor
}
