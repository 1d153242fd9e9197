package actorcontext

import "context"

// Actor types recorded on emitted events.
const (
	ActorTypeUser   = "user"
	ActorTypeSystem = "system"
)

type actorKey struct{}

type actor struct {
	actorType string
	userID    int64
}

// WithUser marks the context as acting on behalf of the given host user.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{actorType: ActorTypeUser, userID: userID})
}

// WithSystem marks the context as acting as a background process.
func WithSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{actorType: ActorTypeSystem})
}

// ActorFromContext returns the actor type and user id, if any.
func ActorFromContext(ctx context.Context) (string, int64, bool) {
	if ctx == nil {
		return "", 0, false
	}
	if a, ok := ctx.Value(actorKey{}).(actor); ok {
		return a.actorType, a.userID, true
	}
	return "", 0, false
}

// UserIDFromContext returns the acting user id when the actor is a user.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	actorType, userID, ok := ActorFromContext(ctx)
	if !ok || actorType != ActorTypeUser {
		return 0, false
	}
	return userID, true
}
