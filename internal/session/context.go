package session

import "context"

type contextKey struct{}

// WithState attaches the request's session state to ctx.
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the session state attached by the session middleware.
func FromContext(ctx context.Context) (State, bool) {
	st, ok := ctx.Value(contextKey{}).(State)
	return st, ok
}

// Authorized reports whether the request's session holds transactions.
func Authorized(ctx context.Context) bool {
	st, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return st.HasTransactions()
}

// ID returns the persisted session id for ctx, or 0.
func ID(ctx context.Context) int64 {
	st, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	if s, ok := st.(interface{ ID() int64 }); ok {
		return s.ID()
	}
	return 0
}
