package generation

import "context"

type scopeKey struct{}

// WithScope tags ctx with the budget scope (normally the session teacher id).
func WithScope(ctx context.Context, scope string) context.Context {
	if scope == "" {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope set by WithScope, or "".
func ScopeFrom(ctx context.Context) string {
	s, _ := ctx.Value(scopeKey{}).(string)
	return s
}

func scopeOrAnonymous(ctx context.Context) string {
	if s := ScopeFrom(ctx); s != "" {
		return s
	}
	return AnonymousScope
}
