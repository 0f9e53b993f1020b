package sessions

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/skillhub/internal/server/models"
)

// Caller is the authenticated principal behind a request, as asserted by
// its access token. Transports build it once and hand it to service calls.
type Caller struct {
	Ref      models.PrincipalRef
	Username string
	Roles    []string
}

func (c Caller) IsZero() bool { return c.Ref.IsZero() }

func (c Caller) HasRole(role models.Role) bool {
	return slices.Contains(c.Roles, string(role))
}

type callerKey struct{}

// WithCaller attaches c to ctx. Only transport middleware should call it.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller attached by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok && !c.IsZero()
}
