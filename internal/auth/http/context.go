package http

import "context"

// Identity is the authenticated caller attached to the request context by
// the Authenticator middleware.
type Identity struct {
	UserID      string
	Email       string
	Role        string
	AccessToken string
}

type identityKey struct{}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller's identity, if the request passed the
// Authenticator.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
