package auth

import "context"

type ownerKeyCtx struct{}

// WithOwnerKey returns a copy of ctx carrying the authenticated owner key.
func WithOwnerKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ownerKeyCtx{}, key)
}

// OwnerKey returns the owner key stored in ctx by WithOwnerKey.
func OwnerKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ownerKeyCtx{}).(string)
	return key, ok && key != ""
}
