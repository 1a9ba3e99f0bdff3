// Package potctx carries per-invocation driver settings through a context.
package potctx

import "context"

type ctxKey int

const verboseKey ctxKey = iota

// SetVerbose marks ctx so that transports dump raw packets.
func SetVerbose(parent context.Context, verbose bool) context.Context {
	return context.WithValue(parent, verboseKey, verbose)
}

func IsVerbose(ctx context.Context) bool {
	verbose, ok := ctx.Value(verboseKey).(bool)
	return ok && verbose
}
