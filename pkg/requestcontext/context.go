// Package requestcontext carries request-scoped values that the discernment
// and interview services read without depending on net/http.
//
// The HTTP middleware stamps an ID and a clock reading on each request. The
// CLI stamps neither, so Now falls back to the wall clock and RequestID is
// empty.
package requestcontext

import (
	"context"
	"time"
)

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyRequestTime
)

// RequestID returns the ID stamped by the request-id middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the instant stamped on a DiscernmentObject. Outside a request it
// is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(keyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyRequestTime, t)
}
