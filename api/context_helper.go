package api

import (
	"context"
	"time"
)

// QueryTimeout bounds a single database round trip. The per-request
// timeout middleware bounds the whole handler.
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context capped at QueryTimeout for one
// database call.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
