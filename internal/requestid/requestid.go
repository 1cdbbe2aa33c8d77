// Package requestid generates and carries per-request correlation IDs.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

const maxLength = 128

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

// Valid reports whether a client-supplied ID is safe to reuse in logs and
// response headers: non-empty, bounded and printable ASCII.
func Valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" if ctx carries no request ID.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
