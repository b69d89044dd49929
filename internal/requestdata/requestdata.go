package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the per-request session snapshot. It replaces any shared
// process-wide session state: every call that needs the acting principal
// reads it from the request context.
type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
	Email        string
	FullName     string
	Mentor       bool

	// ReadOnly marks a session degraded by a lapsed license: reads proceed,
	// writes are rejected.
	ReadOnly bool
}
