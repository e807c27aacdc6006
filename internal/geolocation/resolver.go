package geolocation

import (
	"context"
	"errors"
)

// ErrResolutionFailed covers every resolver failure mode: network errors,
// bad upstream responses, timeouts. Callers degrade to a null location and
// must never fail the surrounding operation because of it.
var ErrResolutionFailed = errors.New("location resolution failed")

type Resolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) (string, error)
}

// NopResolver always fails, forcing the null-location path. Used when no
// reverse-geocode endpoint is configured.
type NopResolver struct{}

func (NopResolver) Resolve(ctx context.Context, latitude, longitude float64) (string, error) {
	return "", ErrResolutionFailed
}
