package valuation

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by an Estimator whenever a richer estimate could
// not be obtained: transport failure, timeout, unparseable response, or a
// non-finite estimate. Callers degrade to the baseline model and never surface
// this error.
var ErrUnavailable = errors.New("external estimate unavailable")

// ExternalEstimate is the parsed, already-coerced result of one external
// estimator attempt. Numeric fields are plain dollars; zero range bounds mean
// the estimator supplied no usable range.
type ExternalEstimate struct {
	EstimateUSD  float64
	RangeLowUSD  float64
	RangeHighUSD float64
	Confidence   Confidence
	Rationale    string
	Comps        []Comp
	Trend        []TrendPoint
}

// Estimator is the external inference capability. Implementations make at most
// one bounded attempt per call and fail closed with ErrUnavailable.
type Estimator interface {
	Estimate(ctx context.Context, p Normalized, includeTrend bool) (*ExternalEstimate, error)
}

// NullEstimator is always unavailable. It keeps the engine fully deterministic
// for tests and for deployments without an inference backend.
type NullEstimator struct{}

func (NullEstimator) Estimate(ctx context.Context, p Normalized, includeTrend bool) (*ExternalEstimate, error) {
	return nil, ErrUnavailable
}
