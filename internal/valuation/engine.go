package valuation

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Engine turns a raw payload into a Valuation in a single stateless pass:
// normalize, baseline, one best-effort external estimate, clamp, classify,
// enforce the range, synthesize comps and trend. It never fails outward.
type Engine struct {
	estimator Estimator
	policy    Policy
	now       func() time.Time
}

func NewEngine(estimator Estimator) *Engine {
	return NewEngineWithPolicy(estimator, DefaultPolicy())
}

func NewEngineWithPolicy(estimator Estimator, policy Policy) *Engine {
	return &Engine{estimator: estimator, policy: policy, now: time.Now}
}

func (e *Engine) Compute(ctx context.Context, raw Payload, opts Options) Valuation {
	ctx, span := otel.Tracer("hullify/valuation").Start(ctx, "valuation.compute")
	defer span.End()

	now := e.now()
	p := Normalize(raw, now)
	guard := Baseline(p)

	var ext *ExternalEstimate
	if e.estimator != nil {
		res, err := e.estimator.Estimate(ctx, p, opts.IncludeTrend)
		if err != nil {
			log.Printf("valuation: degrading to baseline: %v", err)
		} else {
			ext = res
		}
	}

	estimate := reconcile(guard, ext, e.policy)
	confidence := classify(p, ext)
	rng := enforceRange(estimate, ext, confidence, e.policy)
	comps := fillComps(estimate, p, ext, e.policy.MaxComps)
	var trend []TrendPoint
	if opts.IncludeTrend {
		trend = fillTrend(estimate, ext, now, e.policy.TrendPoints)
	}

	span.SetAttributes(
		attribute.Int64("estimate_usd", estimate),
		attribute.String("confidence", string(confidence)),
		attribute.Bool("external_used", ext != nil),
	)

	return Valuation{
		EstimateUSD: estimate,
		Estimate:    "$" + FormatUSD(estimate),
		Range:       rng,
		Confidence:  confidence,
		Rationale:   rationale(p, ext),
		Comps:       comps,
		Trend:       trend,
		Disclaimer:  Disclaimer,
	}
}

// reconcile bounds the external point estimate to the multiplicative band
// around the guard value; without a usable external estimate the guard value
// is the estimate.
func reconcile(guard int64, ext *ExternalEstimate, pol Policy) int64 {
	if ext == nil || !(ext.EstimateUSD > 0) || math.IsNaN(ext.EstimateUSD) || math.IsInf(ext.EstimateUSD, 0) {
		return guard
	}
	lo := float64(guard) * pol.BandLow
	hi := float64(guard) * pol.BandHigh
	v := math.Min(math.Max(ext.EstimateUSD, lo), hi)
	return int64(math.Round(v))
}

func classify(p Normalized, ext *ExternalEstimate) Confidence {
	if ext != nil {
		switch ext.Confidence {
		case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
			return ext.Confidence
		}
	}
	if redFlags(p) {
		return ConfidenceLow
	}
	return ConfidenceMedium
}

func redFlags(p Normalized) bool {
	return p.Condition == ConditionNeedsWork ||
		p.Runs != RunsYes ||
		p.OutOfWaterYearPlus ||
		p.TitleStatus == TitleBillOfSale
}

func rationale(p Normalized, ext *ExternalEstimate) string {
	if ext != nil {
		if r := strings.TrimSpace(ext.Rationale); r != "" {
			const maxRationale = 400
			if len(r) > maxRationale {
				cut := maxRationale
				for cut > 0 && !utf8.RuneStart(r[cut]) {
					cut--
				}
				r = strings.TrimSpace(r[:cut])
			}
			return r
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Priced from hull size (%.0f ft) and a %d-year depreciation curve, adjusted for condition, running state, and title.", p.LengthFt, p.AgeYears)
	if ext == nil {
		b.WriteString(" Live market data was unavailable, so the deterministic model set the estimate.")
	}
	return b.String()
}
