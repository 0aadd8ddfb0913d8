package valuation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const synthCompCount = 6

// Deterministic spreads for synthesized comparables: a linear price ramp
// around the estimate with small year and length offsets.
var (
	synthPriceRamp    = []float64{0.90, 0.93, 0.96, 0.99, 1.02, 1.05}
	synthYearOffsets  = []int{-2, -1, 0, 0, 1, 2}
	synthLengthOffset = []float64{-1.0, 0, 0.5, -0.5, 1.0, 0}
)

// fillComps keeps up to maxComps external comparables verbatim, or synthesizes
// six deterministic entries around the estimate when none were supplied.
func fillComps(estimate int64, p Normalized, ext *ExternalEstimate, maxComps int) []Comp {
	if ext != nil && len(ext.Comps) > 0 {
		comps := ext.Comps
		if len(comps) > maxComps {
			comps = comps[:maxComps]
		}
		return append([]Comp(nil), comps...)
	}

	location := p.Location
	if location == "" {
		location = "Local market"
	}
	comps := make([]Comp, 0, synthCompCount)
	for i := 0; i < synthCompCount; i++ {
		year := p.Year + synthYearOffsets[i]
		comps = append(comps, Comp{
			Title:    compTitle(p, year),
			PriceUSD: int64(math.Round(float64(estimate) * synthPriceRamp[i])),
			Year:     year,
			LengthFt: clampFloat(p.LengthFt+synthLengthOffset[i], minLengthFt, maxLengthFt),
			Location: location,
		})
	}
	return comps
}

func compTitle(p Normalized, year int) string {
	name := strings.TrimSpace(p.Make + " " + p.Model)
	if name == "" {
		name = fmt.Sprintf("%.0f ft vessel", p.LengthFt)
	}
	return fmt.Sprintf("%d %s", year, name)
}

// fillTrend returns an exactly-12-point monthly series ending at the current
// month. An external series is kept only when it already covers the full
// window; shorter series are discarded in favor of the synthetic ramp so the
// output shape stays fixed.
func fillTrend(estimate int64, ext *ExternalEstimate, now time.Time, points int) []TrendPoint {
	if ext != nil && len(ext.Trend) >= points {
		return append([]TrendPoint(nil), ext.Trend[:points]...)
	}

	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	trend := make([]TrendPoint, 0, points)
	for i := 0; i < points; i++ {
		frac := 0.90 + (1.05-0.90)*float64(i)/float64(points-1)
		month := anchor.AddDate(0, i-(points-1), 0)
		trend = append(trend, TrendPoint{
			Label:    month.Format("Jan 2006"),
			PriceUSD: int64(math.Round(float64(estimate) * frac)),
		})
	}
	return trend
}
