package valuation

import "math"

// enforceRange produces the final [low, high] interval. An externally supplied
// range survives only when it envelopes the estimate and each side's width
// sits between the acceptable minimum and the confidence target; a range that
// is too tight on either side would break the minimum-spread guarantee, so
// everything else gets the symmetric synthesized range.
func enforceRange(estimate int64, ext *ExternalEstimate, confidence Confidence, pol Policy) Range {
	e := float64(estimate)
	target := pol.HalfWidthFrac[confidence]

	if ext != nil && e > 0 && ext.RangeLowUSD > 0 && ext.RangeHighUSD > ext.RangeLowUSD &&
		ext.RangeLowUSD <= e && e <= ext.RangeHighUSD {
		lowHalf := e - ext.RangeLowUSD
		highHalf := ext.RangeHighUSD - e
		minHalf := math.Max(pol.HalfWidthFloorUSD, e*pol.MinHalfWidthFrac)
		maxHalf := e * target
		if lowHalf >= minHalf && highHalf >= minHalf && lowHalf <= maxHalf && highHalf <= maxHalf {
			return Range{
				LowUSD:  int64(math.Round(ext.RangeLowUSD)),
				HighUSD: int64(math.Round(ext.RangeHighUSD)),
			}
		}
	}

	half := math.Max(e*target, pol.HalfWidthFloorUSD)
	low := math.Max(float64(pol.FloorUSD), e-half)
	return Range{
		LowUSD:  int64(math.Round(low)),
		HighUSD: int64(math.Round(e + half)),
	}
}
