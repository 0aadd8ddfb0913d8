package valuation

import "math"

// Tuning constants for the deterministic baseline model. The size coefficient
// puts a 20 ft hull near a typical private-party market midpoint before the
// age curve; the exponent keeps the model strictly increasing in length.
const (
	sizeBaseCoeff = 650.0
	sizeExponent  = 1.22

	lowHoursBonus      = 1.04
	lowHoursThreshold  = 100.0
	highHoursThreshold = 1500.0
	highHoursScale     = 10000.0
	highHoursMaxCut    = 0.25

	storageMultiplier = 0.90

	// A trailer included in the sale adds part of its tiered value; an
	// explicitly absent trailer subtracts the full value the buyer must spend.
	trailerIncludedShare = 0.60

	ageMultiplierFloor = 0.05
	baselineFloorUSD   = 500
)

var conditionMultiplier = map[Condition]float64{
	ConditionExcellent: 1.12,
	ConditionGood:      1.00,
	ConditionFair:      0.82,
	ConditionNeedsWork: 0.55,
	ConditionUnknown:   1.00,
}

var runsMultiplier = map[RunState]float64{
	RunsYes:     1.00,
	RunsStalls:  0.78,
	RunsNo:      0.52,
	RunsUnknown: 1.00,
}

var titleMultiplier = map[TitleStatus]float64{
	TitleClean:      1.00,
	TitleLoanLien:   0.97,
	TitleOther:      0.90,
	TitleBillOfSale: 0.70,
	TitleUnknown:    1.00,
}

var hullMultiplier = map[HullMaterial]float64{
	HullWood:    0.75,
	HullSteel:   0.85,
	HullNeutral: 1.00,
}

// Baseline computes the deterministic guard value in whole dollars. It is a
// pure function of the normalized payload: the same input always yields the
// same value, and the result is never below baselineFloorUSD.
func Baseline(p Normalized) int64 {
	v := sizeBaseCoeff * math.Pow(p.LengthFt, sizeExponent)
	v *= ageMultiplier(p.AgeYears)
	v *= lookup(conditionMultiplier, p.Condition)
	v *= lookup(runsMultiplier, p.Runs)
	v *= engineHoursMultiplier(p)
	if p.OutOfWaterYearPlus {
		v *= storageMultiplier
	}
	switch p.Trailer {
	case TrailerYes:
		v += trailerIncludedShare * trailerValueUSD(p.LengthFt)
	case TrailerNo:
		v -= trailerValueUSD(p.LengthFt)
	}
	v *= lookup(titleMultiplier, p.TitleStatus)
	v *= lookup(hullMultiplier, p.HullMaterial)
	if v < baselineFloorUSD {
		v = baselineFloorUSD
	}
	return int64(math.Round(v))
}

// ageMultiplier decays gently for the first five years, steeply through year
// twenty, and flattens to a heavy discount beyond that, never below the floor.
func ageMultiplier(age int) float64 {
	var m float64
	switch {
	case age <= 0:
		m = 1.0
	case age <= 5:
		m = 1.0 - 0.03*float64(age)
	case age <= 20:
		m = 0.85 - 0.035*float64(age-5)
	default:
		m = 0.28
	}
	return math.Max(m, ageMultiplierFloor)
}

func engineHoursMultiplier(p Normalized) float64 {
	if !p.EngineHoursKnown {
		return 1.0
	}
	wellKept := p.Condition == ConditionExcellent || p.Condition == ConditionGood
	if p.EngineHours < lowHoursThreshold && wellKept {
		return lowHoursBonus
	}
	if p.EngineHours > highHoursThreshold {
		cut := (p.EngineHours - highHoursThreshold) / highHoursScale
		return 1.0 - math.Min(highHoursMaxCut, cut)
	}
	return 1.0
}

func trailerValueUSD(lengthFt float64) float64 {
	switch {
	case lengthFt < 16:
		return 900
	case lengthFt < 22:
		return 1800
	default:
		return 3200
	}
}

func lookup[K comparable](table map[K]float64, key K) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}
