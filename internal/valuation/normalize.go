package valuation

import (
	"math"
	"strings"
	"time"
)

const (
	minYear       = 1950
	defaultYear   = 2005
	minLengthFt   = 8.0
	maxLengthFt   = 60.0
	defaultLength = 20.0
)

// Normalize coerces and clamps a raw payload into the engine's internal form.
// It never fails: unparseable or out-of-domain fields fall back to their
// neutral defaults.
func Normalize(raw Payload, now time.Time) Normalized {
	maxYear := now.Year() + 1

	year := defaultYear
	if raw.Year.Set {
		year = clampInt(int(math.Round(raw.Year.Value)), minYear, maxYear)
	}
	age := now.Year() - year
	if age < 0 {
		age = 0
	}

	length := defaultLength
	if raw.LengthFt.Set {
		length = clampFloat(raw.LengthFt.Value, minLengthFt, maxLengthFt)
	}

	hours := 0.0
	hoursKnown := false
	if raw.EngineHours.Set && raw.EngineHours.Value >= 0 {
		hours = raw.EngineHours.Value
		hoursKnown = true
	}

	return Normalized{
		Make:               strings.TrimSpace(string(raw.Make)),
		Model:              strings.TrimSpace(string(raw.Model)),
		Year:               year,
		AgeYears:           age,
		LengthFt:           length,
		Condition:          matchCondition(string(raw.Condition)),
		Runs:               matchRuns(string(raw.Runs)),
		EngineHours:        hours,
		EngineHoursKnown:   hoursKnown,
		Trailer:            matchTrailer(string(raw.Trailer)),
		TitleStatus:        matchTitleStatus(string(raw.TitleStatus)),
		HullMaterial:       matchHullMaterial(string(raw.HullMaterial)),
		OutOfWaterYearPlus: raw.OutOfWaterYearPlus.Set && raw.OutOfWaterYearPlus.Value,
		Location:           strings.TrimSpace(string(raw.Location)),
		Upgrades:           strings.TrimSpace(string(raw.Upgrades)),
	}
}

func matchCondition(s string) Condition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "excellent":
		return ConditionExcellent
	case "good":
		return ConditionGood
	case "fair":
		return ConditionFair
	case "needs work", "needswork", "needs-work":
		return ConditionNeedsWork
	default:
		return ConditionUnknown
	}
}

func matchRuns(s string) RunState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return RunsYes
	case "starts but stalls", "stalls":
		return RunsStalls
	case "no":
		return RunsNo
	default:
		return RunsUnknown
	}
}

func matchTrailer(s string) TrailerState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return TrailerYes
	case "no", "n", "false", "0":
		return TrailerNo
	default:
		return TrailerUnknown
	}
}

func matchTitleStatus(s string) TitleStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clean":
		return TitleClean
	case "bill of sale only", "bill of sale":
		return TitleBillOfSale
	case "loan/lien", "loan", "lien":
		return TitleLoanLien
	case "other":
		return TitleOther
	default:
		return TitleUnknown
	}
}

func matchHullMaterial(s string) HullMaterial {
	m := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(m, "wood"):
		return HullWood
	case strings.Contains(m, "steel"):
		return HullSteel
	default:
		return HullNeutral
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
