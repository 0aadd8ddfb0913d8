package valuation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const Disclaimer = "This is an automated pricing estimate for a private-party sale, not a marine survey or an appraisal. " +
	"Actual sale prices depend on local demand, season, and inspection findings."

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionNeedsWork Condition = "Needs Work"
	ConditionUnknown   Condition = "Unknown"
)

type RunState string

const (
	RunsYes     RunState = "Yes"
	RunsStalls  RunState = "Starts but stalls"
	RunsNo      RunState = "No"
	RunsUnknown RunState = "Unknown"
)

type TrailerState string

const (
	TrailerYes     TrailerState = "Yes"
	TrailerNo      TrailerState = "No"
	TrailerUnknown TrailerState = "Unknown"
)

type TitleStatus string

const (
	TitleClean      TitleStatus = "Clean"
	TitleBillOfSale TitleStatus = "Bill of Sale only"
	TitleLoanLien   TitleStatus = "Loan/Lien"
	TitleOther      TitleStatus = "Other"
	TitleUnknown    TitleStatus = "Unknown"
)

type HullMaterial string

const (
	HullWood    HullMaterial = "Wood"
	HullSteel   HullMaterial = "Steel"
	HullNeutral HullMaterial = "Neutral"
)

// FlexNumber absorbs whatever a client sends for a numeric field: a JSON
// number, a quoted number, or a money string ("$12,500"). Anything that does
// not coerce leaves the field unset; UnmarshalJSON never fails.
type FlexNumber struct {
	Value float64
	Set   bool
}

// isJSONNull reports whether b is the literal null token. Unmarshaling null
// into a plain float64 or bool is a silent no-op, which would otherwise read
// as a set zero value.
func isJSONNull(b []byte) bool {
	return string(bytes.TrimSpace(b)) == "null"
}

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	*f = FlexNumber{}
	if isJSONNull(b) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			f.Value = n
			f.Set = true
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, ok := ParseMoney(s); ok {
			f.Value = v
			f.Set = true
		}
		return nil
	}
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// FlexBool accepts JSON booleans plus the usual textual and numeric spellings.
type FlexBool struct {
	Value bool
	Set   bool
}

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	*f = FlexBool{}
	if isJSONNull(b) {
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		f.Value = v
		f.Set = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "1":
			f.Value, f.Set = true, true
		case "false", "no", "n", "0":
			f.Value, f.Set = false, true
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.Value = n != 0
		f.Set = true
	}
	return nil
}

func (f FlexBool) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(f.Value)), nil
}

// FlexString reads any JSON scalar as text; non-scalar values leave it empty.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	*f = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = FlexString(strconv.FormatBool(v))
	}
	return nil
}

// Payload is the raw vessel description as submitted. Every field is optional;
// Normalize turns it into a fully-defaulted internal form and nothing past the
// normalizer ever reads a Payload.
type Payload struct {
	Make               FlexString `json:"make,omitempty"`
	Model              FlexString `json:"model,omitempty"`
	Year               FlexNumber `json:"year,omitempty"`
	LengthFt           FlexNumber `json:"length_ft,omitempty"`
	Condition          FlexString `json:"condition,omitempty"`
	Runs               FlexString `json:"runs,omitempty"`
	EngineHours        FlexNumber `json:"engine_hours,omitempty"`
	Trailer            FlexString `json:"trailer,omitempty"`
	TitleStatus        FlexString `json:"title_status,omitempty"`
	HullMaterial       FlexString `json:"hull_material,omitempty"`
	OutOfWaterYearPlus FlexBool   `json:"out_of_water_year_plus,omitempty"`
	Location           FlexString `json:"location,omitempty"`
	Upgrades           FlexString `json:"upgrades,omitempty"`
}

// Normalized is the clamped, defaulted internal form of a Payload. AgeYears is
// computed once here so the baseline model is a pure function of this struct.
type Normalized struct {
	Make               string
	Model              string
	Year               int
	AgeYears           int
	LengthFt           float64
	Condition          Condition
	Runs               RunState
	EngineHours        float64
	EngineHoursKnown   bool
	Trailer            TrailerState
	TitleStatus        TitleStatus
	HullMaterial       HullMaterial
	OutOfWaterYearPlus bool
	Location           string
	Upgrades           string
}

type Comp struct {
	Title    string  `json:"title"`
	PriceUSD int64   `json:"price_usd"`
	Year     int     `json:"year,omitempty"`
	LengthFt float64 `json:"length_ft,omitempty"`
	Location string  `json:"location,omitempty"`
	URL      string  `json:"url,omitempty"`
}

type TrendPoint struct {
	Label    string `json:"label"`
	PriceUSD int64  `json:"price_usd"`
}

type Range struct {
	LowUSD  int64 `json:"low_usd"`
	HighUSD int64 `json:"high_usd"`
}

type Valuation struct {
	EstimateUSD int64        `json:"estimate_usd"`
	Estimate    string       `json:"estimate"`
	Range       Range        `json:"range"`
	Confidence  Confidence   `json:"confidence"`
	Rationale   string       `json:"rationale"`
	Comps       []Comp       `json:"comps"`
	Trend       []TrendPoint `json:"trend,omitempty"`
	Disclaimer  string       `json:"disclaimer"`
}

type Options struct {
	IncludeTrend bool
}

// Policy gathers the engine's tunable parameters. DefaultPolicy matches the
// production tuning; tests may tighten or loosen individual knobs.
type Policy struct {
	// Band multipliers around the baseline guard value that any external
	// estimate is clamped into.
	BandLow  float64
	BandHigh float64
	// Target half-width of the final range as a fraction of the estimate,
	// keyed by confidence.
	HalfWidthFrac map[Confidence]float64
	// Absolute floor on the half-width in dollars.
	HalfWidthFloorUSD float64
	// Minimum acceptable half-width fraction for an externally supplied range.
	MinHalfWidthFrac float64
	// Hard floor on any published dollar figure.
	FloorUSD int64
	// Shape limits on the supporting arrays.
	MaxComps    int
	TrendPoints int
}

func DefaultPolicy() Policy {
	return Policy{
		BandLow:  0.50,
		BandHigh: 1.60,
		HalfWidthFrac: map[Confidence]float64{
			ConfidenceHigh:   0.08,
			ConfidenceMedium: 0.12,
			ConfidenceLow:    0.18,
		},
		HalfWidthFloorUSD: 800,
		MinHalfWidthFrac:  0.04,
		FloorUSD:          500,
		MaxComps:          8,
		TrendPoints:       12,
	}
}
