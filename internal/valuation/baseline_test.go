package valuation

import "testing"

func goodRunner() Normalized {
	return Normalize(Payload{
		LengthFt:    FlexNumber{Value: 24, Set: true},
		Year:        FlexNumber{Value: 2015, Set: true},
		Condition:   "Good",
		Runs:        "Yes",
		EngineHours: FlexNumber{Value: 150, Set: true},
		Trailer:     "Yes",
		TitleStatus: "Clean",
	}, testNow)
}

func TestBaselineDeterministic(t *testing.T) {
	p := goodRunner()
	a := Baseline(p)
	b := Baseline(p)
	if a != b {
		t.Fatalf("baseline not deterministic: %d vs %d", a, b)
	}
	if a < baselineFloorUSD {
		t.Fatalf("baseline %d below floor", a)
	}
}

func TestBaselineMonotonicInLength(t *testing.T) {
	prev := int64(0)
	for _, l := range []float64{8, 12, 16, 20, 28, 40, 60} {
		p := goodRunner()
		p.LengthFt = l
		v := Baseline(p)
		if v <= prev {
			t.Fatalf("baseline not increasing in length: %v ft -> %d (prev %d)", l, v, prev)
		}
		prev = v
	}
}

func TestBaselineFloor(t *testing.T) {
	p := Normalize(Payload{
		LengthFt:           FlexNumber{Value: 8, Set: true},
		Year:               FlexNumber{Value: 1950, Set: true},
		Condition:          "Needs Work",
		Runs:               "No",
		Trailer:            "No",
		TitleStatus:        "Bill of Sale only",
		HullMaterial:       "wood",
		OutOfWaterYearPlus: FlexBool{Value: true, Set: true},
	}, testNow)
	if v := Baseline(p); v < baselineFloorUSD {
		t.Fatalf("baseline %d below $%d floor", v, baselineFloorUSD)
	}
}

func TestBaselineNegativeFactorsCompound(t *testing.T) {
	clean := Normalize(Payload{
		LengthFt: FlexNumber{Value: 20, Set: true},
		Year:     FlexNumber{Value: 1995, Set: true},
		Runs:     "Yes",
	}, testNow)
	ugly := clean
	ugly.Condition = ConditionNeedsWork
	ugly.Runs = RunsNo
	ugly.OutOfWaterYearPlus = true
	ugly.TitleStatus = TitleBillOfSale

	cv := float64(Baseline(clean))
	uv := float64(Baseline(ugly))
	want := cv * conditionMultiplier[ConditionNeedsWork] * runsMultiplier[RunsNo] * storageMultiplier * titleMultiplier[TitleBillOfSale]
	if diffAbs(uv, want) > 1.5 {
		t.Fatalf("compounded value = %v, want ~%v", uv, want)
	}
}

func TestAgeMultiplierCurve(t *testing.T) {
	if ageMultiplier(0) != 1.0 {
		t.Fatal("new vessel should be undepreciated")
	}
	prev := 1.1
	for age := 0; age <= 25; age++ {
		m := ageMultiplier(age)
		if m > prev {
			t.Fatalf("age multiplier increased at age %d: %v > %v", age, m, prev)
		}
		if m < ageMultiplierFloor {
			t.Fatalf("age multiplier %v below floor at age %d", m, age)
		}
		prev = m
	}
	if ageMultiplier(21) != ageMultiplier(40) {
		t.Fatal("deep-age discount should be flat")
	}
}

func TestTrailerAdjustmentAdditive(t *testing.T) {
	base := goodRunner()
	base.Trailer = TrailerUnknown
	withTrailer := base
	withTrailer.Trailer = TrailerYes
	without := base
	without.Trailer = TrailerNo

	v := Baseline(base)
	vYes := Baseline(withTrailer)
	vNo := Baseline(without)
	if vYes <= v {
		t.Fatalf("trailer present should add value: %d vs %d", vYes, v)
	}
	if vNo >= v {
		t.Fatalf("explicitly absent trailer should subtract value: %d vs %d", vNo, v)
	}
}

func TestEngineHoursMultiplier(t *testing.T) {
	p := goodRunner()
	p.EngineHours = 50
	if m := engineHoursMultiplier(p); m != lowHoursBonus {
		t.Fatalf("low hours on a good hull = %v, want bonus %v", m, lowHoursBonus)
	}
	p.Condition = ConditionNeedsWork
	if m := engineHoursMultiplier(p); m != 1.0 {
		t.Fatalf("low hours on a rough hull = %v, want 1.0", m)
	}
	p.EngineHours = 9000
	if m := engineHoursMultiplier(p); m != 1.0-highHoursMaxCut {
		t.Fatalf("extreme hours penalty = %v, want capped %v", m, 1.0-highHoursMaxCut)
	}
	p.EngineHoursKnown = false
	if m := engineHoursMultiplier(p); m != 1.0 {
		t.Fatalf("unknown hours = %v, want neutral", m)
	}
}

func diffAbs(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
