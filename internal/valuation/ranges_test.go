package valuation

import "testing"

func TestEnforceRangeKeepsCompliantExternalRange(t *testing.T) {
	pol := DefaultPolicy()
	ext := &ExternalEstimate{RangeLowUSD: 18000, RangeHighUSD: 22000}
	r := enforceRange(20000, ext, ConfidenceMedium, pol)
	// half-width fraction 0.10, between floor (800/20000=0.04) and target 0.12
	if r.LowUSD != 18000 || r.HighUSD != 22000 {
		t.Fatalf("compliant external range should be kept, got %+v", r)
	}
}

func TestEnforceRangeRejectsNonEnveloping(t *testing.T) {
	pol := DefaultPolicy()
	ext := &ExternalEstimate{RangeLowUSD: 21000, RangeHighUSD: 25000}
	r := enforceRange(20000, ext, ConfidenceMedium, pol)
	want := int64(20000 * 0.12)
	if r.LowUSD != 20000-want || r.HighUSD != 20000+want {
		t.Fatalf("non-enveloping range should be resynthesized, got %+v", r)
	}
}

func TestEnforceRangeRejectsTooWide(t *testing.T) {
	pol := DefaultPolicy()
	ext := &ExternalEstimate{RangeLowUSD: 10000, RangeHighUSD: 30000}
	r := enforceRange(20000, ext, ConfidenceMedium, pol)
	if r.LowUSD == 10000 {
		t.Fatalf("over-wide range should be resynthesized, got %+v", r)
	}
}

func TestEnforceRangeRejectsNarrowSide(t *testing.T) {
	pol := DefaultPolicy()
	// Envelopes the estimate and the mean half-width looks fine, but the low
	// side leaves only a $500 spread, under the $800 floor.
	ext := &ExternalEstimate{RangeLowUSD: 99500, RangeHighUSD: 111000}
	r := enforceRange(100000, ext, ConfidenceMedium, pol)
	if r.LowUSD == 99500 {
		t.Fatalf("narrow-sided range should be resynthesized, got %+v", r)
	}
	if 100000-r.LowUSD < 800 || r.HighUSD-100000 < 800 {
		t.Fatalf("minimum spread violated on a side: %+v", r)
	}
}

func TestEnforceRangeRejectsWideSide(t *testing.T) {
	pol := DefaultPolicy()
	// High side is within the medium target, low side stretches past it.
	ext := &ExternalEstimate{RangeLowUSD: 16000, RangeHighUSD: 22000}
	r := enforceRange(20000, ext, ConfidenceMedium, pol)
	if r.LowUSD == 16000 {
		t.Fatalf("wide-sided range should be resynthesized, got %+v", r)
	}
}

func TestEnforceRangeRejectsTooNarrow(t *testing.T) {
	pol := DefaultPolicy()
	ext := &ExternalEstimate{RangeLowUSD: 19900, RangeHighUSD: 20100}
	r := enforceRange(20000, ext, ConfidenceMedium, pol)
	if r.HighUSD-r.LowUSD <= 200 {
		t.Fatalf("sliver range should be resynthesized, got %+v", r)
	}
}

func TestEnforceRangeAbsoluteFloor(t *testing.T) {
	pol := DefaultPolicy()
	r := enforceRange(3000, nil, ConfidenceHigh, pol)
	// 8% of 3000 is 240, so the $800 floor governs.
	if r.HighUSD-3000 != 800 {
		t.Fatalf("half-width = %d, want floor 800", r.HighUSD-3000)
	}
	if r.LowUSD != 2200 {
		t.Fatalf("low = %d, want 2200", r.LowUSD)
	}
}

func TestEnforceRangeLowNeverBelowFloorDollars(t *testing.T) {
	pol := DefaultPolicy()
	r := enforceRange(900, nil, ConfidenceLow, pol)
	if r.LowUSD < pol.FloorUSD {
		t.Fatalf("low = %d, want >= %d", r.LowUSD, pol.FloorUSD)
	}
	if r.HighUSD < 900 {
		t.Fatalf("high = %d below estimate", r.HighUSD)
	}
}
