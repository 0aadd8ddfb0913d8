package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/autin2/hullifyrepo/internal/valuation"
)

func sampleRecord(token string, at time.Time) Record {
	return Record{
		Token:     token,
		CreatedAt: at,
		Payload: valuation.Payload{
			Make:     "Bayliner",
			Year:     valuation.FlexNumber{Value: 2015, Set: true},
			LengthFt: valuation.FlexNumber{Value: 17.5, Set: true},
		},
		Valuation: valuation.Valuation{
			EstimateUSD: 18500,
			Estimate:    "$18,500",
			Range:       valuation.Range{LowUSD: 16280, HighUSD: 20720},
			Confidence:  valuation.ConfidenceMedium,
			Comps:       []valuation.Comp{{Title: "comp", PriceUSD: 17900}},
		},
	}
}

func TestNewTokenShape(t *testing.T) {
	a := NewToken()
	b := NewToken()
	if len(a) != 32 || a == b {
		t.Fatalf("unexpected tokens %q %q", a, b)
	}
}

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()
	base := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	for i, token := range []string{"aaa", "bbb", "ccc"} {
		if err := s.Save(sampleRecord(token, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	rec, ok, err := s.Get("bbb")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if rec.Valuation.EstimateUSD != 18500 || !rec.Payload.Year.Set || rec.Payload.Year.Value != 2015 {
		t.Fatalf("record did not round-trip: %+v", rec)
	}

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("missing token: ok=%v err=%v", ok, err)
	}

	recent, err := s.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Token != "ccc" {
		t.Fatalf("recent = %+v", recent)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	testStoreRoundTrip(t, NewMemoryStore())
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hullify.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStoreSaveOverwrites(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hullify.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	at := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	if err := s.Save(sampleRecord("tok", at)); err != nil {
		t.Fatal(err)
	}
	rec := sampleRecord("tok", at)
	rec.Valuation.EstimateUSD = 9000
	if err := s.Save(rec); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get("tok")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got.Valuation.EstimateUSD != 9000 {
		t.Fatalf("estimate = %d, want overwritten 9000", got.Valuation.EstimateUSD)
	}
}
