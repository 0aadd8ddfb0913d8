package valuation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCaller struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestAnthropicEstimatorParsesMoneyStrings(t *testing.T) {
	caller := &fakeCaller{response: `{
		"estimate": "$18,500",
		"range": {"low": "$16,000", "high": "$20,500"},
		"confidence": "Medium",
		"rationale": "Mid-size runabout in good shape.",
		"comps": [{"title": "2014 Bayliner 175", "price": "$17,900", "year": 2014, "length": 17.5, "location": "Tampa, FL", "url": "https://example.com/1"}]
	}`}
	est := NewAnthropicEstimator(caller)
	got, err := est.Estimate(context.Background(), goodRunner(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.EstimateUSD != 18500 {
		t.Fatalf("estimate = %v", got.EstimateUSD)
	}
	if got.RangeLowUSD != 16000 || got.RangeHighUSD != 20500 {
		t.Fatalf("range = %v..%v", got.RangeLowUSD, got.RangeHighUSD)
	}
	if got.Confidence != ConfidenceMedium {
		t.Fatalf("confidence = %q", got.Confidence)
	}
	if len(got.Comps) != 1 || got.Comps[0].PriceUSD != 17900 {
		t.Fatalf("comps = %+v", got.Comps)
	}
}

func TestAnthropicEstimatorStripsFences(t *testing.T) {
	caller := &fakeCaller{response: "```json\n{\"estimate\": 9500}\n```"}
	got, err := NewAnthropicEstimator(caller).Estimate(context.Background(), goodRunner(), false)
	if err != nil {
		t.Fatal(err)
	}
	if got.EstimateUSD != 9500 {
		t.Fatalf("estimate = %v", got.EstimateUSD)
	}
}

func TestAnthropicEstimatorFailsClosed(t *testing.T) {
	cases := []struct {
		name   string
		caller *fakeCaller
	}{
		{"transport error", &fakeCaller{err: errors.New("connection refused")}},
		{"empty response", &fakeCaller{response: "   "}},
		{"not json", &fakeCaller{response: "I think roughly twelve thousand dollars."}},
		{"missing estimate", &fakeCaller{response: `{"confidence":"high"}`}},
		{"zero estimate", &fakeCaller{response: `{"estimate": 0}`}},
		{"negative estimate", &fakeCaller{response: `{"estimate": "-4000"}`}},
	}
	for _, c := range cases {
		_, err := NewAnthropicEstimator(c.caller).Estimate(context.Background(), goodRunner(), false)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("%s: err = %v, want ErrUnavailable", c.name, err)
		}
	}
}

func TestDecodeEstimateDiscardsMalformedRange(t *testing.T) {
	got, err := decodeEstimate(`{"estimate": 10000, "range": {"low": "$14,000", "high": "$12,000"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.RangeLowUSD != 0 || got.RangeHighUSD != 0 {
		t.Fatalf("inverted range should be dropped: %v..%v", got.RangeLowUSD, got.RangeHighUSD)
	}
}

func TestDecodeEstimateDropsUnpricedComps(t *testing.T) {
	got, err := decodeEstimate(`{"estimate": 10000, "comps": [{"title": "no price"}, {"title": "ok", "price": 9900}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Comps) != 1 || got.Comps[0].Title != "ok" {
		t.Fatalf("comps = %+v", got.Comps)
	}
}

func TestBuildEstimatePromptTrendFlag(t *testing.T) {
	with := buildEstimatePrompt(goodRunner(), true)
	without := buildEstimatePrompt(goodRunner(), false)
	if with == without {
		t.Fatal("trend request should change the prompt")
	}
	if !strings.Contains(with, "12 monthly trend points") {
		t.Fatal("trend prompt should ask for 12 points")
	}
}
