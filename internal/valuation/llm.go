package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const estimatorSystemPrompt = "You are a marine surveyor pricing used recreational vessels for private-party sale " +
	"in the United States. Respond with strict JSON only."

// One bounded attempt per request is the whole resilience strategy; anything
// slower than this degrades to the baseline model.
const defaultEstimateTimeout = 4 * time.Second

type LLMCaller interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   2048,
		System:      []anthropic.TextBlockParam{{Text: estimatorSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// AnthropicEstimator asks the model for a structured valuation and decodes it
// strictly: one attempt, no retries, and any failure along the way collapses
// to ErrUnavailable.
type AnthropicEstimator struct {
	caller  LLMCaller
	timeout time.Duration
}

func NewAnthropicEstimator(caller LLMCaller) *AnthropicEstimator {
	return &AnthropicEstimator{caller: caller, timeout: defaultEstimateTimeout}
}

func (e *AnthropicEstimator) Estimate(ctx context.Context, p Normalized, includeTrend bool) (*ExternalEstimate, error) {
	ctx, span := otel.Tracer("hullify/valuation").Start(ctx, "estimator.anthropic")
	defer span.End()
	span.SetAttributes(attribute.Bool("include_trend", includeTrend))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.caller.GenerateJSON(ctx, buildEstimatePrompt(p, includeTrend))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	est, err := decodeEstimate(raw)
	if err != nil {
		return nil, err
	}
	return est, nil
}

func buildEstimatePrompt(p Normalized, includeTrend bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimate the current private-party sale value of this vessel.\n\n")
	fmt.Fprintf(&b, "Make: %s\n", orUnknown(p.Make))
	fmt.Fprintf(&b, "Model: %s\n", orUnknown(p.Model))
	fmt.Fprintf(&b, "Year: %d\n", p.Year)
	fmt.Fprintf(&b, "Length: %.1f ft\n", p.LengthFt)
	fmt.Fprintf(&b, "Condition: %s\n", p.Condition)
	fmt.Fprintf(&b, "Runs: %s\n", p.Runs)
	if p.EngineHoursKnown {
		fmt.Fprintf(&b, "Engine hours: %.0f\n", p.EngineHours)
	} else {
		fmt.Fprintf(&b, "Engine hours: unknown\n")
	}
	fmt.Fprintf(&b, "Trailer included: %s\n", p.Trailer)
	fmt.Fprintf(&b, "Title: %s\n", p.TitleStatus)
	fmt.Fprintf(&b, "Hull material: %s\n", p.HullMaterial)
	fmt.Fprintf(&b, "Stored out of water over a year: %t\n", p.OutOfWaterYearPlus)
	fmt.Fprintf(&b, "Location: %s\n", orUnknown(p.Location))
	if p.Upgrades != "" {
		fmt.Fprintf(&b, "Aftermarket/upgrades: %s\n", p.Upgrades)
	}
	fmt.Fprintf(&b, "\nRespond with only valid JSON matching this schema:\n")
	fmt.Fprintf(&b, `{"estimate":"$12,500","range":{"low":"$11,000","high":"$14,000"},"confidence":"low|medium|high","rationale":"one or two sentences","comps":[{"title":"","price":"$0","year":0,"length":0,"location":"","url":""}]`)
	if includeTrend {
		fmt.Fprintf(&b, `,"trend":[{"label":"Jan 2026","price":"$0"}]`)
	}
	fmt.Fprintf(&b, "}\n")
	fmt.Fprintf(&b, "Include up to 8 realistic comparable listings.")
	if includeTrend {
		fmt.Fprintf(&b, " Include exactly 12 monthly trend points for the trailing 12 months.")
	}
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

type wireComp struct {
	Title    string     `json:"title"`
	Price    FlexNumber `json:"price"`
	Year     FlexNumber `json:"year"`
	LengthFt FlexNumber `json:"length"`
	Location string     `json:"location"`
	URL      string     `json:"url"`
}

type wireTrendPoint struct {
	Label string     `json:"label"`
	Price FlexNumber `json:"price"`
}

type wireEstimate struct {
	Estimate FlexNumber `json:"estimate"`
	Range    struct {
		Low  FlexNumber `json:"low"`
		High FlexNumber `json:"high"`
	} `json:"range"`
	Confidence string           `json:"confidence"`
	Rationale  string           `json:"rationale"`
	Comps      []wireComp       `json:"comps"`
	Trend      []wireTrendPoint `json:"trend"`
}

// decodeEstimate is the strict decode-or-fallback step: either the response
// yields a fully parsed estimate with a finite positive point value, or the
// whole attempt reports ErrUnavailable. Fragments are never trusted.
func decodeEstimate(raw string) (*ExternalEstimate, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	var wire wireEstimate
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !wire.Estimate.Set || !(wire.Estimate.Value > 0) || math.IsInf(wire.Estimate.Value, 0) {
		return nil, fmt.Errorf("%w: missing or invalid estimate", ErrUnavailable)
	}

	est := &ExternalEstimate{
		EstimateUSD: wire.Estimate.Value,
		Rationale:   strings.TrimSpace(wire.Rationale),
	}
	if wire.Range.Low.Set && wire.Range.High.Set && wire.Range.Low.Value > 0 && wire.Range.High.Value > wire.Range.Low.Value {
		est.RangeLowUSD = wire.Range.Low.Value
		est.RangeHighUSD = wire.Range.High.Value
	}
	switch Confidence(strings.ToLower(strings.TrimSpace(wire.Confidence))) {
	case ConfidenceLow:
		est.Confidence = ConfidenceLow
	case ConfidenceMedium:
		est.Confidence = ConfidenceMedium
	case ConfidenceHigh:
		est.Confidence = ConfidenceHigh
	}
	for _, c := range wire.Comps {
		if !c.Price.Set || c.Price.Value <= 0 {
			continue
		}
		est.Comps = append(est.Comps, Comp{
			Title:    strings.TrimSpace(c.Title),
			PriceUSD: int64(math.Round(c.Price.Value)),
			Year:     int(math.Round(c.Year.Value)),
			LengthFt: c.LengthFt.Value,
			Location: strings.TrimSpace(c.Location),
			URL:      strings.TrimSpace(c.URL),
		})
	}
	for _, tp := range wire.Trend {
		if !tp.Price.Set || tp.Price.Value <= 0 {
			continue
		}
		est.Trend = append(est.Trend, TrendPoint{
			Label:    strings.TrimSpace(tp.Label),
			PriceUSD: int64(math.Round(tp.Price.Value)),
		})
	}
	return est, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
