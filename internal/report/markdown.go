package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/autin2/hullifyrepo/internal/valuation"
)

// BuildMarkdown renders a valuation as a GFM report suitable for direct
// display or PDF conversion.
func BuildMarkdown(p valuation.Payload, v valuation.Valuation, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Vessel Valuation Report\n\n")
	if name := vesselName(p); name != "" {
		fmt.Fprintf(&b, "- Vessel: %s\n", sanitize(name))
	}
	if loc := strings.TrimSpace(string(p.Location)); loc != "" {
		fmt.Fprintf(&b, "- Location: %s\n", sanitize(loc))
	}
	fmt.Fprintf(&b, "- Date: %s\n\n", generatedAt.Format("January 2, 2006"))

	fmt.Fprintf(&b, "## Estimate\n\n")
	fmt.Fprintf(&b, "- Point estimate: **%s**\n", v.Estimate)
	fmt.Fprintf(&b, "- Expected range: $%s to $%s\n", valuation.FormatUSD(v.Range.LowUSD), valuation.FormatUSD(v.Range.HighUSD))
	fmt.Fprintf(&b, "- Confidence: `%s`\n\n", v.Confidence)
	fmt.Fprintf(&b, "%s\n\n", sanitize(v.Rationale))

	if len(v.Comps) > 0 {
		fmt.Fprintf(&b, "## Comparable Listings\n\n")
		fmt.Fprintf(&b, "| Listing | Price | Year | Length | Location |\n")
		fmt.Fprintf(&b, "|---------|-------|------|--------|----------|\n")
		for _, c := range v.Comps {
			title := sanitize(c.Title)
			if c.URL != "" {
				title = fmt.Sprintf("[%s](%s)", title, c.URL)
			}
			fmt.Fprintf(&b, "| %s | $%s | %s | %s | %s |\n",
				title, valuation.FormatUSD(c.PriceUSD), intCell(c.Year), lengthCell(c.LengthFt), sanitize(c.Location))
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(v.Trend) > 0 {
		fmt.Fprintf(&b, "## 12-Month Price Trend\n\n")
		fmt.Fprintf(&b, "| Month | Typical Price |\n|-------|---------------|\n")
		for _, tp := range v.Trend {
			fmt.Fprintf(&b, "| %s | $%s |\n", sanitize(tp.Label), valuation.FormatUSD(tp.PriceUSD))
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## How This Estimate Works\n\n")
	fmt.Fprintf(&b, "The point estimate starts from a deterministic pricing model built on hull size, "+
		"an age depreciation curve, and condition, running-state, title, and storage adjustments. "+
		"When live market data is available it refines the figure, but the final number is always "+
		"held within a bounded band around the deterministic model, and the published range is "+
		"widened to match the stated confidence.\n\n")
	fmt.Fprintf(&b, "%s\n", v.Disclaimer)
	return b.String()
}

func vesselName(p valuation.Payload) string {
	var parts []string
	if p.Year.Set {
		parts = append(parts, fmt.Sprintf("%.0f", p.Year.Value))
	}
	if m := strings.TrimSpace(string(p.Make)); m != "" {
		parts = append(parts, m)
	}
	if m := strings.TrimSpace(string(p.Model)); m != "" {
		parts = append(parts, m)
	}
	return strings.Join(parts, " ")
}

func intCell(v int) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func lengthCell(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f ft", v)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
