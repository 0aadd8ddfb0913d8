package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/autin2/hullifyrepo/internal/report"
	"github.com/autin2/hullifyrepo/internal/valuation"
)

func main() {
	var (
		payloadPath = flag.String("payload", "-", "Path to a payload JSON file, or - for stdin")
		trend       = flag.Bool("trend", false, "Include the 12-month price trend")
		format      = flag.String("format", "json", "Output format: json or report")
	)
	flag.Parse()

	blob, err := readPayload(*payloadPath)
	if err != nil {
		log.Fatal(err)
	}
	var raw valuation.Payload
	if err := json.Unmarshal(blob, &raw); err != nil {
		log.Fatalf("parse payload: %v", err)
	}

	estimator := valuation.Estimator(valuation.NullEstimator{})
	if caller, err := valuation.NewAnthropicCallerFromEnv(); err == nil {
		estimator = valuation.NewAnthropicEstimator(caller)
	} else {
		log.Printf("external estimator disabled: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	engine := valuation.NewEngine(estimator)
	v := engine.Compute(ctx, raw, valuation.Options{IncludeTrend: *trend})

	switch *format {
	case "report":
		fmt.Print(report.BuildMarkdown(raw, v, time.Now()))
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(out))
	}
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
