package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/autin2/hullifyrepo/internal/httpapi"
	"github.com/autin2/hullifyrepo/internal/report"
	"github.com/autin2/hullifyrepo/internal/store"
	"github.com/autin2/hullifyrepo/internal/telemetry"
	"github.com/autin2/hullifyrepo/internal/valuation"
)

func main() {
	var (
		addr   = flag.String("addr", ":8080", "Listen address")
		dbPath = flag.String("db", "", "SQLite database path (empty: in-memory records only)")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "hullify-server")
	if err != nil {
		log.Printf("warning: tracing setup failed: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	estimator, mode := buildEstimator()

	var st store.Store
	if *dbPath != "" {
		sqlite, err := store.NewSQLiteStore(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlite.Close()
		st = sqlite
	} else {
		st = store.NewMemoryStore()
	}

	engine := valuation.NewEngine(estimator)
	handler := httpapi.NewServer(engine, st, report.NewChromiumPDFRenderer(), mode)

	log.Printf("hullify-server listening on %s (estimator=%s, db=%s)", *addr, mode, orMemory(*dbPath))
	srv := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func buildEstimator() (valuation.Estimator, string) {
	caller, err := valuation.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Printf("external estimator disabled: %v", err)
		return valuation.NullEstimator{}, "null"
	}
	return valuation.NewAnthropicEstimator(caller), "anthropic"
}

func orMemory(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}
