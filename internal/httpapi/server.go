package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/autin2/hullifyrepo/internal/report"
	"github.com/autin2/hullifyrepo/internal/store"
	"github.com/autin2/hullifyrepo/internal/valuation"
)

// Server is the request-handling layer around the valuation engine. The engine
// itself never fails outward, so the only client-visible errors here are
// malformed request bodies and unknown tokens.
type Server struct {
	engine        *valuation.Engine
	store         store.Store
	pdfRenderer   report.PDFRenderer
	estimatorMode string
}

func NewServer(engine *valuation.Engine, st store.Store, pdfRenderer report.PDFRenderer, estimatorMode string) http.Handler {
	s := &Server{
		engine:        engine,
		store:         st,
		pdfRenderer:   pdfRenderer,
		estimatorMode: estimatorMode,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/valuations", s.handleValuations)
	mux.HandleFunc("/v1/valuations/", s.handleValuationByToken)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleValuations(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, 400, "invalid request body")
		return
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}

	var req struct {
		valuation.Payload
		IncludeTrend bool `json:"include_trend"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	v := s.engine.Compute(r.Context(), req.Payload, valuation.Options{IncludeTrend: req.IncludeTrend})

	rec := store.Record{
		Token:     store.NewToken(),
		CreatedAt: time.Now().UTC(),
		Payload:   req.Payload,
		Valuation: v,
	}
	if err := s.store.Save(rec); err != nil {
		// The valuation is still good; the client just cannot fetch it later.
		log.Printf("save valuation record: %v", err)
		writeJSON(w, 200, map[string]any{"valuation": v})
		return
	}

	writeJSON(w, 200, map[string]any{
		"token":     rec.Token,
		"valuation": v,
	})
}

func (s *Server) handleValuationByToken(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/valuations/")
	path = strings.TrimSuffix(path, "/")
	token := path
	sub := ""
	if i := strings.IndexByte(path, '/'); i >= 0 {
		token, sub = path[:i], path[i+1:]
	}
	if token == "" {
		writeError(w, 400, "token is required")
		return
	}

	rec, ok, err := s.store.Get(token)
	if err != nil {
		log.Printf("get valuation record: %v", err)
		writeError(w, 500, "failed to load valuation")
		return
	}
	if !ok {
		writeError(w, 404, "valuation not found")
		return
	}

	switch sub {
	case "":
		writeJSON(w, 200, rec)
	case "report":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(report.BuildMarkdown(rec.Payload, rec.Valuation, rec.CreatedAt)))
	case "pdf":
		s.servePDF(w, r, rec)
	default:
		writeError(w, 404, "unknown resource")
	}
}

func (s *Server) servePDF(w http.ResponseWriter, r *http.Request, rec store.Record) {
	if s.pdfRenderer == nil {
		writeError(w, 503, "pdf renderer unavailable")
		return
	}
	md := report.BuildMarkdown(rec.Payload, rec.Valuation, rec.CreatedAt)
	pdf, err := s.pdfRenderer.Render(r.Context(), md)
	if err != nil {
		log.Printf("render valuation pdf failed token=%s err=%v", rec.Token, err)
		writeError(w, 500, "failed to render pdf")
		return
	}
	filename := fmt.Sprintf("valuation-%s.pdf", sanitizeFilename(rec.Token))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(200)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, 200, map[string]any{
		"ok":        true,
		"estimator": s.estimatorMode,
	})
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "valuation"
	}
	v = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
	return v
}
