// Package server exposes the analysis pipeline over HTTP: a
// synchronous analyze call, a refinement call that never hard-fails,
// and an incremental SSE stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/pipeline"
)

// Authorizer is the access-control seam. The decision is consumed
// before the pipeline is invoked, never produced here; the default
// allows everything.
type Authorizer func(r *http.Request) bool

// ContributionSink receives finalized analysis results. The pipeline
// hands its output over and does not manage persistence.
type ContributionSink interface {
	Store(ctx context.Context, userID string, result *model.AnalysisResult) error
}

type nopSink struct{}

func (nopSink) Store(context.Context, string, *model.AnalysisResult) error { return nil }

// Server holds the HTTP handlers and their collaborator seams.
type Server struct {
	analyzer  *pipeline.Analyzer
	authorize Authorizer
	sink      ContributionSink
}

// Option configures a Server.
type Option func(*Server)

// WithAuthorizer installs an access-control decision hook.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Server) { s.authorize = a }
}

// WithContributionSink installs a persistence sink for results.
func WithContributionSink(sink ContributionSink) Option {
	return func(s *Server) { s.sink = sink }
}

// New creates a server around the analyzer.
func New(analyzer *pipeline.Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer:  analyzer,
		authorize: func(*http.Request) bool { return true },
		sink:      nopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/v1/refine", s.handleRefine)
	mux.HandleFunc("POST /api/v1/analyze/stream", s.handleStream)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// newTrace mints a correlation id for support lookups.
func newTrace() string {
	return ulid.Make().String()
}

// userID reads the opaque identity forwarded by the session layer.
// Used for telemetry attribution only.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// handContribution forwards a finalized result to the sink without
// blocking the response.
func (s *Server) handContribution(uid string, result *model.AnalysisResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.sink.Store(ctx, uid, result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: contribution sink failed: %v\n", err)
		}
	}()
}
