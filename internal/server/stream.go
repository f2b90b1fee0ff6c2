package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/buergerwerk/klartext/internal/pipeline"
)

// handleStream delivers the abbreviated pipeline incrementally as
// server-sent events. The stream is append-only and always ends with
// a done or error event; consumers must ignore unknown event names.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	trace := newTrace()

	if !s.authorize(r) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "FORBIDDEN", Trace: trace})
		return
	}

	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "INVALID_INPUT", Trace: trace})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "INTERNAL", Trace: trace})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev pipeline.Event) {
		// Engine bookkeeping events stay internal; the wire carries
		// the domain events only.
		if ev.Name == "step_started" || ev.Name == "step_ended" {
			return
		}
		writeSSE(w, flusher, ev)
	}

	s.analyzer.AnalyzeStream(r.Context(), pipeline.AnalyzeRequest{
		Text:      req.Text,
		Locale:    req.Locale,
		MaxClaims: req.MaxClaims,
		UserID:    userID(r),
		Trace:     trace,
	}, emit)
}

// writeSSE writes one named event in text/event-stream framing.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev pipeline.Event) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		data = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	flusher.Flush()
}
