package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/pipeline"
)

// maxBodyBytes caps request bodies well above the 8000-char text limit
// to leave room for claim lists and JSON overhead.
const maxBodyBytes = 1 << 20

type analyzeRequest struct {
	Text      string `json:"text"`
	Locale    string `json:"locale"`
	MaxClaims int    `json:"maxClaims"`
}

type analyzeResponse struct {
	OK bool `json:"ok"`
	*model.AnalysisResult
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Trace string `json:"trace"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	trace := newTrace()

	if !s.authorize(r) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "FORBIDDEN", Trace: trace})
		return
	}

	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: model.ErrorKindInvalidInput, Trace: trace})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), pipeline.AnalyzeRequest{
		Text:      req.Text,
		Locale:    req.Locale,
		MaxClaims: req.MaxClaims,
		UserID:    userID(r),
		Trace:     trace,
	}, nil)
	if err != nil {
		status, kind := classify(err)
		writeJSON(w, status, errorResponse{Error: kind, Trace: trace})
		return
	}

	s.handContribution(userID(r), result)
	writeJSON(w, http.StatusOK, analyzeResponse{OK: true, AnalysisResult: result})
}

type refineRequest struct {
	Locale string              `json:"locale"`
	Claims []model.AtomicClaim `json:"claims"`
}

type refineResponse struct {
	OK bool `json:"ok"`
	model.RefinementResult
}

// handleRefine never surfaces provider failures: losing the caller's
// claims on a transient error is worse than a visibly degraded
// response. Only an unreadable request body earns a 400.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	trace := newTrace()

	if !s.authorize(r) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "FORBIDDEN", Trace: trace})
		return
	}

	var req refineRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: model.ErrorKindInvalidInput, Trace: trace})
		return
	}

	result := s.analyzer.Refine(r.Context(), req.Claims, req.Locale, userID(r))
	writeJSON(w, http.StatusOK, refineResponse{OK: true, RefinementResult: result})
}

// classify maps pipeline errors onto HTTP statuses: 400 invalid input,
// 502 no provider output or malformed model output, 500 unexpected.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, model.ErrorKindInvalidInput
	case errors.Is(err, model.ErrNoProviderOutput):
		return http.StatusBadGateway, model.ErrorKindNoProviderOutput
	default:
		return http.StatusInternalServerError, model.ErrorKindInternal
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
