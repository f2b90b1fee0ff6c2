// Package refine asks a provider to merge near-duplicates in a claim
// list, complete missing fields and pick exactly one primary claim.
// Every failure mode degrades to the unchanged input list: refinement
// must never lose claims produced by extraction.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/orchestra"
)

// DefaultTimeout is the refinement stage budget.
const DefaultTimeout = 6 * time.Second

// Dispatcher is the slice of the orchestrator the refiner needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, system, user string, opts orchestra.Options) (*orchestra.Outcome, error)
}

// Refiner runs the refinement stage.
type Refiner struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

// New creates a refiner. timeout 0 means DefaultTimeout.
func New(d Dispatcher, timeout time.Duration) *Refiner {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Refiner{dispatcher: d, timeout: timeout}
}

type dispatchSettled struct {
	outcome *orchestra.Outcome
	err     error
}

// Refine selects a primary claim and demotes the rest to drafts. The
// provider call races against the stage budget; on any failure the
// original claims come back unchanged with index 0 as primary.
func (r *Refiner) Refine(ctx context.Context, claims []model.AtomicClaim, locale string, opts orchestra.Options) model.RefinementResult {
	if len(claims) == 0 {
		return model.RefinementResult{Claims: []model.AtomicClaim{}, DraftIndexes: []int{}}
	}

	system, user, err := buildPrompt(claims, locale)
	if err != nil {
		return keepInput(claims, model.ReasonError)
	}
	opts.Pipeline = "refine"

	budget, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	settled := make(chan dispatchSettled, 1)
	go func() {
		out, derr := r.dispatcher.Dispatch(budget, system, user, opts)
		settled <- dispatchSettled{outcome: out, err: derr}
	}()

	var s dispatchSettled
	select {
	case s = <-settled:
	case <-budget.Done():
		return keepInput(claims, model.ReasonTimeout)
	}

	if s.err != nil {
		return keepInput(claims, model.ReasonError)
	}

	parsed, err := parseRefinement(s.outcome.Best.RawText)
	if err != nil || len(parsed.Claims) == 0 {
		return keepInput(claims, model.ReasonParse)
	}

	return sanitize(parsed)
}

// keepInput is the degrade path: original claims, first one primary,
// the rest drafts.
func keepInput(claims []model.AtomicClaim, reason string) model.RefinementResult {
	drafts := make([]int, 0, len(claims))
	for i := 1; i < len(claims); i++ {
		drafts = append(drafts, i)
	}
	return model.RefinementResult{
		PrimaryIndex: 0,
		Claims:       claims,
		DraftIndexes: drafts,
		Degraded:     true,
		Reason:       reason,
	}
}

// sanitize clamps the primary index into range and filters the draft
// indexes down to valid, non-primary, non-duplicate entries.
func sanitize(parsed model.RefinementResult) model.RefinementResult {
	for i := range parsed.Claims {
		parsed.Claims[i].Normalize()
	}

	if parsed.PrimaryIndex < 0 {
		parsed.PrimaryIndex = 0
	}
	if parsed.PrimaryIndex >= len(parsed.Claims) {
		parsed.PrimaryIndex = len(parsed.Claims) - 1
	}

	seen := map[int]bool{parsed.PrimaryIndex: true}
	drafts := make([]int, 0, len(parsed.Claims))
	for _, idx := range parsed.DraftIndexes {
		if idx >= 0 && idx < len(parsed.Claims) && !seen[idx] {
			seen[idx] = true
			drafts = append(drafts, idx)
		}
	}
	// Indexes the model forgot still belong somewhere: demote them.
	for i := range parsed.Claims {
		if !seen[i] {
			drafts = append(drafts, i)
		}
	}
	parsed.DraftIndexes = drafts

	return parsed
}

// refinementWire mirrors the expected response object with lenient
// index types.
type refinementWire struct {
	PrimaryIndex json.Number         `json:"primaryIndex"`
	Claims       []model.AtomicClaim `json:"claims"`
	DraftIndexes []json.Number       `json:"draftIndexes"`
}

// parseRefinement recovers the refinement object from raw model
// output by scanning for the outermost brace pair.
func parseRefinement(raw string) (model.RefinementResult, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return model.RefinementResult{}, fmt.Errorf("no JSON object in model output")
	}

	var w refinementWire
	if err := json.Unmarshal([]byte(raw[start:end+1]), &w); err != nil {
		return model.RefinementResult{}, fmt.Errorf("unmarshal refinement: %w", err)
	}

	primary, _ := w.PrimaryIndex.Int64()
	drafts := make([]int, 0, len(w.DraftIndexes))
	for _, n := range w.DraftIndexes {
		if v, err := n.Int64(); err == nil {
			drafts = append(drafts, int(v))
		}
	}

	return model.RefinementResult{
		PrimaryIndex: int(primary),
		Claims:       w.Claims,
		DraftIndexes: drafts,
	}, nil
}
