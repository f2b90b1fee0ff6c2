// Package extract turns raw submission text into a bounded list of
// atomic claims. The primary path is a provider call with a strict
// output contract; a deterministic sentence splitter covers every
// failure mode, so the stage never errors out on non-empty input.
package extract

import (
	"context"
	"time"

	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/orchestra"
)

// DefaultTimeout is the fast-path extraction budget.
const DefaultTimeout = 4 * time.Second

// Dispatcher is the slice of the orchestrator the extractor needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, system, user string, opts orchestra.Options) (*orchestra.Outcome, error)
}

// Result is the output of one extraction run.
type Result struct {
	Claims   []model.AtomicClaim
	Degraded bool
	Reason   string // AI_TIMEOUT | AI_PARSE | AI_ERROR, set when degraded
	Model    string // winning model, empty on the fallback path
}

// Extractor runs the extraction stage.
type Extractor struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

// New creates an extractor. timeout 0 means DefaultTimeout.
func New(d Dispatcher, timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{dispatcher: d, timeout: timeout}
}

type dispatchSettled struct {
	outcome *orchestra.Outcome
	err     error
}

// Extract produces up to maxClaims claims for text. The provider call
// races against the stage budget; whichever settles first wins and the
// loser's eventual settlement is ignored.
func (e *Extractor) Extract(ctx context.Context, text string, maxClaims int, locale string, opts orchestra.Options) Result {
	system, user := buildPrompt(text, maxClaims, locale)
	opts.Pipeline = "extract"

	budget, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	settled := make(chan dispatchSettled, 1)
	go func() {
		out, err := e.dispatcher.Dispatch(budget, system, user, opts)
		settled <- dispatchSettled{outcome: out, err: err}
	}()

	var s dispatchSettled
	select {
	case s = <-settled:
	case <-budget.Done():
		return e.fallback(text, maxClaims, model.ReasonTimeout)
	}

	if s.err != nil {
		reason := model.ReasonError
		if allTimeouts(s.outcome) {
			reason = model.ReasonTimeout
		}
		return e.fallback(text, maxClaims, reason)
	}

	claims, err := parseClaimList(s.outcome.Best.RawText)
	if err != nil || len(claims) == 0 {
		return e.fallback(text, maxClaims, model.ReasonParse)
	}

	if len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}
	for i := range claims {
		claims[i].Normalize()
	}

	return Result{
		Claims: claims,
		Model:  s.outcome.Best.Model,
	}
}

// fallback runs the deterministic splitter and tags the result with
// the machine-readable degradation reason.
func (e *Extractor) fallback(text string, maxClaims int, reason string) Result {
	return Result{
		Claims:   Heuristic(text, maxClaims),
		Degraded: true,
		Reason:   reason,
	}
}

func allTimeouts(out *orchestra.Outcome) bool {
	if out == nil || len(out.Failures) == 0 {
		return false
	}
	for _, f := range out.Failures {
		if f.Reason != "timeout" {
			return false
		}
	}
	return true
}
