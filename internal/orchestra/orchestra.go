// Package orchestra fans a single logical prompt out to every
// configured provider, applies per-provider deadlines, scores the
// successful responses and picks a winner. It is the only place in the
// codebase allowed to turn "all providers failed" into a hard error.
package orchestra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/buergerwerk/klartext/internal/llm"
	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/telemetry"
)

// DefaultTimeout bounds a provider dispatch when neither the member nor
// the call options specify one.
const DefaultTimeout = 8 * time.Second

// Member is one configured provider plus its selection parameters.
type Member struct {
	Provider llm.Provider
	Weight   float64       // base score in winner selection
	Timeout  time.Duration // per-provider deadline, 0 = default
	Limiter  *rate.Limiter // optional client-side throttle, nil = unlimited
}

// Candidate is one provider's successful attempt at the request.
type Candidate struct {
	Provider         string
	RawText          string
	Score            float64
	Duration         time.Duration
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Failure records one provider that did not produce a usable response.
type Failure struct {
	Provider string
	Reason   string // "timeout" or "error"
	Err      error
}

// Outcome is the reduced result of one fan-out.
type Outcome struct {
	Best       Candidate
	Candidates []Candidate
	Failures   []Failure
}

// Options tune a single dispatch.
type Options struct {
	Pipeline  string // stage name, recorded in telemetry
	UserID    string // attribution only
	MaxTokens int
	Timeout   time.Duration // overrides member timeouts when set
}

// Orchestra coordinates the configured providers.
type Orchestra struct {
	members []Member
	usage   telemetry.Recorder
}

// New creates an orchestra over the given members. usage may be nil to
// disable telemetry.
func New(members []Member, usage telemetry.Recorder) *Orchestra {
	if usage == nil {
		usage = telemetry.Nop{}
	}
	return &Orchestra{members: members, usage: usage}
}

// Members returns the number of configured providers.
func (o *Orchestra) Members() int {
	return len(o.members)
}

// dispatchResult is the per-provider sum type: exactly one of candidate
// or failure is set.
type dispatchResult struct {
	candidate *Candidate
	failure   *Failure
}

// Dispatch sends the prompt to every member concurrently, waits for all
// of them (each bounded by its own deadline) and reduces the collected
// results with the pure selection logic in score.go.
//
// A timed-out member is reported as a failure without cancelling its
// siblings. If no member succeeds, Dispatch returns an error wrapping
// model.ErrNoProviderOutput that names the failed providers.
func (o *Orchestra) Dispatch(ctx context.Context, system, user string, opts Options) (*Outcome, error) {
	if len(o.members) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", model.ErrNoProviderOutput)
	}

	results := make(chan dispatchResult, len(o.members))
	for _, m := range o.members {
		go func(m Member) {
			results <- o.dispatchOne(ctx, m, system, user, opts)
		}(m)
	}

	var candidates []Candidate
	var failures []Failure
	for range o.members {
		r := <-results
		if r.candidate != nil {
			candidates = append(candidates, *r.candidate)
		} else {
			failures = append(failures, *r.failure)
		}
	}

	if len(candidates) == 0 {
		// The failure list still comes back so callers can tell a
		// fleet-wide timeout from a fleet-wide error.
		return &Outcome{Failures: failures}, fmt.Errorf("%w: %s", model.ErrNoProviderOutput, describeFailures(failures))
	}

	best := selectBest(candidates)

	o.usage.RecordAsync(telemetry.Usage{
		Provider:         best.Provider,
		Model:            best.Model,
		Pipeline:         opts.Pipeline,
		UserID:           opts.UserID,
		PromptTokens:     best.PromptTokens,
		CompletionTokens: best.CompletionTokens,
		CostUSD:          estimateCost(best.Model, best.PromptTokens, best.CompletionTokens),
		Duration:         best.Duration,
	})

	return &Outcome{
		Best:       best,
		Candidates: candidates,
		Failures:   failures,
	}, nil
}

// dispatchOne runs a single provider call under its deadline.
func (o *Orchestra) dispatchOne(ctx context.Context, m Member, system, user string, opts Options) dispatchResult {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = m.Timeout
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The limiter wait counts against the deadline: a throttled
	// provider that cannot get a slot in time is a timeout, not a
	// silent stall.
	if m.Limiter != nil {
		if err := m.Limiter.Wait(callCtx); err != nil {
			return dispatchResult{failure: &Failure{
				Provider: m.Provider.Name(),
				Reason:   "timeout",
				Err:      err,
			}}
		}
	}

	start := time.Now()
	resp, err := m.Provider.Complete(callCtx, llm.CompletionRequest{
		System:    system,
		User:      user,
		MaxTokens: opts.MaxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			reason = "timeout"
		}
		return dispatchResult{failure: &Failure{
			Provider: m.Provider.Name(),
			Reason:   reason,
			Err:      err,
		}}
	}

	c := Candidate{
		Provider:         m.Provider.Name(),
		RawText:          resp.Text,
		Duration:         duration,
		Model:            resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}
	c.Score = scoreCandidate(m.Weight, c)
	return dispatchResult{candidate: &c}
}

func describeFailures(failures []Failure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Provider, f.Reason))
	}
	return "all providers failed: " + strings.Join(parts, ", ")
}
