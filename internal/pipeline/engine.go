// Package pipeline composes the analysis stages into an ordered,
// conditionally-skippable execution over a shared context.
package pipeline

import (
	"context"
	"fmt"

	"github.com/buergerwerk/klartext/internal/model"
)

// Context is the state threaded through pipeline steps. It is never
// replaced wholesale: each step returns a Patch that the engine merges,
// so signals written by earlier steps survive to later ones.
type Context struct {
	Text   string
	Lang   string
	URLs   []string
	Data   map[string]any
	Result *model.AnalysisResult
}

// Patch is a step's immutable output. Zero-valued fields leave the
// running context untouched; Data entries are merged key by key rather
// than replacing the whole map.
type Patch struct {
	Text   string
	Lang   string
	URLs   []string
	Data   map[string]any
	Result *model.AnalysisResult
}

// Event is one client-visible progress signal.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// EmitFunc receives events as steps produce them.
type EmitFunc func(Event)

// Step is one unit of pipeline work. When is optional: a false return
// skips the step entirely, without events.
type Step struct {
	Name string
	When func(Context) bool
	Run  func(ctx context.Context, c Context, emit EmitFunc) (Patch, error)
}

// Run executes steps strictly in order. For each executed step it
// emits step_started, runs the step, merges the returned patch and
// emits step_ended. The engine never retries; an error from a step
// aborts the remainder and propagates to the caller, who owns any
// degrade-and-continue policy.
func Run(ctx context.Context, initial Context, emit EmitFunc, steps []Step) (Context, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	cur := initial
	if cur.Data == nil {
		cur.Data = map[string]any{}
	}

	for _, step := range steps {
		if step.When != nil && !step.When(cur) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return cur, err
		}

		emit(Event{Name: "step_started", Payload: map[string]string{"step": step.Name}})

		patch, err := step.Run(ctx, cur, emit)
		if err != nil {
			return cur, fmt.Errorf("step %s: %w", step.Name, err)
		}
		cur = merge(cur, patch)

		emit(Event{Name: "step_ended", Payload: map[string]string{"step": step.Name}})
	}

	return cur, nil
}

// merge applies a patch: shallow at the top level, one level deep for
// Data. The input context is not mutated; Data is copied before the
// patch entries land in it.
func merge(c Context, p Patch) Context {
	if p.Text != "" {
		c.Text = p.Text
	}
	if p.Lang != "" {
		c.Lang = p.Lang
	}
	if p.URLs != nil {
		c.URLs = p.URLs
	}
	if p.Result != nil {
		c.Result = p.Result
	}
	if len(p.Data) > 0 {
		data := make(map[string]any, len(c.Data)+len(p.Data))
		for k, v := range c.Data {
			data[k] = v
		}
		for k, v := range p.Data {
			data[k] = v
		}
		c.Data = data
	}
	return c
}
