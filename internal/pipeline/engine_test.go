package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/buergerwerk/klartext/internal/model"
)

func TestRun_OrderAndEvents(t *testing.T) {
	var events []string
	emit := func(e Event) { events = append(events, e.Name) }

	steps := []Step{
		{Name: "one", Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			emit(Event{Name: "custom"})
			return Patch{Data: map[string]any{"a": 1}}, nil
		}},
		{Name: "two", Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			if c.Data["a"] != 1 {
				t.Error("Expected the first step's data visible to the second")
			}
			return Patch{}, nil
		}},
	}

	_, err := Run(context.Background(), Context{}, emit, steps)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{"step_started", "custom", "step_ended", "step_started", "step_ended"}
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Event %d: expected %q, got %q", i, want[i], events[i])
		}
	}
}

func TestRun_WhenSkipsWithoutEvents(t *testing.T) {
	var events []string
	ran := false

	steps := []Step{
		{
			Name: "skipped",
			When: func(Context) bool { return false },
			Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
				ran = true
				return Patch{}, nil
			},
		},
	}

	_, err := Run(context.Background(), Context{}, func(e Event) { events = append(events, e.Name) }, steps)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ran {
		t.Error("Expected the step body never to run")
	}
	if len(events) != 0 {
		t.Errorf("Expected no events for a skipped step, got %v", events)
	}
}

func TestRun_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	secondRan := false

	steps := []Step{
		{Name: "fails", Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			return Patch{}, boom
		}},
		{Name: "after", Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			secondRan = true
			return Patch{}, nil
		}},
	}

	_, err := Run(context.Background(), Context{}, nil, steps)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the step error wrapped, got %v", err)
	}
	if secondRan {
		t.Error("Expected the pipeline to stop at the failing step")
	}
}

func TestMerge_Semantics(t *testing.T) {
	base := Context{
		Text: "original",
		Lang: "de",
		Data: map[string]any{"keep": true, "replace": 1},
	}

	merged := merge(base, Patch{Data: map[string]any{"replace": 2, "new": "x"}})

	if merged.Text != "original" || merged.Lang != "de" {
		t.Error("Expected zero patch fields to leave the context untouched")
	}
	if merged.Data["keep"] != true || merged.Data["replace"] != 2 || merged.Data["new"] != "x" {
		t.Errorf("Expected data merged key by key, got %v", merged.Data)
	}
	if base.Data["replace"] != 1 {
		t.Error("Expected the input context's data not mutated")
	}

	res := &model.AnalysisResult{}
	merged = merge(base, Patch{Text: "changed", Result: res})
	if merged.Text != "changed" {
		t.Error("Expected a non-zero Text to replace the old one")
	}
	if merged.Result != res {
		t.Error("Expected the result pointer installed")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	steps := []Step{
		{Name: "never", Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			ran = true
			return Patch{}, nil
		}},
	}

	_, err := Run(ctx, Context{}, nil, steps)
	if err == nil {
		t.Fatal("Expected the cancelled context to surface as an error")
	}
	if ran {
		t.Error("Expected no step to run after cancellation")
	}
}
