package refine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/orchestra"
)

type fakeDispatcher struct {
	raw   string
	err   error
	delay time.Duration
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, system, user string, opts orchestra.Options) (*orchestra.Outcome, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return &orchestra.Outcome{}, f.err
	}
	return &orchestra.Outcome{Best: orchestra.Candidate{RawText: f.raw}}, nil
}

func claims(texts ...string) []model.AtomicClaim {
	out := make([]model.AtomicClaim, len(texts))
	for i, txt := range texts {
		out[i] = model.AtomicClaim{Text: txt}
		out[i].Normalize()
	}
	return out
}

func TestRefine_EmptyInput(t *testing.T) {
	r := New(&fakeDispatcher{raw: "{}"}, time.Second)
	res := r.Refine(context.Background(), nil, "de", orchestra.Options{})
	if res.Degraded {
		t.Error("Expected empty input to pass through without degradation")
	}
	if res.Claims == nil || res.DraftIndexes == nil {
		t.Error("Expected empty, non-nil slices")
	}
}

func TestRefine_Success(t *testing.T) {
	d := &fakeDispatcher{raw: `Sure: {"primaryIndex": 1, "claims": [{"text":"a"},{"text":"b"}], "draftIndexes": [0]}`}
	r := New(d, time.Second)

	res := r.Refine(context.Background(), claims("a", "b"), "de", orchestra.Options{})

	if res.Degraded {
		t.Fatalf("Expected a clean result, got degraded (%s)", res.Reason)
	}
	if res.PrimaryIndex != 1 {
		t.Errorf("Expected primary index 1, got %d", res.PrimaryIndex)
	}
	if len(res.DraftIndexes) != 1 || res.DraftIndexes[0] != 0 {
		t.Errorf("Expected drafts [0], got %v", res.DraftIndexes)
	}
	for _, c := range res.Claims {
		if c.Zustaendigkeit == "" {
			t.Error("Expected refined claims normalized")
		}
	}
}

func TestRefine_ErrorKeepsInput(t *testing.T) {
	in := claims("a", "b", "c")
	r := New(&fakeDispatcher{err: errors.New("all providers failed")}, time.Second)

	res := r.Refine(context.Background(), in, "de", orchestra.Options{})

	if !res.Degraded || res.Reason != model.ReasonError {
		t.Fatalf("Expected AI_ERROR degradation, got degraded=%v reason=%q", res.Degraded, res.Reason)
	}
	if len(res.Claims) != 3 {
		t.Fatalf("Expected all input claims kept, got %d", len(res.Claims))
	}
	if res.PrimaryIndex != 0 {
		t.Errorf("Expected index 0 primary on degrade, got %d", res.PrimaryIndex)
	}
	if len(res.DraftIndexes) != 2 || res.DraftIndexes[0] != 1 || res.DraftIndexes[1] != 2 {
		t.Errorf("Expected remaining claims demoted to drafts, got %v", res.DraftIndexes)
	}
}

func TestRefine_TimeoutKeepsInput(t *testing.T) {
	r := New(&fakeDispatcher{raw: "late", delay: time.Second}, 30*time.Millisecond)

	res := r.Refine(context.Background(), claims("a", "b"), "de", orchestra.Options{})

	if !res.Degraded || res.Reason != model.ReasonTimeout {
		t.Fatalf("Expected AI_TIMEOUT degradation, got degraded=%v reason=%q", res.Degraded, res.Reason)
	}
	if len(res.Claims) != 2 {
		t.Errorf("Expected the input list untouched, got %d claims", len(res.Claims))
	}
}

func TestRefine_GarbageOutputKeepsInput(t *testing.T) {
	for _, raw := range []string{"no json at all", `{"primaryIndex": 0, "claims": []}`} {
		r := New(&fakeDispatcher{raw: raw}, time.Second)
		res := r.Refine(context.Background(), claims("a"), "de", orchestra.Options{})
		if !res.Degraded || res.Reason != model.ReasonParse {
			t.Errorf("raw %q: expected AI_PARSE degradation, got degraded=%v reason=%q", raw, res.Degraded, res.Reason)
		}
		if len(res.Claims) != 1 {
			t.Errorf("raw %q: expected the input kept, got %d claims", raw, len(res.Claims))
		}
	}
}

func TestRefine_ClampsOutOfRangePrimary(t *testing.T) {
	d := &fakeDispatcher{raw: `{"primaryIndex": 9, "claims": [{"text":"a"},{"text":"b"}], "draftIndexes": []}`}
	r := New(d, time.Second)

	res := r.Refine(context.Background(), claims("a", "b"), "de", orchestra.Options{})

	if res.PrimaryIndex != 1 {
		t.Errorf("Expected the primary clamped to the last index, got %d", res.PrimaryIndex)
	}
}

func TestRefine_ForgottenIndexesBecomeDrafts(t *testing.T) {
	d := &fakeDispatcher{raw: `{"primaryIndex": 0, "claims": [{"text":"a"},{"text":"b"},{"text":"c"}], "draftIndexes": [1, 1, -3, 7]}`}
	r := New(d, time.Second)

	res := r.Refine(context.Background(), claims("a", "b", "c"), "de", orchestra.Options{})

	if len(res.DraftIndexes) != 2 {
		t.Fatalf("Expected 2 drafts after cleanup, got %v", res.DraftIndexes)
	}
	if res.DraftIndexes[0] != 1 || res.DraftIndexes[1] != 2 {
		t.Errorf("Expected drafts [1 2], got %v", res.DraftIndexes)
	}
}
