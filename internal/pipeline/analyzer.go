package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/buergerwerk/klartext/internal/cache"
	"github.com/buergerwerk/klartext/internal/cluster"
	"github.com/buergerwerk/klartext/internal/extract"
	"github.com/buergerwerk/klartext/internal/input"
	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/orchestra"
	"github.com/buergerwerk/klartext/internal/refine"
	"github.com/buergerwerk/klartext/internal/taxonomy"
)

// Input limits, enforced before any provider is contacted.
const (
	MaxTextLen   = 8000
	MaxMaxClaims = 20
	DefClaims    = 8
)

// AnalyzeRequest is one analysis job.
type AnalyzeRequest struct {
	Text      string
	Locale    string // "de" or "en"
	MaxClaims int    // 1-20, 0 = default
	UserID    string // telemetry attribution only
	Trace     string // correlation id, assigned by the caller
}

// Analyzer wires cache, extraction, refinement, clustering and
// taxonomy into the full pipeline. Construct once per process and
// inject; there is no package-level state.
type Analyzer struct {
	cache        *cache.ResponseCache // nil disables caching
	extractor    *extract.Extractor
	refiner      *refine.Refiner
	simThreshold float64
	modelVersion string
}

// NewAnalyzer creates an analyzer. respCache may be nil.
func NewAnalyzer(respCache *cache.ResponseCache, ex *extract.Extractor, rf *refine.Refiner, simThreshold float64, modelVersion string) *Analyzer {
	if simThreshold <= 0 || simThreshold >= 1 {
		simThreshold = cluster.DefaultThreshold
	}
	return &Analyzer{
		cache:        respCache,
		extractor:    ex,
		refiner:      rf,
		simThreshold: simThreshold,
		modelVersion: modelVersion,
	}
}

// validate normalizes request bounds and rejects invalid input.
func validate(req *AnalyzeRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: empty text", model.ErrInvalidInput)
	}
	if len(req.Text) > MaxTextLen {
		return fmt.Errorf("%w: text exceeds %d characters", model.ErrInvalidInput, MaxTextLen)
	}
	if req.MaxClaims == 0 {
		req.MaxClaims = DefClaims
	}
	if req.MaxClaims < 1 || req.MaxClaims > MaxMaxClaims {
		return fmt.Errorf("%w: maxClaims out of range 1-%d", model.ErrInvalidInput, MaxMaxClaims)
	}
	if req.Locale == "" {
		req.Locale = "de"
	}
	return nil
}

// Analyze runs the full pipeline and returns the structured result.
// The only hard failures are invalid input and the no-provider-output
// condition; every other provider problem degrades inside the stages.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest, emit EmitFunc) (*model.AnalysisResult, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	prep := input.Prepare(req.Text, req.Locale)
	if strings.TrimSpace(prep.Text) == "" {
		return nil, fmt.Errorf("%w: no analyzable text", model.ErrInvalidInput)
	}

	initial := Context{
		Text: prep.Text,
		Lang: prep.Lang,
		URLs: prep.URLs,
		Data: map[string]any{},
	}

	final, err := Run(ctx, initial, emit, a.steps(req))
	if err != nil {
		return nil, err
	}
	if final.Result == nil {
		return nil, fmt.Errorf("pipeline finished without a result")
	}

	final.Result.Meta.Trace = req.Trace
	return final.Result, nil
}

// Refine exposes the refinement stage directly for the refinement
// endpoint. Claims are normalized on the way in so callers cannot
// smuggle nil list fields past the stage.
func (a *Analyzer) Refine(ctx context.Context, claims []model.AtomicClaim, locale, userID string) model.RefinementResult {
	for i := range claims {
		claims[i].Normalize()
	}
	return a.refiner.Refine(ctx, claims, locale, orchestra.Options{UserID: userID})
}

// steps builds the full step list for one request.
func (a *Analyzer) steps(req AnalyzeRequest) []Step {
	return []Step{
		a.cacheLookupStep(),
		outlineStep(),
		a.extractStep(req),
		a.refineStep(req),
		a.assembleStep(),
		a.cacheStoreStep(),
	}
}

func (a *Analyzer) cacheLookupStep() Step {
	return Step{
		Name: "cache_lookup",
		When: func(c Context) bool { return a.cache != nil },
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			key := cache.Key(c.Text, a.modelVersion)
			if cached, ok := a.cache.Get(key); ok {
				result := *cached // shallow copy, the trace must not leak between requests
				return Patch{
					Result: &result,
					Data:   map[string]any{"cache_key": key, "cache_hit": true},
				}, nil
			}
			return Patch{
				Data: map[string]any{"cache_key": key, "cache_hit": false},
			}, nil
		},
	}
}

func outlineStep() Step {
	return Step{
		Name: "outline",
		When: func(c Context) bool { return c.Result == nil },
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			sections := Outline(c.Text)
			emit(Event{Name: "outline", Payload: sections})
			return Patch{Data: map[string]any{"outline": sections}}, nil
		},
	}
}

func (a *Analyzer) extractStep(req AnalyzeRequest) Step {
	return Step{
		Name: "extract",
		When: func(c Context) bool { return c.Result == nil },
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			res := a.extractor.Extract(ctx, c.Text, req.MaxClaims, c.Lang, orchestra.Options{
				UserID: req.UserID,
			})
			if len(res.Claims) == 0 {
				// The fallback splitter found nothing sentence-like
				// either; this is the pipeline's one hard failure.
				return Patch{}, fmt.Errorf("%w: extraction yielded no claims (%s)", model.ErrNoProviderOutput, res.Reason)
			}

			emit(Event{Name: "claims", Payload: res.Claims})

			return Patch{
				Result: &model.AnalysisResult{
					Claims:   res.Claims,
					Degraded: res.Degraded,
					Reason:   res.Reason,
					Meta:     model.Meta{Model: res.Model},
				},
				Data: map[string]any{"extract_degraded": res.Degraded},
			}, nil
		},
	}
}

func (a *Analyzer) refineStep(req AnalyzeRequest) Step {
	return Step{
		Name: "refine",
		When: func(c Context) bool {
			hit, _ := c.Data["cache_hit"].(bool)
			return !hit && c.Result != nil && len(c.Result.Claims) > 1
		},
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			res := a.refiner.Refine(ctx, c.Result.Claims, c.Lang, orchestra.Options{
				UserID: req.UserID,
			})

			result := *c.Result
			result.Claims = res.Claims
			if res.Degraded && !result.Degraded {
				result.Degraded = true
				result.Reason = res.Reason
			}

			return Patch{
				Result: &result,
				Data: map[string]any{
					"primary_index": res.PrimaryIndex,
					"draft_indexes": res.DraftIndexes,
				},
			}, nil
		},
	}
}

// assembleStep runs the pure local stages: clustering, taxonomy
// framing and outline attachment.
func (a *Analyzer) assembleStep() Step {
	return Step{
		Name: "assemble",
		When: func(c Context) bool {
			hit, _ := c.Data["cache_hit"].(bool)
			return !hit && c.Result != nil
		},
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			result := *c.Result

			clusters, statements := cluster.Build(result.Claims, a.simThreshold)
			result.Clusters = clusters
			result.Statements = statements
			result.Frames = buildFrames(statements)
			if sections, ok := c.Data["outline"].([]model.OutlineSection); ok {
				result.Outline = sections
			} else {
				result.Outline = []model.OutlineSection{}
			}

			return Patch{Result: &result}, nil
		},
	}
}

func (a *Analyzer) cacheStoreStep() Step {
	return Step{
		Name: "cache_store",
		When: func(c Context) bool {
			hit, _ := c.Data["cache_hit"].(bool)
			// Degraded results stay out of the cache: a transient
			// provider failure must not be replayed for the TTL.
			return a.cache != nil && !hit && c.Result != nil && !c.Result.Degraded
		},
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			key, _ := c.Data["cache_key"].(string)
			if key != "" {
				stored := *c.Result
				stored.Meta.Trace = ""
				a.cache.Put(key, &stored)
			}
			return Patch{}, nil
		},
	}
}

// buildFrames buckets representative claims by discourse category.
func buildFrames(statements []model.Statement) model.Frames {
	frames := model.Frames{
		Facts:     []model.AtomicClaim{},
		Policies:  []model.AtomicClaim{},
		Values:    []model.AtomicClaim{},
		Concerns:  []model.AtomicClaim{},
		Questions: []model.AtomicClaim{},
	}
	for _, s := range statements {
		switch taxonomy.Classify(s.Representative.Text) {
		case taxonomy.Policy:
			frames.Policies = append(frames.Policies, s.Representative)
		case taxonomy.Value:
			frames.Values = append(frames.Values, s.Representative)
		case taxonomy.Concern:
			frames.Concerns = append(frames.Concerns, s.Representative)
		case taxonomy.Question:
			frames.Questions = append(frames.Questions, s.Representative)
		default:
			frames.Facts = append(frames.Facts, s.Representative)
		}
	}
	return frames
}

// Outline splits the prepared text into display sections: paragraphs
// first, single block as one section.
func Outline(text string) []model.OutlineSection {
	paragraphs := strings.Split(text, "\n")
	sections := []model.OutlineSection{}
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sections = append(sections, model.OutlineSection{
			ID:      fmt.Sprintf("s%d", len(sections)+1),
			Excerpt: truncate(p, 120),
		})
	}
	return sections
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
