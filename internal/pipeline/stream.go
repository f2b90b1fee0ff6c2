package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buergerwerk/klartext/internal/cluster"
	"github.com/buergerwerk/klartext/internal/input"
	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/taxonomy"
)

// Question asks the submitter for a field the extraction left open.
type Question struct {
	ClaimIndex int    `json:"claimIndex"`
	Field      string `json:"field"`
	Prompt     string `json:"prompt"`
}

// Knot is a short digest of one representative claim.
type Knot struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// StreamDone is the payload of the terminal done event.
type StreamDone struct {
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
	Claims   int    `json:"claims"`
}

// StreamError is the payload of the terminal error event.
type StreamError struct {
	Code  string `json:"code"`
	Trace string `json:"trace"`
}

// AnalyzeStream runs the abbreviated pipeline (no refinement, no
// cache) and delivers partial results incrementally via emit. The
// stream never surfaces a hard failure: every terminal state is a
// done or error event.
func (a *Analyzer) AnalyzeStream(ctx context.Context, req AnalyzeRequest, emit EmitFunc) {
	if emit == nil {
		emit = func(Event) {}
	}

	final, err := a.runStream(ctx, req, emit)
	if err != nil {
		code := model.ErrorKindInternal
		switch {
		case errors.Is(err, model.ErrInvalidInput):
			code = model.ErrorKindInvalidInput
		case errors.Is(err, model.ErrNoProviderOutput):
			code = model.ErrorKindNoProviderOutput
		}
		emit(Event{Name: "error", Payload: StreamError{Code: code, Trace: req.Trace}})
		return
	}

	result := final.Result
	emit(Event{Name: "done", Payload: StreamDone{
		Degraded: result.Degraded,
		Reason:   result.Reason,
		Claims:   len(result.Claims),
	}})
}

func (a *Analyzer) runStream(ctx context.Context, req AnalyzeRequest, emit EmitFunc) (Context, error) {
	if err := validate(&req); err != nil {
		return Context{}, err
	}

	prep := prepared(req)
	if strings.TrimSpace(prep.Text) == "" {
		return Context{}, fmt.Errorf("%w: no analyzable text", model.ErrInvalidInput)
	}

	steps := []Step{
		outlineStep(),
		progressStep(),
		a.extractStep(req),
		streamAssembleStep(a.simThreshold, req.Locale),
	}

	return Run(ctx, prep, emit, steps)
}

// progressStep announces which outline sections are being processed.
func progressStep() Step {
	return Step{
		Name: "progress",
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			sections, _ := c.Data["outline"].([]model.OutlineSection)
			ids := make([]string, 0, len(sections))
			for _, s := range sections {
				ids = append(ids, s.ID)
			}
			emit(Event{Name: "progress", Payload: map[string]any{"ids": ids}})
			return Patch{}, nil
		},
	}
}

// streamAssembleStep clusters the claims and emits the questions and
// knots events derived from them.
func streamAssembleStep(simThreshold float64, locale string) Step {
	return Step{
		Name: "stream_assemble",
		When: func(c Context) bool { return c.Result != nil },
		Run: func(ctx context.Context, c Context, emit EmitFunc) (Patch, error) {
			result := *c.Result

			clusters, statements := cluster.Build(result.Claims, simThreshold)
			result.Clusters = clusters
			result.Statements = statements
			result.Frames = buildFrames(statements)

			emit(Event{Name: "questions", Payload: DeriveQuestions(result.Claims, locale)})

			knots := make([]Knot, 0, len(statements))
			for i, s := range statements {
				knots = append(knots, Knot{
					ID:       fmt.Sprintf("k%d", i+1),
					Text:     truncate(s.Representative.Text, 80),
					Category: string(taxonomy.Classify(s.Representative.Text)),
				})
			}
			emit(Event{Name: "knots", Payload: knots})

			return Patch{Result: &result}, nil
		},
	}
}

var questionPrompts = map[string]map[string]string{
	"de": {
		"zeitraum":       "Für welchen Zeitraum gilt diese Aussage?",
		"ort":            "Auf welchen Ort bezieht sich diese Aussage?",
		"zustaendigkeit": "Welche Ebene ist zuständig (EU, Bund, Land, Kommune)?",
		"messgroesse":    "Woran ließe sich diese Aussage messen?",
	},
	"en": {
		"zeitraum":       "What time period does this claim cover?",
		"ort":            "What place does this claim refer to?",
		"zustaendigkeit": "Which level of government is responsible (EU, national, state, municipal)?",
		"messgroesse":    "What quantity could this claim be measured by?",
	},
}

// DeriveQuestions turns fields left as "-" into follow-up questions
// for the submitter.
func DeriveQuestions(claims []model.AtomicClaim, locale string) []Question {
	prompts, ok := questionPrompts[strings.ToLower(locale)]
	if !ok {
		prompts = questionPrompts["de"]
	}

	questions := []Question{}
	for i, c := range claims {
		fields := map[string]string{
			"zeitraum":       c.Zeitraum,
			"ort":            c.Ort,
			"zustaendigkeit": c.Zustaendigkeit,
			"messgroesse":    c.Messgroesse,
		}
		for _, field := range [...]string{"zeitraum", "ort", "zustaendigkeit", "messgroesse"} {
			if fields[field] == model.FieldEmpty {
				questions = append(questions, Question{
					ClaimIndex: i,
					Field:      field,
					Prompt:     prompts[field],
				})
			}
		}
	}
	return questions
}

// prepared builds the initial stream context. Shared validation has
// already clamped the request.
func prepared(req AnalyzeRequest) Context {
	p := input.Prepare(req.Text, req.Locale)
	return Context{
		Text: p.Text,
		Lang: p.Lang,
		URLs: p.URLs,
		Data: map[string]any{},
	}
}
