package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/cfrscore/internal/schema"
)

var (
	// ErrNoSections is returned when the input names no rubric section.
	ErrNoSections = errors.New("scoring: no rubric sections in input")
	// ErrInvariant is returned when a computed value leaves its valid range.
	ErrInvariant = errors.New("scoring: value out of range")
)

// Evaluation stages reported by EvaluationError.
const (
	StageNormalize = "normalize"
	StageAnalyze   = "analyze"
	StageAdjust    = "adjust"
	StageAggregate = "aggregate"
	StageVerify    = "verify"
	StagePanic     = "panic"
)

// EvaluationError records which pipeline stage failed.
type EvaluationError struct {
	Stage string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("scoring: %s: %v", e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// FallbackScore is the score of every section in the fallback report.
const FallbackScore = 70

// Fallback returns the canned report used whenever evaluation fails: overall
// 70/Fair, factor 1.0, and every section at 70/Fair with the automatic
// justification. It carries no original scores.
func Fallback() schema.Report {
	sections := make(map[schema.Section]*schema.AdjustedSection, len(schema.Sections()))
	for _, sec := range schema.Sections() {
		sections[sec] = &schema.AdjustedSection{
			Score:         FallbackScore,
			Rating:        schema.RatingFair,
			Justification: schema.FallbackJustification,
		}
	}
	return schema.Report{
		OverallScore:           FallbackScore,
		OverallRating:          schema.RatingFair,
		SuggestionImpactFactor: 1.0,
		SectionScores:          sections,
	}
}

// OrFallback returns r, or the fallback report when err is non-nil.
func OrFallback(r schema.Report, err error) schema.Report {
	if err != nil {
		return Fallback()
	}
	return r
}

// Evaluate scores raw section assessments and applies the suggestion penalty.
// It never fails: any internal error yields the fallback report.
func Evaluate(raw map[schema.Section]*schema.SectionAssessment, suggestions []schema.Suggestion) schema.Report {
	return OrFallback(TryEvaluate(raw, suggestions))
}

// analyzeFactor computes the suggestion factor inside TryEvaluate. Tests
// replace it to reach the factor guard and panic recovery.
var analyzeFactor = AnalyzeSuggestions

// TryEvaluate is Evaluate with the failure path exposed. Errors are
// *EvaluationError values; a panic anywhere in the pipeline is recovered and
// reported with StagePanic.
func TryEvaluate(raw map[schema.Section]*schema.SectionAssessment, suggestions []schema.Suggestion) (report schema.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = schema.Report{}
			err = &EvaluationError{Stage: StagePanic, Err: fmt.Errorf("%v", r)}
		}
	}()

	base := make(map[schema.Section]*schema.SectionAssessment, len(raw))
	original := make(map[schema.Section]int, len(raw))
	for sec, a := range raw {
		if !sec.Valid() {
			continue
		}
		score := Normalize(a)
		just := DefaultJustification
		if a != nil && a.Justification != "" {
			just = a.Justification
		}
		base[sec] = schema.NewAssessment(float64(score), just)
		original[sec] = score
	}
	if len(base) == 0 {
		return schema.Report{}, &EvaluationError{Stage: StageNormalize, Err: ErrNoSections}
	}

	factor := analyzeFactor(suggestions)
	if math.IsNaN(factor) || factor < minFactor || factor > 1.0 {
		return schema.Report{}, &EvaluationError{Stage: StageAnalyze, Err: fmt.Errorf("%w: factor %v", ErrInvariant, factor)}
	}

	adjusted := Adjust(base, factor)
	overall, rating := Aggregate(adjusted)

	report = schema.Report{
		OverallScore:           overall,
		OverallRating:          rating,
		SuggestionImpactFactor: math.Round(factor*100) / 100,
		SectionScores:          adjusted,
		OriginalScores:         original,
	}
	if err := verify(&report); err != nil {
		return schema.Report{}, err
	}
	return report, nil
}

// verify checks the range invariants of a computed report. The overall score
// may legitimately fall below the floor when sections are missing, so only
// [0, MaxScore] is enforced for it.
func verify(r *schema.Report) error {
	fail := func(stage, format string, args ...any) error {
		return &EvaluationError{Stage: stage, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)}
	}
	for sec, adj := range r.SectionScores {
		if !adj.Scored() {
			return fail(StageAdjust, "section %s was not scored", sec)
		}
		if adj.Score < MinScore || adj.Score > MaxScore {
			return fail(StageAdjust, "section %s score %d", sec, adj.Score)
		}
	}
	for sec, s := range r.OriginalScores {
		if s < MinScore || s > MaxScore {
			return fail(StageNormalize, "section %s original score %d", sec, s)
		}
	}
	if r.OverallScore < 0 || r.OverallScore > MaxScore {
		return fail(StageAggregate, "overall score %d", r.OverallScore)
	}
	return nil
}
