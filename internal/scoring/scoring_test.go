package scoring

import (
	"math"
	"testing"

	"github.com/dshills/cfrscore/internal/schema"
)

func f64(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   *schema.SectionAssessment
		want int
	}{
		{"nil record", nil, 60},
		{"nil score", &schema.SectionAssessment{Justification: "x"}, 60},
		{"in range", schema.NewAssessment(85, ""), 85},
		{"above range", schema.NewAssessment(150, ""), 100},
		{"below range", schema.NewAssessment(30, ""), 60},
		{"negative", schema.NewAssessment(-5, ""), 60},
		{"exact floor", schema.NewAssessment(60, ""), 60},
		{"exact ceiling", schema.NewAssessment(100, ""), 100},
		{"fraction down", schema.NewAssessment(85.4, ""), 85},
		{"half to even", schema.NewAssessment(60.5, ""), 60},
		{"half to even up", schema.NewAssessment(61.5, ""), 62},
		{"NaN", &schema.SectionAssessment{Score: f64(math.NaN())}, 60},
		{"+Inf", &schema.SectionAssessment{Score: f64(math.Inf(1))}, 100},
		{"-Inf", &schema.SectionAssessment{Score: f64(math.Inf(-1))}, 60},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%s) = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestNormalize_Range(t *testing.T) {
	for raw := -50.0; raw <= 200; raw++ {
		got := Normalize(schema.NewAssessment(raw, ""))
		if got < MinScore || got > MaxScore {
			t.Fatalf("Normalize(%v) = %d, outside [60,100]", raw, got)
		}
		if (got == 100) != (raw >= 100) {
			t.Errorf("Normalize(%v) = %d: ceiling reached iff raw >= 100", raw, got)
		}
		if raw <= 60 && got != 60 {
			t.Errorf("Normalize(%v) = %d, want 60", raw, got)
		}
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		score int
		want  schema.Rating
	}{
		{100, schema.RatingExcellent},
		{120, schema.RatingExcellent},
		{99, schema.RatingVeryGood},
		{90, schema.RatingVeryGood},
		{89, schema.RatingGood},
		{80, schema.RatingGood},
		{79, schema.RatingFair},
		{70, schema.RatingFair},
		{69, schema.RatingPoor},
		{60, schema.RatingPoor},
		{0, schema.RatingPoor},
	}
	for _, c := range cases {
		if got := Label(c.score); got != c.want {
			t.Errorf("Label(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestLabelFloat_Fractional(t *testing.T) {
	if got := LabelFloat(89.6); got != schema.RatingGood {
		t.Errorf("LabelFloat(89.6) = %q, want Good", got)
	}
	if got := LabelFloat(99.99); got != schema.RatingVeryGood {
		t.Errorf("LabelFloat(99.99) = %q, want Very Good", got)
	}
}

func TestRatingOrdinal(t *testing.T) {
	ratings := []schema.Rating{
		schema.RatingPoor, schema.RatingFair, schema.RatingGood,
		schema.RatingVeryGood, schema.RatingExcellent,
	}
	for i, r := range ratings {
		if got := RatingOrdinal(r); got != i {
			t.Errorf("RatingOrdinal(%q) = %d, want %d", r, got, i)
		}
	}
	if got := RatingOrdinal("Superb"); got != -1 {
		t.Errorf("RatingOrdinal(unknown) = %d, want -1", got)
	}
}
