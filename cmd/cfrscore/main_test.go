package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/cfrscore/internal/llm"
	"github.com/dshills/cfrscore/internal/schema"
)

// run executes the CLI with args inside a scratch working directory so no
// .env, config file or history database leaks between tests.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitGeneric
}

// testdataDir is resolved once, before any test changes directory.
var testdataDir = func() string {
	p, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	return p
}()

func fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(testdataDir, name)
}

func TestScore_JSON(t *testing.T) {
	out, err := run(t, t.TempDir(), "score", fixture(t, "assessment.json"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var res schema.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	ev := res.Evaluation
	if ev.OverallScore != 76 || ev.OverallRating != schema.RatingFair || ev.SuggestionImpactFactor != 0.84 {
		t.Errorf("evaluation = %d/%s factor %v, want 76/Fair 0.84", ev.OverallScore, ev.OverallRating, ev.SuggestionImpactFactor)
	}
	if res.Heading != "Ministry of Rural Development Department" || res.Document != "assessment.json" {
		t.Errorf("result header = %q / %q", res.Heading, res.Document)
	}
	if res.Meta.Tool != "cfrscore" || res.Meta.Source != "direct" {
		t.Errorf("meta = %+v", res.Meta)
	}
}

func TestScore_Formats(t *testing.T) {
	for format, want := range map[string]string{
		"md":   "**Overall:** 76/100 (Fair)",
		"html": "<h2>CFR Evaluation: Ministry of Rural Development Department</h2>",
		"text": "Overall: 76/100 (Fair)",
	} {
		t.Run(format, func(t *testing.T) {
			out, err := run(t, t.TempDir(), "score", "--format", format, fixture(t, "assessment.json"))
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		})
	}
}

func TestScore_OutFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.json")
	out, err := run(t, dir, "score", "--out", dest, fixture(t, "assessment.json"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when --out is set, got %q", out)
	}
	if b, err := os.ReadFile(dest); err != nil || !bytes.Contains(b, []byte(`"overall_score": 76`)) {
		t.Errorf("report file: %v\n%s", err, b)
	}
}

func TestScore_FailBelow(t *testing.T) {
	cases := []struct {
		threshold string
		want      int
	}{
		{"Fair", 0},
		{"good", exitBelow},
		{"very_good", exitBelow},
		{"superb", exitInput},
	}
	for _, c := range cases {
		t.Run(c.threshold, func(t *testing.T) {
			_, err := run(t, t.TempDir(), "score", "--fail-below", c.threshold, fixture(t, "assessment.json"))
			if got := exitCode(err); got != c.want {
				t.Errorf("exit code = %d, want %d (err %v)", got, c.want, err)
			}
		})
	}
}

func TestScore_FallbackOnEmptySections(t *testing.T) {
	out, err := run(t, t.TempDir(), "score", fixture(t, "empty.yaml"))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var res schema.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Evaluation.IsFallback() || res.Evaluation.OverallScore != 70 {
		t.Errorf("expected fallback report, got %+v", res.Evaluation)
	}
}

func TestScore_InputErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "score", filepath.Join(dir, "missing.json")); exitCode(err) != exitInput {
		t.Errorf("missing file: exit %d, want %d", exitCode(err), exitInput)
	}
	if _, err := run(t, dir, "score", "--format", "pdf", fixture(t, "assessment.json")); exitCode(err) != exitInput {
		t.Errorf("bad format: exit %d, want %d", exitCode(err), exitInput)
	}
	if _, err := run(t, dir, "--config", filepath.Join(dir, "nope.yaml"), "score", fixture(t, "assessment.json")); exitCode(err) != exitInput {
		t.Errorf("missing config: exit %d, want %d", exitCode(err), exitInput)
	}
}

func TestConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".cfrscore.yaml"), []byte("output:\n  format: text\n  fail_below: Excellent\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, dir, "score", fixture(t, "assessment.json"))
	if exitCode(err) != exitBelow {
		t.Errorf("config fail_below: exit %d, want %d", exitCode(err), exitBelow)
	}
	if !strings.HasPrefix(out, "Ministry of Rural Development Department\n") {
		t.Errorf("config format not applied:\n%s", out)
	}
}

func TestSaveAndHistory(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "score", "--save", fixture(t, "assessment.json")); err != nil {
		t.Fatalf("score --save: %v", err)
	}
	out, err := run(t, dir, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "assessment.json") || !strings.Contains(out, "76") {
		t.Errorf("history list:\n%s", out)
	}
	out, err = run(t, dir, "history", "show", "1", "--format", "md")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, "**Overall:** 76/100 (Fair)") {
		t.Errorf("history show:\n%s", out)
	}
	if _, err := run(t, dir, "history", "show", "99"); exitCode(err) != exitInput {
		t.Errorf("unknown id: exit %d, want %d", exitCode(err), exitInput)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"validate", "objectives", "9"}, "100 Excellent\n"},
		{[]string{"validate", "objectives", "12"}, "80 Good\n"},
		{[]string{"validate", "outcome", "Process"}, "70 Fair\n"},
		{[]string{"validate", "outcome", "vibes"}, "60 Poor\n"},
		{[]string{"validate", "trend", "1,2,,4"}, "75 Fair\n"},
		{[]string{"validate", "trend", "1,null,-,n/a"}, "60 Poor\n"},
		{[]string{"validate", "trend", "10,20,30"}, "100 Excellent\n"},
	}
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			out, err := run(t, t.TempDir(), c.args...)
			if err != nil {
				t.Fatalf("%v: %v", c.args, err)
			}
			if out != c.want {
				t.Errorf("output = %q, want %q", out, c.want)
			}
		})
	}
	if _, err := run(t, t.TempDir(), "validate", "trend", "1,x"); exitCode(err) != exitInput {
		t.Errorf("bad trend value: exit %d, want %d", exitCode(err), exitInput)
	}
	if _, err := run(t, t.TempDir(), "validate", "objectives", "nine"); exitCode(err) != exitInput {
		t.Errorf("bad count: exit %d, want %d", exitCode(err), exitInput)
	}
}

func TestParseTrend(t *testing.T) {
	points, err := parseTrend(" 5, ,7.5 ")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 || points[1] != nil || *points[2] != 7.5 {
		t.Errorf("parseTrend = %v", points)
	}
	if points, _ := parseTrend(""); points != nil {
		t.Errorf("empty input should give no points, got %v", points)
	}
}

// cliMock answers Analyze's prompts by content; it is safe for concurrent use.
type cliMock struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (m *cliMock) Complete(_ context.Context, _, user string, _ int, _ float64) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	switch {
	case strings.Contains(user, "ministry or department"):
		return "Ministry of Jal Shakti Department", nil
	case strings.Contains(user, "Summarize this"):
		return "Commits to water security.\nMaps aquifers.", nil
	case strings.Contains(user, "constructive suggestions"):
		return "1. Add trend values.\n2. State dependencies on other departments.", nil
	default:
		var parts []string
		for _, sec := range schema.Sections() {
			parts = append(parts, fmt.Sprintf("%q: {\"score\": 80, \"justification\": \"Partial.\"}", string(sec)))
		}
		return "{\"sections\": {" + strings.Join(parts, ", ") + "}}", nil
	}
}

func installMock(t *testing.T, m *cliMock) {
	t.Helper()
	orig := llm.NewProvider
	llm.NewProvider = func(_, _ string) (llm.Provider, error) { return m, nil }
	t.Cleanup(func() { llm.NewProvider = orig })
}

func TestAnalyze_Mock(t *testing.T) {
	m := &cliMock{}
	installMock(t, m)

	out, err := run(t, t.TempDir(), "analyze", "--profile", "strict", fixture(t, "cfr.md"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var res schema.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if m.calls != 4 {
		t.Errorf("provider calls = %d, want 4", m.calls)
	}
	if res.Heading != "Ministry of Jal Shakti Department" || len(res.Summary) != 2 || len(res.Suggestions) != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Meta.Profile != "strict" || res.Meta.DocHash == "" || res.Meta.Model != "anthropic/claude-sonnet-4-6" {
		t.Errorf("meta = %+v", res.Meta)
	}
	// Two short suggestions: detail ~0.95, quantity 0.8, factor 0.86.
	if res.Evaluation.OverallScore != 69 || res.Evaluation.OverallRating != schema.RatingPoor {
		t.Errorf("overall = %d/%s", res.Evaluation.OverallScore, res.Evaluation.OverallRating)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	installMock(t, &cliMock{fail: errors.New("quota exceeded")})
	dir := t.TempDir()

	if _, err := run(t, dir, "analyze", fixture(t, "cfr.md")); exitCode(err) != exitProvider {
		t.Errorf("provider failure: exit %d, want %d (err %v)", exitCode(err), exitProvider, err)
	}
	if _, err := run(t, dir, "analyze", filepath.Join(dir, "missing.md")); exitCode(err) != exitInput {
		t.Errorf("missing document: exit %d, want %d", exitCode(err), exitInput)
	}
	if _, err := run(t, dir, "analyze", "--profile", "bogus", fixture(t, "cfr.md")); exitCode(err) != exitInput {
		t.Errorf("unknown profile: exit %d, want %d", exitCode(err), exitInput)
	}
}
