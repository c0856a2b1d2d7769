//go:build integration

package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/dshills/cfrscore/internal/schema"
)

// TestIntegration_AnalyzeLive runs analyze against a real provider. It needs
// ANTHROPIC_API_KEY and is skipped otherwise.
func TestIntegration_AnalyzeLive(t *testing.T) {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		t.Skip("ANTHROPIC_API_KEY not set")
	}
	out, err := run(t, t.TempDir(), "analyze", "--timeout", "3m", fixture(t, "cfr.md"))
	if err != nil && exitCode(err) != exitBelow {
		t.Fatalf("analyze: %v", err)
	}
	var res schema.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Heading == "" {
		t.Error("expected a heading from the model")
	}
	if msgs := schema.ValidateReport(&res.Evaluation); len(msgs) != 0 {
		t.Errorf("live report fails schema: %v", msgs)
	}
	ev := res.Evaluation
	if ev.SuggestionImpactFactor < 0.8 || ev.SuggestionImpactFactor > 1.0 {
		t.Errorf("factor %v out of range", ev.SuggestionImpactFactor)
	}
	t.Logf("overall %d/%s, source %s", ev.OverallScore, ev.OverallRating, res.Meta.Source)
}
