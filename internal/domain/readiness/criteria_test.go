package readiness

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseSuccessCriteriaKnownKeysAndExtras(t *testing.T) {
	c := ParseSuccessCriteria(`{"minCoverage":0.9,"maxErrorRate":"0.01","changeReviewRequired":1,"requiredEvidence":["sbom","sign-off"],"owner":"qa"}`)

	if c.MinCoverage == nil || *c.MinCoverage != 0.9 {
		t.Fatalf("MinCoverage = %v", c.MinCoverage)
	}
	if c.MaxErrorRate == nil || *c.MaxErrorRate != 0.01 {
		t.Fatalf("MaxErrorRate = %v", c.MaxErrorRate)
	}
	if !isSet(c.ChangeReviewRequired) {
		t.Fatalf("ChangeReviewRequired = %v, want true", c.ChangeReviewRequired)
	}
	if len(c.RequiredEvidence) != 2 {
		t.Fatalf("RequiredEvidence = %v", c.RequiredEvidence)
	}
	if string(c.Extra["owner"]) != `"qa"` {
		t.Fatalf("Extra = %v", c.Extra)
	}

	out := c.String()
	if !strings.Contains(out, `"owner":"qa"`) || !strings.Contains(out, `"minCoverage":0.9`) {
		t.Fatalf("String() = %s", out)
	}
}

func TestParseSuccessCriteriaCorruptFallsBackToEmpty(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2]", `{"minCoverage":`} {
		c := ParseSuccessCriteria(raw)
		if c.MinCoverage != nil || c.Extra != nil || c.RequiredEvidence != nil {
			t.Fatalf("ParseSuccessCriteria(%q) = %+v, want empty", raw, c)
		}
		if got := EvaluateCriteria(c, GateMetrics{}, ChangeWindow{}).Status; got != GateStatusPass {
			t.Fatalf("empty criteria evaluate = %q, want pass", got)
		}
	}
}

func TestParseGateMetricsKeepsUnusableValuesVerbatim(t *testing.T) {
	m := ParseGateMetrics(`{"coverage":"n/a","errorRate":null,"freezeWindowBypassed":"yes","evidence":["sbom"],"build":"1234"}`)

	if m.Coverage != nil {
		t.Fatalf("Coverage = %v, want nil", *m.Coverage)
	}
	if m.ErrorRate != nil {
		t.Fatalf("ErrorRate = %v, want nil", *m.ErrorRate)
	}
	if m.FreezeWindowBypassed != nil {
		t.Fatalf("FreezeWindowBypassed = %v, want nil for non-bool", *m.FreezeWindowBypassed)
	}
	if string(m.Extra["coverage"]) != `"n/a"` || string(m.Extra["freezeWindowBypassed"]) != `"yes"` {
		t.Fatalf("Extra = %v", m.Extra)
	}

	var roundTrip map[string]any
	if err := json.Unmarshal([]byte(m.String()), &roundTrip); err != nil {
		t.Fatalf("unmarshal String(): %v", err)
	}
	if roundTrip["build"] != "1234" || roundTrip["coverage"] != "n/a" {
		t.Fatalf("String() round trip = %v", roundTrip)
	}
}

func TestRunMetadataWithEvaluationPreservesKeys(t *testing.T) {
	m := ParseRunMetadata(`{"requiredGates":["a"],"ticket":"REL-42","readinessScore":10}`)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next := m.WithEvaluation(75, at)
	if *next.ReadinessScore != 75 || !next.EvaluatedAt.Equal(at) {
		t.Fatalf("WithEvaluation() = %+v", next)
	}
	if *m.ReadinessScore != 10 {
		t.Fatalf("original metadata mutated: %d", *m.ReadinessScore)
	}

	parsed := ParseRunMetadata(next.String())
	if string(parsed.Extra["ticket"]) != `"REL-42"` {
		t.Fatalf("ticket lost: %v", parsed.Extra)
	}
	if len(parsed.RequiredGates) != 1 || parsed.RequiredGates[0] != "a" {
		t.Fatalf("RequiredGates = %v", parsed.RequiredGates)
	}
	if parsed.EvaluatedAt == nil || !parsed.EvaluatedAt.Equal(at) {
		t.Fatalf("EvaluatedAt = %v", parsed.EvaluatedAt)
	}
}

func TestChangeReviewCompletedStringTruthiness(t *testing.T) {
	cases := map[string]bool{
		`{"changeReviewCompleted":true}`:    true,
		`{"changeReviewCompleted":"yes"}`:   true,
		`{"changeReviewCompleted":1}`:       true,
		`{"changeReviewCompleted":"false"}`: false,
		`{"changeReviewCompleted":"0"}`:     false,
		`{"changeReviewCompleted":""}`:      false,
	}
	for raw, want := range cases {
		got := ParseGateMetrics(raw).ChangeReviewCompleted
		if got == nil || *got != want {
			t.Fatalf("ParseGateMetrics(%s).ChangeReviewCompleted = %v, want %v", raw, got, want)
		}
	}
}
