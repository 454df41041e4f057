package readiness

import (
	"encoding/json"
	"testing"
)

func TestNormalizeVersionTag(t *testing.T) {
	testCases := map[string]string{
		" V1.2.3 ":         "v1.2.3",
		"v2.0  RC 1":       "v2.0-rc-1",
		"release/2024_q1!": "release2024_q1",
		"   ":              "",
	}
	for in, want := range testCases {
		if got := NormalizeVersionTag(in); got != want {
			t.Fatalf("NormalizeVersionTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeEnvironment(t *testing.T) {
	if got := NormalizeEnvironment("", ""); got != "production" {
		t.Fatalf("NormalizeEnvironment(empty) = %q", got)
	}
	if got := NormalizeEnvironment("  ", "Staging"); got != "staging" {
		t.Fatalf("NormalizeEnvironment(fallback) = %q", got)
	}
	if got := NormalizeEnvironment("EU West_1", ""); got != "eu-west1" {
		t.Fatalf("NormalizeEnvironment() = %q, want eu-west1", got)
	}
}

func TestNormalizeSlugAndCategory(t *testing.T) {
	if got := NormalizeSlug("Unit Tests Pass"); got != "unit-tests-pass" {
		t.Fatalf("NormalizeSlug() = %q", got)
	}
	if got := NormalizeCategory(""); got != "general" {
		t.Fatalf("NormalizeCategory(empty) = %q", got)
	}
	if got := NormalizeCategory(" Security "); got != "security" {
		t.Fatalf("NormalizeCategory() = %q", got)
	}
}

func TestParseWeight(t *testing.T) {
	testCases := []struct {
		in   any
		want int
	}{
		{in: 3, want: 3},
		{in: 2.9, want: 2},
		{in: "5", want: 5},
		{in: " 4 ", want: 4},
		{in: json.Number("7"), want: 7},
		{in: "heavy", want: 1},
		{in: 0, want: 1},
		{in: -2, want: 1},
		{in: nil, want: 1},
		{in: true, want: 1},
	}
	for _, tc := range testCases {
		if got := ParseWeight(tc.in); got != tc.want {
			t.Fatalf("ParseWeight(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
