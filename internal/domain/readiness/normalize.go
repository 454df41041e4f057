package readiness

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

const DefaultEnvironment = "production"

// NormalizeVersionTag lower-cases the tag, turns whitespace runs into "-"
// and drops everything outside [a-z0-9._-].
func NormalizeVersionTag(raw string) string {
	return normalizeToken(raw, func(r rune) bool {
		return isLowerAlnum(r) || r == '.' || r == '_' || r == '-'
	})
}

// NormalizeEnvironment is NormalizeVersionTag restricted to [a-z0-9-];
// an empty result falls back to fallback, then to DefaultEnvironment.
func NormalizeEnvironment(raw string, fallback string) string {
	env := normalizeToken(raw, func(r rune) bool {
		return isLowerAlnum(r) || r == '-'
	})
	if env != "" {
		return env
	}
	if fallback = normalizeToken(fallback, func(r rune) bool { return isLowerAlnum(r) || r == '-' }); fallback != "" {
		return fallback
	}
	return DefaultEnvironment
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeSlug turns titles or loose keys into catalog slugs.
func NormalizeSlug(raw string) string {
	return slug.Make(strings.TrimSpace(raw))
}

func NormalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return "general"
	}
	return category
}

// NormalizeWeight clamps non-positive weights to the default of 1.
func NormalizeWeight(weight int) int {
	if weight <= 0 {
		return 1
	}
	return weight
}

// ParseWeight reads a weight from loosely typed input (JSON numbers, numeric
// strings). Fractions are truncated; anything unusable becomes 1.
func ParseWeight(raw any) int {
	var value float64
	switch v := raw.(type) {
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case float64:
		value = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 1
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 1
		}
		value = parsed
	default:
		return 1
	}

	if math.IsNaN(value) || math.IsInf(value, 0) || value >= math.MaxInt32 {
		return 1
	}
	return NormalizeWeight(int(value))
}

func normalizeToken(raw string, keep func(rune) bool) string {
	fields := strings.Fields(strings.ToLower(raw))
	joined := strings.Join(fields, "-")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLowerAlnum(r rune) bool {
	return r < unicode.MaxASCII && (('a' <= r && r <= 'z') || ('0' <= r && r <= '9'))
}
