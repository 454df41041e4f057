package readiness

import (
	"encoding/json"
	"time"
)

// RunMetadata is the free-form metadata attached to a run. The engine owns
// the typed keys; callers may attach anything else.
type RunMetadata struct {
	RequiredGates  []string
	Thresholds     map[string]float64
	ReadinessScore *int
	EvaluatedAt    *time.Time

	Extra map[string]json.RawMessage
}

func ParseRunMetadata(raw string) RunMetadata {
	var m RunMetadata
	_ = m.UnmarshalJSON([]byte(raw))
	return m
}

func (m *RunMetadata) UnmarshalJSON(data []byte) error {
	obj := decodeObject(data)
	*m = RunMetadata{
		RequiredGates: obj.stringList("requiredGates"),
	}

	if raw, ok := obj["thresholds"]; ok {
		var thresholds map[string]float64
		if err := json.Unmarshal(raw, &thresholds); err == nil {
			m.Thresholds = thresholds
			delete(obj, "thresholds")
		}
	}
	if score := obj.number("readinessScore"); score != nil {
		v := int(*score)
		m.ReadinessScore = &v
	}
	if raw, ok := obj["evaluatedAt"]; ok {
		var at time.Time
		if err := json.Unmarshal(raw, &at); err == nil {
			m.EvaluatedAt = &at
			delete(obj, "evaluatedAt")
		}
	}

	m.Extra = obj.extra()
	return nil
}

func (m RunMetadata) MarshalJSON() ([]byte, error) {
	enc := newEncoder(m.Extra)
	if m.RequiredGates != nil {
		enc["requiredGates"] = m.RequiredGates
	}
	if m.Thresholds != nil {
		enc["thresholds"] = m.Thresholds
	}
	if m.ReadinessScore != nil {
		enc["readinessScore"] = *m.ReadinessScore
	}
	if m.EvaluatedAt != nil {
		enc["evaluatedAt"] = m.EvaluatedAt.UTC()
	}
	return enc.marshal()
}

func (m RunMetadata) String() string {
	raw, err := m.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (m RunMetadata) Clone() RunMetadata {
	out := RunMetadata{
		RequiredGates: cloneStrings(m.RequiredGates),
		Extra:         cloneRaw(m.Extra),
	}
	if m.Thresholds != nil {
		out.Thresholds = make(map[string]float64, len(m.Thresholds))
		for k, v := range m.Thresholds {
			out.Thresholds[k] = v
		}
	}
	if m.ReadinessScore != nil {
		score := *m.ReadinessScore
		out.ReadinessScore = &score
	}
	if m.EvaluatedAt != nil {
		at := *m.EvaluatedAt
		out.EvaluatedAt = &at
	}
	return out
}

// WithEvaluation returns a copy carrying a fresh score and evaluation time;
// every other key is preserved.
func (m RunMetadata) WithEvaluation(score int, at time.Time) RunMetadata {
	out := m.Clone()
	out.ReadinessScore = &score
	evaluatedAt := at.UTC()
	out.EvaluatedAt = &evaluatedAt
	return out
}
