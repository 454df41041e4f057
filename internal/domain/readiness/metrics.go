package readiness

import "encoding/json"

// GateMetrics are externally reported measurements for one gate.
type GateMetrics struct {
	Coverage                *float64
	FailureRate             *float64
	CriticalVulnerabilities *float64
	HighVulnerabilities     *float64
	OpenIncidents           *float64
	ErrorRate               *float64
	ChangeReviewCompleted   *bool
	// Only a literal JSON true counts as a bypass.
	FreezeWindowBypassed *bool
	Evidence             []string

	Extra map[string]json.RawMessage
}

func ParseGateMetrics(raw string) GateMetrics {
	var m GateMetrics
	_ = m.UnmarshalJSON([]byte(raw))
	return m
}

func (m *GateMetrics) UnmarshalJSON(data []byte) error {
	obj := decodeObject(data)
	*m = GateMetrics{
		Coverage:                obj.number("coverage"),
		FailureRate:             obj.number("failureRate"),
		CriticalVulnerabilities: obj.number("criticalVulnerabilities"),
		HighVulnerabilities:     obj.number("highVulnerabilities"),
		OpenIncidents:           obj.number("openIncidents"),
		ErrorRate:               obj.number("errorRate"),
		ChangeReviewCompleted:   obj.truthy("changeReviewCompleted"),
		FreezeWindowBypassed:    obj.boolean("freezeWindowBypassed"),
		Evidence:                obj.stringList("evidence"),
	}
	m.Extra = obj.extra()
	return nil
}

func (m GateMetrics) MarshalJSON() ([]byte, error) {
	enc := newEncoder(m.Extra)
	enc.setNumber("coverage", m.Coverage)
	enc.setNumber("failureRate", m.FailureRate)
	enc.setNumber("criticalVulnerabilities", m.CriticalVulnerabilities)
	enc.setNumber("highVulnerabilities", m.HighVulnerabilities)
	enc.setNumber("openIncidents", m.OpenIncidents)
	enc.setNumber("errorRate", m.ErrorRate)
	enc.setBool("changeReviewCompleted", m.ChangeReviewCompleted)
	enc.setBool("freezeWindowBypassed", m.FreezeWindowBypassed)
	if m.Evidence != nil {
		enc["evidence"] = m.Evidence
	}
	return enc.marshal()
}

func (m GateMetrics) String() string {
	raw, err := m.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (m GateMetrics) Clone() GateMetrics {
	return GateMetrics{
		Coverage:                cloneFloat(m.Coverage),
		FailureRate:             cloneFloat(m.FailureRate),
		CriticalVulnerabilities: cloneFloat(m.CriticalVulnerabilities),
		HighVulnerabilities:     cloneFloat(m.HighVulnerabilities),
		OpenIncidents:           cloneFloat(m.OpenIncidents),
		ErrorRate:               cloneFloat(m.ErrorRate),
		ChangeReviewCompleted:   cloneBool(m.ChangeReviewCompleted),
		FreezeWindowBypassed:    cloneBool(m.FreezeWindowBypassed),
		Evidence:                cloneStrings(m.Evidence),
		Extra:                   cloneRaw(m.Extra),
	}
}

// IsEmpty reports whether nothing at all has been reported for the gate.
func (m GateMetrics) IsEmpty() bool {
	return m.Coverage == nil &&
		m.FailureRate == nil &&
		m.CriticalVulnerabilities == nil &&
		m.HighVulnerabilities == nil &&
		m.OpenIncidents == nil &&
		m.ErrorRate == nil &&
		m.ChangeReviewCompleted == nil &&
		m.FreezeWindowBypassed == nil &&
		m.Evidence == nil &&
		len(m.Extra) == 0
}

func (m GateMetrics) hasEvidence(label string) bool {
	for _, item := range m.Evidence {
		if item == label {
			return true
		}
	}
	return false
}
