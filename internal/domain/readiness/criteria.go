package readiness

import "encoding/json"

// SuccessCriteria are the thresholds a checklist item declares for automatic
// evaluation. Keys the evaluator does not understand are carried in Extra.
type SuccessCriteria struct {
	MinCoverage                *float64
	MaxFailureRate             *float64
	MaxCriticalVulnerabilities *float64
	MaxHighVulnerabilities     *float64
	MaxOpenIncidents           *float64
	MaxErrorRate               *float64
	ChangeReviewRequired       *bool
	FreezeWindowCheck          *bool
	RequiredEvidence           []string

	Extra map[string]json.RawMessage
}

// ParseSuccessCriteria decodes stored criteria. Corrupt input yields empty
// criteria, which evaluates as "nothing configured".
func ParseSuccessCriteria(raw string) SuccessCriteria {
	var c SuccessCriteria
	_ = c.UnmarshalJSON([]byte(raw))
	return c
}

func (c *SuccessCriteria) UnmarshalJSON(data []byte) error {
	obj := decodeObject(data)
	*c = SuccessCriteria{
		MinCoverage:                obj.number("minCoverage"),
		MaxFailureRate:             obj.number("maxFailureRate"),
		MaxCriticalVulnerabilities: obj.number("maxCriticalVulnerabilities"),
		MaxHighVulnerabilities:     obj.number("maxHighVulnerabilities"),
		MaxOpenIncidents:           obj.number("maxOpenIncidents"),
		MaxErrorRate:               obj.number("maxErrorRate"),
		ChangeReviewRequired:       obj.truthy("changeReviewRequired"),
		FreezeWindowCheck:          obj.truthy("freezeWindowCheck"),
		RequiredEvidence:           obj.stringList("requiredEvidence"),
	}
	c.Extra = obj.extra()
	return nil
}

func (c SuccessCriteria) MarshalJSON() ([]byte, error) {
	enc := newEncoder(c.Extra)
	enc.setNumber("minCoverage", c.MinCoverage)
	enc.setNumber("maxFailureRate", c.MaxFailureRate)
	enc.setNumber("maxCriticalVulnerabilities", c.MaxCriticalVulnerabilities)
	enc.setNumber("maxHighVulnerabilities", c.MaxHighVulnerabilities)
	enc.setNumber("maxOpenIncidents", c.MaxOpenIncidents)
	enc.setNumber("maxErrorRate", c.MaxErrorRate)
	enc.setBool("changeReviewRequired", c.ChangeReviewRequired)
	enc.setBool("freezeWindowCheck", c.FreezeWindowCheck)
	if c.RequiredEvidence != nil {
		enc["requiredEvidence"] = c.RequiredEvidence
	}
	return enc.marshal()
}

// String renders the criteria for storage; it never fails.
func (c SuccessCriteria) String() string {
	raw, err := c.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func (c SuccessCriteria) Clone() SuccessCriteria {
	return SuccessCriteria{
		MinCoverage:                cloneFloat(c.MinCoverage),
		MaxFailureRate:             cloneFloat(c.MaxFailureRate),
		MaxCriticalVulnerabilities: cloneFloat(c.MaxCriticalVulnerabilities),
		MaxHighVulnerabilities:     cloneFloat(c.MaxHighVulnerabilities),
		MaxOpenIncidents:           cloneFloat(c.MaxOpenIncidents),
		MaxErrorRate:               cloneFloat(c.MaxErrorRate),
		ChangeReviewRequired:       cloneBool(c.ChangeReviewRequired),
		FreezeWindowCheck:          cloneBool(c.FreezeWindowCheck),
		RequiredEvidence:           cloneStrings(c.RequiredEvidence),
		Extra:                      cloneRaw(c.Extra),
	}
}

func isSet(b *bool) bool {
	return b != nil && *b
}
