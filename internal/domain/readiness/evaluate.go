package readiness

import (
	"fmt"
	"strings"
)

// Finding is one rule's contribution to a gate evaluation.
type Finding struct {
	Rule    string
	Verdict Verdict
	Message string
}

type GateEvaluation struct {
	Status   GateStatus
	Findings []Finding
}

// Notes joins every unmet criterion's message in rule order.
func (e GateEvaluation) Notes() string {
	messages := make([]string, 0, len(e.Findings))
	for _, finding := range e.Findings {
		if finding.Verdict == VerdictPass || finding.Message == "" {
			continue
		}
		messages = append(messages, finding.Message)
	}
	if len(messages) == 0 {
		return "all success criteria met"
	}
	return strings.Join(messages, "; ")
}

// ShouldAutoEvaluate reports whether the engine may derive this gate's status.
// Settled gates are left alone so manual decisions are never overwritten, and
// a gate nobody has reported on stays where it is. A report is a stamped
// evaluation time or any stored metric; metrics that parse to nothing after a
// report still count, and then evaluate as "nothing configured".
func ShouldAutoEvaluate(item SnapshotItem, gate GateResult) bool {
	if !item.AutoEvaluated {
		return false
	}
	if gate.LastEvaluatedAt == nil && gate.Metrics.IsEmpty() {
		return false
	}
	return gate.Status == GateStatusPending || gate.Status == GateStatusInProgress
}

type criteriaRule struct {
	name  string
	check func(c SuccessCriteria, m GateMetrics, w ChangeWindow) (Verdict, string)
}

// criteriaRules run independently; none short-circuits another.
var criteriaRules = []criteriaRule{
	{name: "minCoverage", check: checkCoverage},
	{name: "maxFailureRate", check: checkFailureRate},
	{name: "vulnerabilities", check: checkVulnerabilities},
	{name: "maxOpenIncidents", check: checkOpenIncidents},
	{name: "maxErrorRate", check: checkErrorRate},
	{name: "changeReviewRequired", check: checkChangeReview},
	{name: "freezeWindowCheck", check: checkFreezeWindow},
	{name: "requiredEvidence", check: checkEvidence},
}

// EvaluateCriteria scores metrics against criteria. The overall status is the
// most severe rule verdict; no configured criteria means pass.
func EvaluateCriteria(criteria SuccessCriteria, metrics GateMetrics, window ChangeWindow) GateEvaluation {
	overall := VerdictPass
	findings := make([]Finding, 0, 2)
	for _, rule := range criteriaRules {
		verdict, message := rule.check(criteria, metrics, window)
		if verdict == VerdictPass {
			continue
		}
		overall = overall.Worst(verdict)
		findings = append(findings, Finding{Rule: rule.name, Verdict: verdict, Message: message})
	}
	return GateEvaluation{Status: overall.GateStatus(), Findings: findings}
}

func checkCoverage(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if c.MinCoverage == nil {
		return VerdictPass, ""
	}
	if m.Coverage == nil {
		return VerdictInProgress, "awaiting coverage"
	}
	if *m.Coverage < *c.MinCoverage {
		return VerdictFail, fmt.Sprintf("coverage %s below minimum %s", formatNumber(*m.Coverage), formatNumber(*c.MinCoverage))
	}
	return VerdictPass, ""
}

func checkFailureRate(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if c.MaxFailureRate == nil {
		return VerdictPass, ""
	}
	if m.FailureRate == nil {
		return VerdictInProgress, "awaiting failure rate"
	}
	if *m.FailureRate > *c.MaxFailureRate {
		return VerdictFail, fmt.Sprintf("failure rate %s above maximum %s", formatNumber(*m.FailureRate), formatNumber(*c.MaxFailureRate))
	}
	return VerdictPass, ""
}

// checkVulnerabilities waits on the critical count; a missing high count is
// not penalized.
func checkVulnerabilities(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if c.MaxCriticalVulnerabilities == nil && c.MaxHighVulnerabilities == nil {
		return VerdictPass, ""
	}
	if m.CriticalVulnerabilities == nil {
		return VerdictInProgress, "awaiting vulnerability scan"
	}

	problems := make([]string, 0, 2)
	if c.MaxCriticalVulnerabilities != nil && *m.CriticalVulnerabilities > *c.MaxCriticalVulnerabilities {
		problems = append(problems, fmt.Sprintf("critical vulnerabilities %s exceed %s",
			formatNumber(*m.CriticalVulnerabilities), formatNumber(*c.MaxCriticalVulnerabilities)))
	}
	if c.MaxHighVulnerabilities != nil && m.HighVulnerabilities != nil && *m.HighVulnerabilities > *c.MaxHighVulnerabilities {
		problems = append(problems, fmt.Sprintf("high vulnerabilities %s exceed %s",
			formatNumber(*m.HighVulnerabilities), formatNumber(*c.MaxHighVulnerabilities)))
	}
	if len(problems) > 0 {
		return VerdictFail, strings.Join(problems, "; ")
	}
	return VerdictPass, ""
}

func checkOpenIncidents(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if c.MaxOpenIncidents == nil {
		return VerdictPass, ""
	}
	if m.OpenIncidents == nil {
		return VerdictInProgress, "awaiting incident count"
	}
	if *m.OpenIncidents > *c.MaxOpenIncidents {
		return VerdictFail, fmt.Sprintf("open incidents %s exceed %s", formatNumber(*m.OpenIncidents), formatNumber(*c.MaxOpenIncidents))
	}
	return VerdictPass, ""
}

func checkErrorRate(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if c.MaxErrorRate == nil || m.ErrorRate == nil {
		return VerdictPass, ""
	}
	if *m.ErrorRate > *c.MaxErrorRate {
		return VerdictFail, fmt.Sprintf("error rate %s above maximum %s", formatNumber(*m.ErrorRate), formatNumber(*c.MaxErrorRate))
	}
	return VerdictPass, ""
}

func checkChangeReview(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	if !isSet(c.ChangeReviewRequired) {
		return VerdictPass, ""
	}
	if !isSet(m.ChangeReviewCompleted) {
		return VerdictFail, "change review not completed"
	}
	return VerdictPass, ""
}

func checkFreezeWindow(c SuccessCriteria, m GateMetrics, w ChangeWindow) (Verdict, string) {
	if !isSet(c.FreezeWindowCheck) {
		return VerdictPass, ""
	}
	if isSet(m.FreezeWindowBypassed) {
		return VerdictFail, "freeze window bypassed"
	}
	if w.Start != nil && w.End != nil && !w.Start.Before(*w.End) {
		return VerdictFail, "change window start is not before its end"
	}
	return VerdictPass, ""
}

func checkEvidence(c SuccessCriteria, m GateMetrics, _ ChangeWindow) (Verdict, string) {
	missing := make([]string, 0, len(c.RequiredEvidence))
	for _, label := range c.RequiredEvidence {
		if !m.hasEvidence(label) {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return VerdictInProgress, "missing evidence: " + strings.Join(missing, ", ")
	}
	return VerdictPass, ""
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
