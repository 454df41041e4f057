package readiness

import (
	"fmt"
	"strings"
)

type GateStatus string

const (
	GateStatusPending    GateStatus = "pending"
	GateStatusInProgress GateStatus = "in_progress"
	GateStatusPass       GateStatus = "pass"
	GateStatusFail       GateStatus = "fail"
	GateStatusWaived     GateStatus = "waived"
)

var gateStatuses = map[GateStatus]struct{}{
	GateStatusPending:    {},
	GateStatusInProgress: {},
	GateStatusPass:       {},
	GateStatusFail:       {},
	GateStatusWaived:     {},
}

// ParseGateStatus accepts the canonical names case-insensitively; "-" and
// spaces are read as "_" so "in-progress" works from a shell.
func ParseGateStatus(raw string) (GateStatus, error) {
	normalized := GateStatus(normalizeEnumToken(raw))
	if _, ok := gateStatuses[normalized]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidGateStatus, raw)
	}
	return normalized, nil
}

// Settled gates are never re-scored automatically.
func (s GateStatus) Settled() bool {
	return s == GateStatusPass || s == GateStatusFail || s == GateStatusWaived
}

type RunStatus string

const (
	RunStatusScheduled  RunStatus = "scheduled"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusBlocked    RunStatus = "blocked"
	RunStatusReady      RunStatus = "ready"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusCancelled  RunStatus = "cancelled"
)

// RunStatuses lists every run status in lifecycle order.
var RunStatuses = []RunStatus{
	RunStatusScheduled,
	RunStatusInProgress,
	RunStatusBlocked,
	RunStatusReady,
	RunStatusCompleted,
	RunStatusCancelled,
}

func ParseRunStatus(raw string) (RunStatus, error) {
	normalized := RunStatus(normalizeEnumToken(raw))
	for _, status := range RunStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRunStatus, raw)
}

func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusCancelled
}

// Active runs are the ones still waiting on evaluation.
func (s RunStatus) Active() bool {
	return s == RunStatusScheduled || s == RunStatusInProgress
}

// CheckTransition validates an explicit operator transition. Only the
// terminal states can be entered this way; everything else is derived by
// evaluation.
func CheckTransition(from RunStatus, to RunStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: run is already %s", ErrInvalidTransition, from)
	}
	switch to {
	case RunStatusCompleted:
		if from != RunStatusReady {
			return fmt.Errorf("%w: %s -> %s requires a ready run", ErrInvalidTransition, from, to)
		}
		return nil
	case RunStatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
}

// Verdict is the severity of an automatic evaluation outcome. Higher values
// win when rules disagree: fail > in_progress > pass.
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictInProgress
	VerdictFail
)

func (v Verdict) Worst(other Verdict) Verdict {
	if other > v {
		return other
	}
	return v
}

func (v Verdict) GateStatus() GateStatus {
	switch v {
	case VerdictFail:
		return GateStatusFail
	case VerdictInProgress:
		return GateStatusInProgress
	default:
		return GateStatusPass
	}
}

func (v Verdict) String() string {
	return string(v.GateStatus())
}

func normalizeEnumToken(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer("-", "_", " ", "_").Replace(token)
}
