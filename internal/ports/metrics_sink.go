package ports

import "context"

type GateEvaluationEvent struct {
	RunID       string `json:"runId"`
	GateKey     string `json:"gateKey"`
	Status      string `json:"status"`
	Environment string `json:"environment"`
	VersionTag  string `json:"versionTag"`
}

type RunStatusEvent struct {
	RunID          string `json:"runId"`
	Status         string `json:"status"`
	Environment    string `json:"environment"`
	VersionTag     string `json:"versionTag"`
	ReadinessScore int    `json:"readinessScore"`
}

// MetricsSink receives readiness events. Implementations are best-effort:
// they must not block the caller on delivery and report failures only
// through their own logging.
type MetricsSink interface {
	RecordGateEvaluation(ctx context.Context, event GateEvaluationEvent)
	RecordRunStatus(ctx context.Context, event RunStatusEvent)
}
