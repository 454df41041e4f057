package readiness

import "math"

// SnapshotIndex resolves gate keys against a run's frozen checklist.
type SnapshotIndex struct {
	bySlug map[string]SnapshotItem
	order  []string
}

func IndexSnapshot(items []SnapshotItem) SnapshotIndex {
	idx := SnapshotIndex{
		bySlug: make(map[string]SnapshotItem, len(items)),
		order:  make([]string, 0, len(items)),
	}
	for _, item := range items {
		if _, dup := idx.bySlug[item.Slug]; dup {
			continue
		}
		idx.bySlug[item.Slug] = item
		idx.order = append(idx.order, item.Slug)
	}
	return idx
}

func (idx SnapshotIndex) Lookup(gateKey string) (SnapshotItem, bool) {
	item, ok := idx.bySlug[gateKey]
	return item, ok
}

// Slugs returns the snapshot slugs in snapshot order.
func (idx SnapshotIndex) Slugs() []string {
	return append([]string(nil), idx.order...)
}

// gateCredit is the share of a gate's weight it earns toward the score.
func gateCredit(status GateStatus) float64 {
	switch status {
	case GateStatusPass, GateStatusWaived:
		return 1
	case GateStatusInProgress:
		return 0.5
	default:
		return 0
	}
}

// ReadinessScore is round(100 * earned / total) over gates present in the
// snapshot. Orphaned gates are ignored; no gates scores 0.
func ReadinessScore(gates []GateResult, idx SnapshotIndex) int {
	var total, earned float64
	for _, gate := range gates {
		item, ok := idx.Lookup(gate.GateKey)
		if !ok {
			continue
		}
		weight := float64(NormalizeWeight(item.Weight))
		total += weight
		earned += weight * gateCredit(gate.Status)
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * earned / total))
}

// ResolveRequiredGates picks the run's own required set, then the engine's,
// and finally every snapshot slug.
func ResolveRequiredGates(runRequired []string, engineRequired []string, idx SnapshotIndex) []string {
	if len(runRequired) > 0 {
		return append([]string(nil), runRequired...)
	}
	if len(engineRequired) > 0 {
		return append([]string(nil), engineRequired...)
	}
	return idx.Slugs()
}

// BlockingGates returns required gates that are fail or pending, in gate order.
func BlockingGates(gates []GateResult, idx SnapshotIndex, required []string) []BlockingGate {
	requiredSet := make(map[string]struct{}, len(required))
	for _, key := range required {
		requiredSet[key] = struct{}{}
	}

	blocking := make([]BlockingGate, 0)
	for _, gate := range gates {
		if _, ok := idx.Lookup(gate.GateKey); !ok {
			continue
		}
		if _, ok := requiredSet[gate.GateKey]; !ok {
			continue
		}
		if gate.Status != GateStatusFail && gate.Status != GateStatusPending {
			continue
		}
		blocking = append(blocking, BlockingGate{
			GateKey:    gate.GateKey,
			Status:     gate.Status,
			OwnerEmail: gate.OwnerEmail,
			Notes:      gate.Notes,
		})
	}
	return blocking
}

// RecommendStatus maps the gate picture onto blocked / in_progress / ready.
func RecommendStatus(gates []GateResult, idx SnapshotIndex, blocking []BlockingGate) RunStatus {
	if len(blocking) > 0 {
		return RunStatusBlocked
	}
	for _, gate := range gates {
		if _, ok := idx.Lookup(gate.GateKey); !ok {
			continue
		}
		if gate.Status == GateStatusInProgress {
			return RunStatusInProgress
		}
	}
	return RunStatusReady
}

// Assessment is the derived readiness of a run at one point in time.
type Assessment struct {
	ReadinessScore    int
	RequiredGates     []string
	BlockingGates     []BlockingGate
	RecommendedStatus RunStatus
}

func Assess(gates []GateResult, idx SnapshotIndex, required []string) Assessment {
	blocking := BlockingGates(gates, idx, required)
	return Assessment{
		ReadinessScore:    ReadinessScore(gates, idx),
		RequiredGates:     append([]string(nil), required...),
		BlockingGates:     blocking,
		RecommendedStatus: RecommendStatus(gates, idx, blocking),
	}
}
