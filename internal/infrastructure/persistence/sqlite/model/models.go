package model

// All lists every table the schema migration creates.
func All() []any {
	return []any{
		&ChecklistItem{},
		&ReleaseRun{},
		&GateResult{},
	}
}
