package cmd

import (
	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/usecase/readiness"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Record gate evaluations",
}

var gateRecordCmd = &cobra.Command{
	Use:   "record <run-id> <gate-key>",
	Short: "Record status, metrics or evidence for one gate of a run",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		input := readiness.RecordGateEvaluationInput{
			RunID:       cmd.Flags().Arg(0),
			GateKey:     cmd.Flags().Arg(1),
			Status:      changedString(cmd, "status"),
			OwnerEmail:  changedString(cmd, "owner"),
			Notes:       changedString(cmd, "notes"),
			EvidenceURL: changedString(cmd, "evidence-url"),
		}

		var metrics domainreadiness.GateMetrics
		if set, err := jsonFlag(cmd, "metrics", &metrics); err != nil {
			return err
		} else if set {
			input.Metrics = &metrics
		}
		evaluatedAt, err := timeFlag(cmd, "evaluated-at")
		if err != nil {
			return err
		}
		input.LastEvaluatedAt = evaluatedAt

		gate, err := svc.RecordGateEvaluation(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "record gate evaluation")
		}
		if gate == nil {
			return notFoundError("release run", input.RunID)
		}
		return writeJSON(cmd, gate)
	}),
}

func init() {
	rootCmd.AddCommand(gateCmd)
	gateCmd.AddCommand(gateRecordCmd)

	gateRecordCmd.Flags().String("status", "", "Gate status: pending, in_progress, pass, fail or waived")
	gateRecordCmd.Flags().String("owner", "", "Gate owner email")
	gateRecordCmd.Flags().String("notes", "", "Notes")
	gateRecordCmd.Flags().String("evidence-url", "", "Evidence link")
	gateRecordCmd.Flags().String("metrics", "", `Reported metrics as JSON, e.g. '{"coverage":0.92}'`)
	gateRecordCmd.Flags().String("evaluated-at", "", "RFC3339 evaluation time (default now)")
}
