package cmd

import (
	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/transport/httpapi"
	"releasegate/internal/usecase/readiness"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schedule, inspect and evaluate release runs",
}

var runScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a release run against the current checklist",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		req := httpapi.ScheduleRunRequest{}
		req.VersionTag, _ = cmd.Flags().GetString("version")
		req.Environment, _ = cmd.Flags().GetString("env")
		req.InitiatedByEmail, _ = cmd.Flags().GetString("initiated-by")
		req.InitiatedByName, _ = cmd.Flags().GetString("initiated-by-name")
		req.SummaryNotes, _ = cmd.Flags().GetString("notes")

		var err error
		if req.ScheduledAt, err = timeFlag(cmd, "scheduled-at"); err != nil {
			return err
		}
		if req.ChangeWindowStart, err = timeFlag(cmd, "window-start"); err != nil {
			return err
		}
		if req.ChangeWindowEnd, err = timeFlag(cmd, "window-end"); err != nil {
			return err
		}
		if _, err := jsonFlag(cmd, "metadata", &req.Metadata); err != nil {
			return err
		}
		if _, err := jsonFlag(cmd, "initial-gates", &req.InitialGates); err != nil {
			return err
		}

		result, err := svc.ScheduleReleaseRun(cmd.Context(), req.ToInput())
		if err != nil {
			return errs.Wrap(err, "schedule release run")
		}
		return writeJSON(cmd, result)
	}),
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List release runs, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		input := readiness.ListRunsInput{}
		input.Environment, _ = cmd.Flags().GetString("env")
		input.Statuses, _ = cmd.Flags().GetStringSlice("status")
		input.VersionTag, _ = cmd.Flags().GetString("version")
		input.Limit, _ = cmd.Flags().GetInt("limit")
		input.Offset, _ = cmd.Flags().GetInt("offset")

		page, err := svc.ListRuns(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "list release runs")
		}
		items := page.Items
		if items == nil {
			items = []domainreadiness.ReleaseRun{}
		}
		return writeJSON(cmd, httpapi.RunListResponse{Items: items, Total: page.Total})
	}),
}

var runShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a release run with its gates",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		runID := cmd.Flags().Arg(0)
		result, err := svc.GetRun(cmd.Context(), runID)
		if err != nil {
			return errs.Wrap(err, "get release run")
		}
		if result == nil {
			return notFoundError("release run", runID)
		}
		return writeJSON(cmd, result)
	}),
}

var runEvaluateCmd = &cobra.Command{
	Use:   "evaluate <run-id>",
	Short: "Auto-evaluate gates and recompute the readiness score",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		runID := cmd.Flags().Arg(0)
		evaluation, err := svc.EvaluateRun(cmd.Context(), runID)
		if err != nil {
			return errs.Wrap(err, "evaluate release run")
		}
		if evaluation == nil {
			return notFoundError("release run", runID)
		}
		return writeJSON(cmd, evaluation)
	}),
}

var runCompleteCmd = &cobra.Command{
	Use:   "complete <run-id>",
	Short: "Mark a ready run as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionCommand(domainreadiness.RunStatusCompleted),
}

var runCancelCmd = &cobra.Command{
	Use:   "cancel <run-id>",
	Short: "Cancel a run that has not finished",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionCommand(domainreadiness.RunStatusCancelled),
}

func transitionCommand(target domainreadiness.RunStatus) func(cmd *cobra.Command, args []string) error {
	return withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		runID := cmd.Flags().Arg(0)
		run, err := svc.TransitionRun(cmd.Context(), runID, string(target))
		if err != nil {
			return errs.Wrapf(err, "transition release run to %s", target)
		}
		if run == nil {
			return notFoundError("release run", runID)
		}
		return writeJSON(cmd, run)
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runScheduleCmd, runListCmd, runShowCmd, runEvaluateCmd, runCompleteCmd, runCancelCmd)

	runScheduleCmd.Flags().String("version", "", "Version tag being released")
	runScheduleCmd.Flags().String("env", "", "Target environment (default from config)")
	runScheduleCmd.Flags().String("initiated-by", "", "Initiator email")
	runScheduleCmd.Flags().String("initiated-by-name", "", "Initiator display name")
	runScheduleCmd.Flags().String("notes", "", "Summary notes")
	runScheduleCmd.Flags().String("scheduled-at", "", "RFC3339 schedule time (default now)")
	runScheduleCmd.Flags().String("window-start", "", "RFC3339 change window start")
	runScheduleCmd.Flags().String("window-end", "", "RFC3339 change window end")
	runScheduleCmd.Flags().String("metadata", "", "Run metadata as JSON")
	runScheduleCmd.Flags().String("initial-gates", "", `Initial gate state as JSON, e.g. '{"coverage":{"status":"in_progress"}}'`)
	_ = runScheduleCmd.MarkFlagRequired("version")
	_ = runScheduleCmd.MarkFlagRequired("initiated-by")

	runListCmd.Flags().String("env", "", "Only runs in this environment")
	runListCmd.Flags().StringSlice("status", nil, "Only runs in these statuses")
	runListCmd.Flags().String("version", "", "Only runs with this version tag")
	runListCmd.Flags().Int("limit", 0, "Page size (default 50, max 500)")
	runListCmd.Flags().Int("offset", 0, "Runs to skip")
}
