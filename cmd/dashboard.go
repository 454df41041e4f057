package cmd

import (
	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	"releasegate/internal/errs"
	"releasegate/internal/usecase/readiness"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Summarize run statuses, active runs and the catalog",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		env, _ := cmd.Flags().GetString("env")
		dashboard, err := svc.GetDashboard(cmd.Context(), env)
		if err != nil {
			return errs.Wrap(err, "build dashboard")
		}
		return writeJSON(cmd, dashboard)
	}),
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().String("env", "", "Only this environment (default all)")
}
