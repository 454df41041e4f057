package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	"releasegate/internal/bootstrap/logging"
	"releasegate/internal/errs"
)

// init-db skips the fx graph: migrations need only the database, not the
// metrics sinks.
var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or migrate the readiness schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		app, err := bootstrap.New(ctx, cfgFile)
		if err != nil {
			return errs.Wrap(err, "bootstrap application")
		}
		defer func() {
			if err := app.Close(ctx); err != nil {
				logging.Error(ctx, "close application failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "init schema")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "schema initialized"); err != nil {
			return errs.Wrap(err, "write init-db output")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
