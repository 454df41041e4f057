package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"releasegate/internal/bootstrap"
	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/infrastructure/seed"
	"releasegate/internal/usecase/readiness"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Manage the checklist catalog",
}

var checklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List checklist items, heaviest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		listing, err := svc.ListChecklist(cmd.Context(), readiness.ListChecklistInput{
			Category: category,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return errs.Wrap(err, "list checklist")
		}
		return writeJSON(cmd, listing)
	}),
}

var checklistCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a checklist item",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		input := readiness.CreateChecklistItemInput{}
		input.Slug, _ = cmd.Flags().GetString("slug")
		input.Category, _ = cmd.Flags().GetString("category")
		input.Title, _ = cmd.Flags().GetString("title")
		input.Description, _ = cmd.Flags().GetString("description")
		input.AutoEvaluated, _ = cmd.Flags().GetBool("auto-evaluated")
		input.DefaultOwnerEmail, _ = cmd.Flags().GetString("owner")
		weight, _ := cmd.Flags().GetString("weight")
		input.Weight = weight
		if _, err := jsonFlag(cmd, "criteria", &input.SuccessCriteria); err != nil {
			return err
		}

		item, err := svc.CreateChecklistItem(cmd.Context(), input)
		if err != nil {
			return errs.Wrap(err, "create checklist item")
		}
		return writeJSON(cmd, item)
	}),
}

var checklistUpdateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update selected fields of a checklist item",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		slug := cmd.Flags().Arg(0)
		patch := domainreadiness.ChecklistPatch{
			Category:          changedString(cmd, "category"),
			Title:             changedString(cmd, "title"),
			Description:       changedString(cmd, "description"),
			DefaultOwnerEmail: changedString(cmd, "owner"),
		}
		if cmd.Flags().Changed("auto-evaluated") {
			auto, _ := cmd.Flags().GetBool("auto-evaluated")
			patch.AutoEvaluated = &auto
		}
		if raw := changedString(cmd, "weight"); raw != nil {
			weight := domainreadiness.ParseWeight(*raw)
			patch.Weight = &weight
		}
		var criteria domainreadiness.SuccessCriteria
		if set, err := jsonFlag(cmd, "criteria", &criteria); err != nil {
			return err
		} else if set {
			patch.SuccessCriteria = &criteria
		}

		item, err := svc.UpdateChecklistItem(cmd.Context(), readiness.UpdateChecklistItemInput{
			Slug:  slug,
			Patch: patch,
		})
		if err != nil {
			return errs.Wrap(err, "update checklist item")
		}
		if item == nil {
			return notFoundError("checklist item", slug)
		}
		return writeJSON(cmd, item)
	}),
}

var checklistImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create or replace checklist items from a yaml or toml seed file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *readiness.Service) error {
		path := cmd.Flags().Arg(0)
		ctx := logging.WithAttrs(cmd.Context(), slog.String("seed_file", path))

		file, err := seed.Load(path)
		if err != nil {
			return errs.Wrap(err, "load seed file")
		}

		inputs := make([]readiness.CreateChecklistItemInput, 0, len(file.Items))
		for _, item := range file.Items {
			inputs = append(inputs, readiness.CreateChecklistItemInput{
				Slug:              item.Slug,
				Category:          item.Category,
				Title:             item.Title,
				Description:       item.Description,
				AutoEvaluated:     item.AutoEvaluated,
				Weight:            item.Weight,
				DefaultOwnerEmail: item.DefaultOwnerEmail,
				SuccessCriteria:   item.Criteria(),
			})
		}

		result, err := svc.ImportChecklist(ctx, inputs)
		if err != nil {
			return errs.Wrap(err, "import checklist")
		}
		logging.Info(ctx, "checklist imported", slog.Int("created", result.Created), slog.Int("updated", result.Updated))

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported checklist created=%d updated=%d\n", result.Created, result.Updated); err != nil {
			return errs.Wrap(err, "write import output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(checklistCmd)
	checklistCmd.AddCommand(checklistListCmd, checklistCreateCmd, checklistUpdateCmd, checklistImportCmd)

	checklistListCmd.Flags().String("category", "", "Only items in this category")
	checklistListCmd.Flags().Int("limit", 0, "Page size (default 50, max 500)")
	checklistListCmd.Flags().Int("offset", 0, "Items to skip")

	for _, c := range []*cobra.Command{checklistCreateCmd, checklistUpdateCmd} {
		c.Flags().String("category", "", "Category (default general)")
		c.Flags().String("title", "", "Item title")
		c.Flags().String("description", "", "Item description")
		c.Flags().Bool("auto-evaluated", false, "Evaluate the gate automatically from reported metrics")
		c.Flags().String("weight", "", "Positive integer weight (default 1)")
		c.Flags().String("owner", "", "Default gate owner email")
		c.Flags().String("criteria", "", `Success criteria as JSON, e.g. '{"minCoverage":0.8}'`)
	}
	checklistCreateCmd.Flags().String("slug", "", "Item slug (derived from title when empty)")
	_ = checklistCreateCmd.MarkFlagRequired("title")
}
