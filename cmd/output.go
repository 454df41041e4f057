package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"releasegate/internal/errs"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(err, "write json output")
	}
	return nil
}

// timeFlag reads an RFC3339 flag. Unset or blank flags yield nil.
func timeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.Wrapf(err, "parse --%s", name)
	}
	return &t, nil
}

// jsonFlag decodes a JSON-valued flag into dst. It reports whether the flag
// carried a value.
func jsonFlag(cmd *cobra.Command, name string, dst any) (bool, error) {
	raw, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, errs.Wrapf(err, "parse --%s as json", name)
	}
	return true, nil
}

// changedString returns the flag value only when it was set explicitly.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func notFoundError(kind string, id string) error {
	return fmt.Errorf("%s %q not found", kind, id)
}
