package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/itembank"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check generated data for missing tags, origin ids, and ranges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			report, err := in.Audit(ctx)
			if err != nil {
				return err
			}
			formatAuditText(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script <file.risor> [name=value ...]",
	Short: "Run a Risor script against the repository",
	Long: `Runs a Risor script with the read-only repository host functions.
Extra name=value arguments are exposed to the script as string globals. The
value of the script's final expression is printed as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		globals, err := parseGlobals(args[1:])
		if err != nil {
			return err
		}
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			result, err := in.RunScript(ctx, args[0], globals)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		})
	},
}

// parseGlobals turns name=value arguments into script globals.
func parseGlobals(args []string) (map[string]any, error) {
	globals := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid script argument %q: want name=value", arg)
		}
		globals[name] = value
	}
	return globals, nil
}
