package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/itembank"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Import trees, lists, and the item-bank structure",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			run, err := in.Up(ctx)
			if err != nil {
				return err
			}
			formatRunText(cmd.OutOrStdout(), run)
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Remove everything the importer created",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			sw, err := in.Down(ctx)
			formatSweepText(cmd.OutOrStdout(), sw)
			return err
		})
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Tear down and import again from the current reference data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			run, err := in.Reload(ctx)
			if err != nil {
				return err
			}
			formatRunText(cmd.OutOrStdout(), run)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			applied, err := in.Migrate(ctx)
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			if err == nil && len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate")
			}
			return err
		})
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recently applied migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			version, err := in.Rollback(ctx)
			if err != nil {
				return err
			}
			if version == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %s\n", version)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status and whether the reference data changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			states, err := in.MigrationStatus(ctx)
			if err != nil {
				return err
			}
			changed, err := in.SourcesChanged()
			if err != nil {
				return err
			}
			formatStatusText(cmd.OutOrStdout(), states, changed)
			return nil
		})
	},
}
