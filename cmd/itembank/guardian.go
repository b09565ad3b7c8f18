package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/itembank"
	"github.com/jward/itembank/internal/config"
)

var guardianCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Configure and register the item metadata guardian",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := guardianOptions(cfg.Guardian)
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			if err := in.ConfigureMetadataGuardian(ctx, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s under %q (path %s, property %s)\n",
				itembank.GuardianName, opts.Key, strings.Join(opts.ExpectedPath, " > "), opts.PropertyURI)
			return nil
		})
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Apply pending migrations and register the metadata guardian",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := guardianOptions(cfg.Guardian)
		return withInstaller(cmd.Context(), func(ctx context.Context, in *itembank.Installer) error {
			applied, err := in.Install(ctx, opts)
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s under %q\n", itembank.GuardianName, opts.Key)
			return nil
		})
	},
}

func guardianOptions(gc config.GuardianConfig) itembank.GuardianOptions {
	return itembank.GuardianOptions{
		Key:          gc.Key,
		ExpectedPath: gc.Path,
		PropertyURI:  gc.Property,
	}
}
