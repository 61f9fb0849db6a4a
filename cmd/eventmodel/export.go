package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/cli"
	"github.com/aretw0/eventmodel/internal/config"
)

var exportCmd = &cobra.Command{
	Use:   "export [model...]",
	Short: "Write slice views to the configured sinks",
	Long: `Builds each model and writes its slice view to every sink: 'file' (<id>.slices.json or
.yaml under the export directory), 'redis' or 'sqlite'. Sinks default to the project config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, engine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		if err := applyExportFlags(cmd, cfg); err != nil {
			return err
		}

		sinks, err := cli.CreateSinks(cfg, cfg.Export.Sinks)
		if err != nil {
			return err
		}
		defer sinks.Close()

		ids, err := modelIDs(engine, args)
		if err != nil {
			return err
		}

		for _, id := range ids {
			view, err := engine.Build(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := sinks.Export(cmd.Context(), id, view); err != nil {
				return fmt.Errorf("export %s: %w", id, err)
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Exported '%s' (%d slices) to %s.", id, len(view.Slices), sinks.Name())
		}
		return nil
	},
}

// applyExportFlags overrides the sink settings shared by export and watch.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("sink") {
		cfg.Export.Sinks, _ = flags.GetStringSlice("sink")
	}
	if flags.Changed("format") {
		cfg.Export.Format, _ = flags.GetString("format")
	}
	if flags.Changed("out") {
		cfg.Export.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-ttl") {
		cfg.Redis.TTL.Duration, _ = flags.GetDuration("redis-ttl")
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLite.Path, _ = flags.GetString("sqlite-path")
	}
	return cfg.Validate()
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("sink", nil, "Export sinks: file, redis, sqlite")
	cmd.Flags().String("format", "", "Artifact format for the file sink: json or yaml")
	cmd.Flags().String("out", "", "Directory for the file sink")
	cmd.Flags().String("redis-addr", "", "Redis address for the redis sink")
	cmd.Flags().Duration("redis-ttl", 0, "Expiry of Redis artifacts (0 keeps them)")
	cmd.Flags().String("sqlite-path", "", "Database file for the sqlite sink")
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
}
