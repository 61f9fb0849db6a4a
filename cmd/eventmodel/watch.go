package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/cli"
	"github.com/aretw0/eventmodel/internal/presentation/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [model...]",
	Short: "Rebuild slices whenever a model changes",
	Long: `Watches the model directory, rebuilding and printing every changed model.
With --export each rebuilt view is also written to the configured sinks.
Failed builds are retried with backoff until the model is fixed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyExportFlags(cmd, cfg); err != nil {
			return err
		}
		exportViews, _ := cmd.Flags().GetBool("export")
		plain, _ := cmd.Flags().GetBool("plain")

		return cli.RunWatch(cli.WatchOptions{
			Config: cfg,
			Models: args,
			Export: exportViews,
			Out:    cmd.OutOrStdout(),
			Styled: !plain && tui.IsTerminal(os.Stdout),
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("export", false, "Export every rebuilt view to the configured sinks")
	watchCmd.Flags().Bool("plain", false, "Disable terminal styling")
	addExportFlags(watchCmd)
}
