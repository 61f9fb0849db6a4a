package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/cli"
	"github.com/aretw0/eventmodel/internal/presentation/tui"
	"github.com/aretw0/eventmodel/pkg/export"
)

var slicesCmd = &cobra.Command{
	Use:   "slices [model...]",
	Short: "Print the slices of one or more models",
	Long: `Builds the slice view of each model and prints it. Markdown output is styled when
stdout is a terminal; --output json or yaml prints the raw view instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := openEngine(cmd)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		plain, _ := cmd.Flags().GetBool("plain")
		styled := !plain && tui.IsTerminal(os.Stdout)

		ids, err := modelIDs(engine, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range ids {
			view, err := engine.Build(cmd.Context(), id)
			if err != nil {
				return err
			}

			if output == "markdown" || output == "md" {
				if err := cli.RenderSlices(out, view, styled); err != nil {
					return err
				}
				continue
			}

			format, err := export.ParseFormat(output)
			if err != nil {
				return err
			}
			data, err := export.Encode(view, format)
			if err != nil {
				return fmt.Errorf("encode %s: %w", id, err)
			}
			out.Write(data)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(slicesCmd)
	slicesCmd.Flags().StringP("output", "o", "markdown", "Output format: markdown, json or yaml")
	slicesCmd.Flags().Bool("plain", false, "Disable terminal styling")
}
