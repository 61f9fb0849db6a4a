package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/compiler"
	"github.com/aretw0/eventmodel/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model...]",
	Short: "Check models against the schema and for dangling references",
	Long: `Validates each model document against the event model JSON schema and reports
referential warnings: unknown sourcedFrom events, producedBy keys without a command,
specifications without a slice, and actors pointing at missing views or commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := openEngine(cmd)
		if err != nil {
			return err
		}
		strict, _ := cmd.Flags().GetBool("strict")

		ids, err := modelIDs(engine, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		invalid, warnings := 0, 0
		for _, id := range ids {
			model, view, err := engine.Compile(cmd.Context(), id)
			if err != nil {
				invalid++
				fmt.Fprintf(out, "✗ %s\n", id)
				for _, line := range errorLines(err) {
					fmt.Fprintf(out, "    %s\n", line)
				}
				continue
			}
			diags := compiler.Report(model, view)
			warnings += len(diags)
			if len(diags) == 0 {
				fmt.Fprintf(out, "✓ %s\n", id)
				continue
			}
			fmt.Fprintf(out, "! %s\n", id)
			for _, d := range diags {
				fmt.Fprintf(out, "    %s\n", d)
			}
		}

		switch {
		case invalid > 0:
			return fmt.Errorf("validation failed: %d of %d models invalid", invalid, len(ids))
		case strict && warnings > 0:
			return fmt.Errorf("validation failed: %d warnings", warnings)
		}
		fmt.Fprintln(out, "Models are valid! ✅")
		return nil
	},
}

// errorLines lists schema violations one per line, or the error itself.
func errorLines(err error) []string {
	if errs := schema.ValidationErrors(err); len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return lines
	}
	return []string{err.Error()}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat referential warnings as failures")
}
