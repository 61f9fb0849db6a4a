package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/presentation/graph"
	"github.com/aretw0/eventmodel/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <model>",
	Short: "Export the slice graph visualization",
	Long:  `Builds the model's slices and outputs a Mermaid diagram (graph LR) of events, views, actors and commands.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, engine, err := openEngine(cmd)
		if err != nil {
			return err
		}

		view, err := engine.Build(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{}
		if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
			key, err := parseSliceKey(focus)
			if err != nil {
				return err
			}
			overlay.Focus = &key
		}
		highlights, _ := cmd.Flags().GetStringSlice("highlight")
		for _, h := range highlights {
			key, err := parseSliceKey(h)
			if err != nil {
				return err
			}
			overlay.Highlighted = append(overlay.Highlighted, key)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(view, overlay))
		return nil
	},
}

func parseSliceKey(s string) (domain.SliceKey, error) {
	kind, name, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return domain.SliceKey{}, fmt.Errorf("slice must be kind/name, got %q", s)
	}
	switch k := domain.SliceKind(kind); k {
	case domain.SliceState, domain.SliceCommand:
		return domain.SliceKey{Kind: k, Name: name}, nil
	default:
		return domain.SliceKey{}, fmt.Errorf("unknown slice kind %q", kind)
	}
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("focus", "", "Slice to focus, as kind/name")
	graphCmd.Flags().StringSlice("highlight", nil, "Slices to highlight, as kind/name")
}
