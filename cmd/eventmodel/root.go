package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/internal/cli"
	"github.com/aretw0/eventmodel/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "eventmodel",
	Short: "eventmodel builds slice views from event model timelines",
	Long: `eventmodel reads event models (timelines of events, state views, actors and commands)
and groups them into slices with Given/When/Then scenarios. Slices can be printed,
drawn as Mermaid diagrams, exported to files, Redis or SQLite, and served over HTTP or MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the event models")
	rootCmd.PersistentFlags().String("config", "", "Project config file (default: eventmodel.{toml,yaml,yml,json} in --dir)")
	rootCmd.PersistentFlags().String("loader", "", "Model loader: 'loam' or 'file'")
	rootCmd.PersistentFlags().Bool("debug", false, "Log to stderr at debug level")
}

// loadConfig resolves defaults, the project file, the environment and finally the flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")

	path, _ := flags.GetString("config")
	if path == "" {
		path = config.Find(dir)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("dir") || cfg.ModelDir == "" {
		cfg.ModelDir = dir
	}
	if flags.Changed("loader") {
		cfg.Loader, _ = flags.GetString("loader")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openEngine loads the configuration and builds an engine from it.
func openEngine(cmd *cobra.Command) (*config.Config, *eventmodel.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	engine, err := cli.CreateEngine(cfg, cli.CreateLogger(cfg.Debug))
	if err != nil {
		return nil, nil, err
	}
	return cfg, engine, nil
}

// modelIDs returns args, or every model the engine knows when args is empty.
func modelIDs(engine *eventmodel.Engine, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	ids, err := engine.Models()
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no models found")
	}
	return ids, nil
}
