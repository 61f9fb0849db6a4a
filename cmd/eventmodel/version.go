package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of eventmodel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eventmodel version %s\n", eventmodel.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
