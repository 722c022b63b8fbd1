package main

import (
	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/server/version"
)

func createVersionCmd() *cobra.Command {
	var full bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print benchvalid version",
		Run: func(cmd *cobra.Command, args []string) {
			if full {
				version.PrintFull()
				return
			}
			version.Print()
		},
	}
	versionCmd.Flags().BoolVar(&full, "full", false, "Print full version information")

	return versionCmd
}
