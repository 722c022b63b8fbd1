package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/pkg/xmlfmt"
)

func createFormatXMLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format-xml <input> <output>",
		Short: "Pretty-print an XML file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := xmlfmt.FormatFile(args[0], args[1]); err != nil {
				initFatal(err, "formatting XML")
			}
			fmt.Println("Formatted XML saved to:", args[1])
		},
	}
}
