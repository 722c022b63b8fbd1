package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/server/config"
	"github.com/benchvalid/benchvalid/server/nexpose"
)

func createReportCmd(configManager config.Manager) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Scanner report request helpers",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var (
		template  string
		sessionID string
		siteID    string
		policyID  string
		name      string
		out       string
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build a ReportSaveRequest XML payload",
		Long: `
Build the ReportSaveRequest XML payload the scanner console's report API
expects. Without --template the console defaults are used.
`,
		Run: func(cmd *cobra.Command, args []string) {
			var req nexpose.ReportRequest
			if template != "" {
				var err error
				req, err = nexpose.LoadReportRequest(template)
				if err != nil {
					initFatal(err, "loading report template")
				}
			}
			req.Apply(sessionID, siteID, policyID, name)

			payload, err := nexpose.BuildReportSaveRequest(req)
			if err != nil {
				initFatal(err, "building report request")
			}

			if out == "" {
				fmt.Println(payload)
				return
			}
			if err := os.WriteFile(out, []byte(payload), 0o644); err != nil {
				initFatal(err, "writing report request")
			}
			fmt.Println("Report request saved to:", out)
		},
	}

	buildCmd.Flags().StringVar(&template, "template", "", "JSON report template path")
	buildCmd.Flags().StringVar(&sessionID, "session-id", "", "Scanner console session ID")
	buildCmd.Flags().StringVar(&siteID, "site-id", "", "Site ID to report on")
	buildCmd.Flags().StringVar(&policyID, "policy-id", "", "Policy natural ID to report on")
	buildCmd.Flags().StringVar(&name, "name", "", "Report name (a unique name is generated when empty)")
	buildCmd.Flags().StringVar(&out, "out", "", "Write the payload to a file instead of stdout")
	buildCmd.MarkFlagRequired("session-id")
	buildCmd.MarkFlagRequired("site-id")
	buildCmd.MarkFlagRequired("policy-id")

	reportCmd.AddCommand(buildCmd)
	return reportCmd
}
