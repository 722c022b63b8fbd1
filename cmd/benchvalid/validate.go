package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
	"github.com/benchvalid/benchvalid/server/rules"
	"github.com/benchvalid/benchvalid/server/xccdf"
)

func createValidateCmd(configManager config.Manager) *cobra.Command {
	var (
		rulesPath  string
		reportPath string
		profile    string
		sheet      string
	)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an XCCDF report against a rule table",
		Long: `
Validate an XCCDF report against a rule table.

Loads the expected-result rules from a CSV or xlsx rule table, matches each
rule against the report's rule-result elements, and prints a summary. The
exit status is nonzero when any rule fails, so the command can gate CI runs.
`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configManager.LoadConfig()
			logger := newLogger(cfg)

			var opts []rules.LoadOption
			if profile != "" {
				opts = append(opts, rules.WithProfile(profile))
			}
			if sheet != "" {
				opts = append(opts, rules.WithSheet(sheet))
			}

			loader := rules.NewLoader(logger)
			var (
				records []benchvalid.RuleRecord
				err     error
			)
			switch strings.ToLower(filepath.Ext(rulesPath)) {
			case ".xlsx", ".xlsm":
				records, err = loader.LoadSpreadsheet(rulesPath, opts...)
			default:
				records, err = loader.LoadCSV(rulesPath, opts...)
			}
			if err != nil {
				initFatal(err, "loading rule table")
			}

			report, err := os.ReadFile(reportPath)
			if err != nil {
				initFatal(err, "reading report")
			}

			validator := xccdf.NewValidator(logger)
			_, failed, _, err := validator.Validate(records, string(report))
			if err != nil {
				initFatal(err, "validating report")
			}

			fmt.Println(validator.Summary())
			if failed > 0 {
				os.Exit(1)
			}
		},
	}

	validateCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to the rule table (.csv or .xlsx)")
	validateCmd.Flags().StringVar(&reportPath, "report", "", "Path to the XCCDF report")
	validateCmd.Flags().StringVar(&profile, "profile", "", "Only validate rules with this profile tag")
	validateCmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from a spreadsheet rule table")
	validateCmd.MarkFlagRequired("rules")
	validateCmd.MarkFlagRequired("report")

	return validateCmd
}
