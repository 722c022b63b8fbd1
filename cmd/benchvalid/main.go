// benchvalid is the CLI for the compliance validation harness: it validates
// XCCDF reports from scanner runs against expected-result rule tables, and
// carries helpers for credentials, report payloads, and XML formatting.
package main

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/server/config"
)

func main() {
	rootCmd := createRootCmd()
	configManager := config.NewManager(rootCmd)

	rootCmd.AddCommand(createValidateCmd(configManager))
	rootCmd.AddCommand(createFormatXMLCmd())
	rootCmd.AddCommand(createCredsCmd(configManager))
	rootCmd.AddCommand(createReportCmd(configManager))
	rootCmd.AddCommand(createConfigDumpCmd(configManager))
	rootCmd.AddCommand(createVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "benchvalid",
		Short: "CIS/DISA compliance report validation",
		Long: `
benchvalid validates XCCDF compliance reports against expected-result rule
tables.

Options may be supplied in a yaml configuration file or via environment
variables. You only need to define the configuration values for which you
wish to override the default value. Environment variables use the
BENCHVALID_ prefix, e.g. BENCHVALID_SCANNER_HOST.
`,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a configuration file")
	return rootCmd
}

func initFatal(err error, message string) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", message, err)
	os.Exit(1)
}

func newLogger(cfg config.BenchvalidConfig) kitlog.Logger {
	var logger kitlog.Logger
	if cfg.Logging.JSON {
		logger = kitlog.NewJSONLogger(os.Stderr)
	} else {
		logger = kitlog.NewLogfmtLogger(os.Stderr)
	}
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if cfg.Logging.Debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	return logger
}
