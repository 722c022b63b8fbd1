package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/benchvalid/benchvalid/pkg/retry"
	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
	"github.com/benchvalid/benchvalid/server/creds"
)

func createCredsCmd(configManager config.Manager) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "creds",
		Short: "Credential backend helpers",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	var spec benchvalid.CredentialSpec

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Resolve VM credentials from the configured backend",
		Long: `
Resolve VM credentials from the configured backend.

Prints the resolved host and username. The password is deliberately not
printed; this command exists to verify backend configuration.
`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configManager.LoadConfig()
			logger := newLogger(cfg)

			store, err := creds.NewStore(cfg.Creds, logger)
			if err != nil {
				initFatal(err, "initializing credential store")
			}

			// Transient backend failures are retried; a definitive
			// not-found is not.
			var cred benchvalid.Credential
			var lookupErr error
			retry.Do(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Network)
				defer cancel()
				cred, lookupErr = store.VMCredentials(ctx, spec)
				var nfe benchvalid.NotFoundError
				if errors.As(lookupErr, &nfe) {
					return nil
				}
				return lookupErr
			}, retry.WithMaxAttempts(cfg.Retry.MaxRetries), retry.WithInterval(cfg.Retry.Interval))
			if lookupErr != nil {
				initFatal(lookupErr, "resolving credentials")
			}

			fmt.Printf("host: %s\nusername: %s\n", cred.Host, cred.Username)
		},
	}

	getCmd.Flags().StringVar(&spec.Benchmark, "benchmark", "", "Benchmark name (CIS, DISA)")
	getCmd.Flags().StringVar(&spec.OS, "os", "", "Operating system name")
	getCmd.Flags().StringVar(&spec.Version, "version", "", "Operating system version")
	getCmd.Flags().StringVar(&spec.Type, "type", "compliance", "Credential type (compliance, not-compliance)")
	getCmd.Flags().StringVar(&spec.Service, "service", "server", "Service type (server, database)")
	getCmd.MarkFlagRequired("benchmark")
	getCmd.MarkFlagRequired("os")
	getCmd.MarkFlagRequired("version")

	credsCmd.AddCommand(getCmd)
	return credsCmd
}
