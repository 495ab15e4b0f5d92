package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fetch",
		Short:         "Issue HTTP calls through an interceptor pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./fetch.yml, ./config.yml or ~/.config/fetch/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file loaded before FETCH_ overrides")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging and startup summary")

	cmd.AddCommand(newCallCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}
