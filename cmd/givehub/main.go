package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "givehub",
		Short:         "Command-line client for the GiveHub fundraising API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	a.bindFlags(rootCmd)

	rootCmd.AddCommand(
		configCmd(),
		loginCmd(a),
		registerCmd(a),
		verifyCmd(a),
		sessionCmd(a),
		campaignsCmd(a),
		donationsCmd(a),
		impactCmd(a),
		updatesCmd(a),
		notificationsCmd(a),
	)

	return rootCmd
}
