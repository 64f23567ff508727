package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cheatbot1234/thrust-vector-forge/internal/platform"
)

func probeCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the advanced model service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			status, err := client.ProbeAdvanced(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if status == platform.AdvancedUnavailable {
				return fmt.Errorf("advanced model service is unavailable")
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
