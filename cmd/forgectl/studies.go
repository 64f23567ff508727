package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func studiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studies",
		Short: "Inspect stored optimization studies",
	}
	cmd.AddCommand(studiesListCmd())
	cmd.AddCommand(studiesShowCmd())
	cmd.AddCommand(studiesContinueCmd())
	cmd.AddCommand(studiesExportCmd())
	cmd.AddCommand(studiesDeleteCmd())
	return cmd
}

func studiesListCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored studies, newest first",
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

			summaries, err := client.Studies(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summaries)
		},
	}

	flags.register(cmd)
	return cmd
}

func studiesShowCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "show [study-id]",
		Short: "Print one study record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			study, ok, err := client.Study(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("study not found: %s", args[0])
			}
			return printJSON(cmd.OutOrStdout(), study)
		},
	}

	flags.register(cmd)
	return cmd
}

func studiesContinueCmd() *cobra.Command {
	var flags clientFlags
	var trials int

	cmd := &cobra.Command{
		Use:   "continue [study-id]",
		Short: "Append more sampled trials to a finished study and run them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			final, err := client.ContinueStudyWait(cmd.Context(), args[0], trials)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), optimizeSummary{
				StudyID:    final.ID,
				State:      final.State,
				Trials:     len(final.Trials),
				BestTrials: final.BestTrials,
				Importance: final.Importance,
				FailReason: final.FailReason,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&trials, "trials", 10, "number of trials to append")
	return cmd
}

func studiesExportCmd() *cobra.Command {
	var flags clientFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [study-id]",
		Short: "Write a study's artifacts to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			dir, err := client.ExportStudy(cmd.Context(), args[0], outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "exports", "export output directory")
	return cmd
}

func studiesDeleteCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "delete [study-id]",
		Short: "Delete a stored study",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			return client.DeleteStudy(cmd.Context(), args[0])
		},
	}

	flags.register(cmd)
	return cmd
}
