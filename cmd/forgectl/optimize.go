package main

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// optimizeSummary is what the command prints after a finished run.
type optimizeSummary struct {
	StudyID    string             `json:"study_id"`
	State      string             `json:"state"`
	Trials     int                `json:"trials"`
	BestTrials []model.Trial      `json:"best_trials"`
	Importance map[string]float64 `json:"importance,omitempty"`
	FailReason string             `json:"fail_reason,omitempty"`
}

func optimizeCmd() *cobra.Command {
	var flags clientFlags
	var studyFile string
	var trials int
	var workers int
	var sampler string
	var seed int64

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Create a study from a config file, run it and print the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			studyCfg, err := loadStudyConfig(studyFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trials") {
				studyCfg.Trials = trials
			}
			if cmd.Flags().Changed("workers") {
				studyCfg.Workers = workers
			}
			if cmd.Flags().Changed("sampler") {
				studyCfg.Sampler = sampler
			}
			if cmd.Flags().Changed("seed") {
				studyCfg.Seed = seed
			}

			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			study, err := client.CreateStudy(cmd.Context(), studyCfg)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"study":   study.ID,
				"trials":  study.Config.Trials,
				"workers": study.Config.Workers,
				"sampler": study.Config.Sampler,
			}).Info("study created")

			final, err := client.RunStudyWait(cmd.Context(), study.ID)
			if err != nil {
				return err
			}

			summary := optimizeSummary{
				StudyID:    final.ID,
				State:      final.State,
				Trials:     len(final.Trials),
				BestTrials: final.BestTrials,
				Importance: final.Importance,
				FailReason: final.FailReason,
			}
			if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if final.State == model.StudyFailed {
				return fmt.Errorf("study %s failed: %s", final.ID, final.FailReason)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&studyFile, "study", "", "JSON study config file (required)")
	cmd.Flags().IntVar(&trials, "trials", 0, "override trial count")
	cmd.Flags().IntVar(&workers, "workers", 0, "override worker count")
	cmd.Flags().StringVar(&sampler, "sampler", "", "override sampler: random or grid")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override sampling seed")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

func loadStudyConfig(path string) (model.StudyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.StudyConfig{}, fmt.Errorf("read study config %s: %w", path, err)
	}
	var cfg model.StudyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.StudyConfig{}, fmt.Errorf("parse study config %s: %w", path, err)
	}
	return cfg, nil
}
