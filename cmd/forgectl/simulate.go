package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

func simulateCmd() *cobra.Command {
	var flags clientFlags
	var paramsFile string
	var modelName string
	var propellantName string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one steady-state prediction and print the result",
		Long: "Run one steady-state prediction and print the result as JSON. " +
			"Without --params the reference engine is simulated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			req, err := loadSimulationRequest(paramsFile)
			if err != nil {
				return err
			}
			if modelName != "" {
				req.Model = modelName
			}
			if propellantName != "" {
				req.Propellant = propellantName
			}

			client, err := newClient(cfg, false)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Simulate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&paramsFile, "params", "", "JSON file with geometry and operating point")
	cmd.Flags().StringVar(&modelName, "model", "", "performance model: auto, core or advanced")
	cmd.Flags().StringVar(&propellantName, "propellant", "", "propellant profile name")
	return cmd
}

// loadSimulationRequest reads a request from a JSON file; an empty path
// yields the default engine.
func loadSimulationRequest(path string) (model.SimulationRequest, error) {
	req := model.SimulationRequest{
		Geometry:  model.DefaultEngineGeometry(),
		Operating: model.DefaultOperatingPoint(),
	}
	if path == "" {
		return req, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SimulationRequest{}, fmt.Errorf("read params %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return model.SimulationRequest{}, fmt.Errorf("parse params %s: %w", path, err)
	}
	return req, nil
}
