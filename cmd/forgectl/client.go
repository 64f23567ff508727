package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cheatbot1234/thrust-vector-forge/pkg/thrustforge"
)

// clientFlags carries the flags every command that opens a client shares.
type clientFlags struct {
	config      string
	storeKind   string
	storePath   string
	advancedURL string
	timeout     time.Duration
	propellants string
	artifacts   string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.config, "config", "", "INI config file")
	flags.StringVar(&f.storeKind, "store", "", "store backend: memory or sqlite")
	flags.StringVar(&f.storePath, "db", "", "sqlite database path")
	flags.StringVar(&f.advancedURL, "advanced-url", "", "base URL of the advanced model service")
	flags.DurationVar(&f.timeout, "advanced-timeout", 0, "advanced model call budget")
	flags.StringVar(&f.propellants, "propellants", "", "INI file with extra propellant profiles")
	flags.StringVar(&f.artifacts, "artifacts", "", "study artifacts directory")
}

// resolve layers the flag values over the config file and its defaults.
func (f *clientFlags) resolve(cmd *cobra.Command) (serviceConfig, error) {
	cfg, err := loadServiceConfig(f.config)
	if err != nil {
		return serviceConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.StoreKind = f.storeKind
	}
	if flags.Changed("db") {
		cfg.StorePath = f.storePath
	}
	if flags.Changed("advanced-url") {
		cfg.AdvancedURL = f.advancedURL
	}
	if flags.Changed("advanced-timeout") {
		cfg.AdvancedTimeout = f.timeout
	}
	if flags.Changed("propellants") {
		cfg.PropellantFile = f.propellants
	}
	if flags.Changed("artifacts") {
		cfg.ArtifactsDir = f.artifacts
	}
	return cfg, nil
}

func newClient(cfg serviceConfig, withMetrics bool) (*thrustforge.Client, error) {
	return thrustforge.New(thrustforge.Options{
		StoreKind:       cfg.StoreKind,
		StorePath:       cfg.StorePath,
		AdvancedURL:     cfg.AdvancedURL,
		AdvancedTimeout: cfg.AdvancedTimeout,
		PropellantFile:  cfg.PropellantFile,
		ArtifactsDir:    cfg.ArtifactsDir,
		Workers:         cfg.Workers,
		Metrics:         withMetrics,
	})
}
