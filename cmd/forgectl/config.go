package main

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// serviceConfig collects every tunable the commands share. Values resolve
// flag > config file > default; loadServiceConfig applies the file layer on
// top of the defaults and resolve applies the flag layer on top of that.
type serviceConfig struct {
	Addr            string
	StoreKind       string
	StorePath       string
	AdvancedURL     string
	AdvancedTimeout time.Duration
	PropellantFile  string
	ArtifactsDir    string
	Workers         int
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		Addr:            ":8080",
		StoreKind:       "memory",
		StorePath:       "thrustforge.db",
		AdvancedTimeout: 5 * time.Second,
		ArtifactsDir:    "artifacts",
		Workers:         4,
	}
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}

	server := file.Section("server")
	cfg.Addr = server.Key("addr").MustString(cfg.Addr)

	store := file.Section("store")
	cfg.StoreKind = store.Key("kind").MustString(cfg.StoreKind)
	cfg.StorePath = store.Key("path").MustString(cfg.StorePath)

	advanced := file.Section("advanced")
	cfg.AdvancedURL = advanced.Key("url").MustString(cfg.AdvancedURL)
	timeoutMS := advanced.Key("timeout_ms").MustInt(int(cfg.AdvancedTimeout / time.Millisecond))
	if timeoutMS <= 0 {
		return serviceConfig{}, fmt.Errorf("config %s: advanced.timeout_ms must be > 0", path)
	}
	cfg.AdvancedTimeout = time.Duration(timeoutMS) * time.Millisecond

	paths := file.Section("paths")
	cfg.PropellantFile = paths.Key("propellants").MustString(cfg.PropellantFile)
	cfg.ArtifactsDir = paths.Key("artifacts").MustString(cfg.ArtifactsDir)

	optimizer := file.Section("optimizer")
	cfg.Workers = optimizer.Key("workers").MustInt(cfg.Workers)
	if cfg.Workers <= 0 {
		return serviceConfig{}, fmt.Errorf("config %s: optimizer.workers must be > 0", path)
	}

	return cfg, nil
}
