package main

import (
	"os"

	"github.com/notargets/DGReduce/runner"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultLength = 1 << 20
	defaultSeed   = 1
)

// cliConfig is the runner configuration plus the input generation and
// device settings of the run command
type cliConfig struct {
	runner.Config `yaml:",inline"`

	Device string `yaml:"device"`
	Length int    `yaml:"length"`
	Seed   int64  `yaml:"seed"`
}

func loadCLIConfig(path string) (cliConfig, error) {
	cfg := cliConfig{Length: defaultLength, Seed: defaultSeed}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if cfg.Length < 0 {
		return cfg, errors.Errorf("config %s: negative length %d", path, cfg.Length)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}
