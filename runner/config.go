package runner

import (
	"os"

	"github.com/notargets/DGReduce/partitions"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for creating a Runner
type Config struct {
	// Parallelism is the target number of partitions and concurrent
	// workers; 0 means runtime.NumCPU()
	Parallelism int `yaml:"parallelism"`

	// MinPartitionSize keeps partitions from shrinking below this many
	// elements; 0 or 1 means no bound
	MinPartitionSize int `yaml:"min_partition_size"`

	// SequentialCombine folds partition accumulators left to right on the
	// calling goroutine instead of combining them as a parallel tree
	SequentialCombine bool `yaml:"sequential_combine"`

	// Strategy is "balanced" (default) or "block"
	Strategy string `yaml:"strategy"`
}

// Validate checks the configuration values
func (c Config) Validate() error {
	if c.Parallelism < 0 {
		return errors.Errorf("parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.MinPartitionSize < 0 {
		return errors.Errorf("min_partition_size must be >= 0, got %d", c.MinPartitionSize)
	}
	if _, err := c.partitionStrategy(); err != nil {
		return err
	}
	return nil
}

func (c Config) partitionStrategy() (partitions.PartitionStrategy, error) {
	switch c.Strategy {
	case "", "balanced":
		return partitions.BalancedBlock, nil
	case "block":
		return partitions.BlockPartition, nil
	default:
		return 0, errors.Errorf("unknown partition strategy %q", c.Strategy)
	}
}

// LoadConfig reads a Config from a YAML file
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading runner config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing runner config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.WithMessagef(err, "runner config %s", path)
	}
	return cfg, nil
}
