package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadConfig reads a batch configuration from a TOML file and applies
// defaults for omitted fields.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.Format == "" {
		cfg.Format = "parquet"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.OutDir == "" {
		return Config{}, fmt.Errorf("config %s: out_dir is required", path)
	}
	if len(cfg.Inputs) == 0 {
		return Config{}, fmt.Errorf("config %s: at least one input is required", path)
	}
	return cfg, nil
}
