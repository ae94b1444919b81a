package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"storefront/internal/config"
)

// LoadConfig reads a YAML file on top of config.Default, so a file only
// needs the keys it changes.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
