package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOverrides reads caller overrides for the viewer from a YAML file.
func LoadOverrides(path string) (Overrides, error) {
	var o Overrides
	if err := readYAML(path, &o); err != nil {
		return Overrides{}, err
	}
	return o, nil
}

// Load merges the YAML overrides at path over Default and validates the result.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		o, err := LoadOverrides(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(o)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadGenerator reads a generator config; missing keys keep DefaultGenerator values.
func LoadGenerator(path string) (GeneratorConfig, error) {
	cfg := DefaultGenerator()
	if err := readYAML(path, &cfg); err != nil {
		return GeneratorConfig{}, err
	}
	return cfg, nil
}

func ReadCatalog(path string) (*Catalog, error) {
	var c Catalog
	if err := readYAML(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func WriteCatalog(c *Catalog, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	return nil
}
