package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the file name of a project configuration.
const ProjectFile = "project.yml"

// Load loads configuration with priority: defaults < file. explicitPath wins
// over the files found in projectDir. It returns the path that was read, or
// "" when the defaults were used.
func Load(projectDir, explicitPath string) (*Config, string, error) {
	cfg := Default()

	configPath := explicitPath
	if configPath == "" {
		configPath = findConfigFile(projectDir)
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, "", fmt.Errorf("config: loading %s: %w", configPath, err)
		}
	}
	return cfg, configPath, nil
}

// findConfigFile looks for a project file in dir.
func findConfigFile(dir string) string {
	for _, name := range []string{ProjectFile, "project.yaml", "pixelgraph.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadFromFile loads config from a YAML file, merging with existing values.
// A file that lists profiles replaces the default profile list.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg.Profiles = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	for i := range cfg.Profiles {
		cfg.Profiles[i].applyDefaults()
	}
	return nil
}

func (p *ProfileConfig) applyDefaults() {
	def := DefaultProfile()
	if p.Format == "" {
		p.Format = def.Format
	}
	if p.ImageExtensions == nil {
		p.ImageExtensions = def.ImageExtensions
	}
	if p.IgnorePaths == nil {
		p.IgnorePaths = def.IgnorePaths
	}
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
