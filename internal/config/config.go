// Package config handles project configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrUnknownProfile is returned when a requested publish profile does not
// exist.
var ErrUnknownProfile = errors.New("unknown profile")

// Config holds the project settings and its publish profiles.
type Config struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`

	Input    InputConfig     `yaml:"input"`
	Profiles []ProfileConfig `yaml:"profiles"`
	Logging  LoggingConfig   `yaml:"logging"`

	// Workers is the number of materials built concurrently.
	Workers int `yaml:"workers"`
}

// InputConfig describes how project textures are stored.
type InputConfig struct {
	Format       string `yaml:"format"`
	AutoMaterial bool   `yaml:"auto_material"`
}

// ProfileConfig holds the settings of one publish target.
type ProfileConfig struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
	// Output is a directory, or an archive when it ends in .zip.
	Output      string `yaml:"output"`
	GameVersion string `yaml:"game_version,omitempty"`

	TextureSize      int     `yaml:"texture_size,omitempty"`
	BlockTextureSize int     `yaml:"block_texture_size,omitempty"`
	ItemTextureSize  int     `yaml:"item_texture_size,omitempty"`
	TextureScale     float64 `yaml:"texture_scale,omitempty"`
	Sampler          string  `yaml:"sampler,omitempty"`
	ImageEncoding    string  `yaml:"image_encoding,omitempty"`

	NormalMethod    string          `yaml:"normal_method,omitempty"`
	NormalStrength  float64         `yaml:"normal_strength,omitempty"`
	MultiFrequency  bool            `yaml:"multi_frequency,omitempty"`
	Occlusion       OcclusionConfig `yaml:"occlusion,omitempty"`
	AutoLevelHeight bool            `yaml:"auto_level_height,omitempty"`

	LocalOutput     bool     `yaml:"local_output,omitempty"`
	Clean           bool     `yaml:"clean,omitempty"`
	ImageExtensions []string `yaml:"image_extensions,omitempty"`
	IgnorePaths     []string `yaml:"ignore_paths,omitempty"`
	Manifest        string   `yaml:"manifest,omitempty"`
}

// OcclusionConfig overrides the occlusion generator defaults.
type OcclusionConfig struct {
	Steps             int     `yaml:"steps,omitempty"`
	Quality           float64 `yaml:"quality,omitempty"`
	ZBias             float64 `yaml:"z_bias,omitempty"`
	ZScale            float64 `yaml:"z_scale,omitempty"`
	EmissiveThreshold float64 `yaml:"emissive_threshold,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Name: "pack",
		Input: InputConfig{
			Format: "raw",
		},
		Profiles: []ProfileConfig{DefaultProfile()},
		Logging: LoggingConfig{
			Level: "info",
		},
		Workers: runtime.NumCPU(),
	}
}

// DefaultProfile returns the profile used when a project defines none.
func DefaultProfile() ProfileConfig {
	return ProfileConfig{
		Name:            "default",
		Format:          "lab-1.3",
		ImageExtensions: []string{"png", "tga", "jpg", "jpeg", "bmp"},
		IgnorePaths:     []string{"pack.png"},
	}
}

// Profile returns the named profile. An empty name selects the first one.
func (c *Config) Profile(name string) (*ProfileConfig, error) {
	if name == "" && len(c.Profiles) > 0 {
		return &c.Profiles[0], nil
	}
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("config: %q: %w", name, ErrUnknownProfile)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Profile     string
	Output      string
	Format      string
	InputFormat string
	Workers     int
	LogLevel    string
	LogFile     string
	Clean       bool
}

// Resolve applies flag overrides and fills in defaults. Relative output
// paths are resolved against projectDir.
func (c *Config) Resolve(projectDir string, flags Flags) error {
	if flags.InputFormat != "" {
		c.Input.Format = flags.InputFormat
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
	if flags.LogFile != "" {
		c.Logging.LogFile = flags.LogFile
	}

	if c.Input.Format == "" {
		c.Input.Format = "raw"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if len(c.Profiles) == 0 {
		c.Profiles = []ProfileConfig{DefaultProfile()}
	}

	p, err := c.Profile(flags.Profile)
	if err != nil {
		return err
	}
	if flags.Output != "" {
		p.Output = flags.Output
	}
	if flags.Format != "" {
		p.Format = flags.Format
	}
	if flags.Clean {
		p.Clean = true
	}

	for i := range c.Profiles {
		p := &c.Profiles[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("profile-%d", i+1)
		}
		if p.Output == "" {
			p.Output = filepath.Join(projectDir, "dist", p.Name)
		} else if !filepath.IsAbs(p.Output) {
			p.Output = filepath.Join(projectDir, p.Output)
		}
	}
	return nil
}
