package packaging

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metadata is the installer description kept alongside the project.
type Metadata struct {
	Name        string    `yaml:"name"`
	Version     string    `yaml:"version"`
	Description string    `yaml:"description"`
	Author      string    `yaml:"author"`
	Build       BuildInfo `yaml:"build"`
}

// BuildInfo identifies the installed product. Window geometry is not
// installer metadata; the shell reads it from its own config.
type BuildInfo struct {
	ProductName string `yaml:"product_name"`
	Copyright   string `yaml:"copyright"`
}

// DefaultMetadata returns the stock Open WebUI installer metadata.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:        "open-webui",
		Version:     "0.4.7",
		Description: "Open WebUI Client Application",
		Author:      "Open WebUI Team",
		Build: BuildInfo{
			ProductName: "Open WebUI",
			Copyright:   "Copyright © 2024",
		},
	}
}

// LoadMetadata reads metadata from a YAML file over the defaults.
func LoadMetadata(path string) (Metadata, error) {
	m := DefaultMetadata()

	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parsing metadata: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// Validate checks the fields the installer cannot do without.
func (m Metadata) Validate() error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	case m.Version == "":
		return fmt.Errorf("%w: version is required", ErrInvalidMetadata)
	case m.Build.ProductName == "":
		return fmt.Errorf("%w: build.product_name is required", ErrInvalidMetadata)
	}
	return nil
}
