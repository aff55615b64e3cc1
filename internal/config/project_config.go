package config

import (
	"os"
	"sort"

	copmerrors "github.com/samhoang/copm/internal/errors"
)

// Dependency is one entry of copm.json
type Dependency struct {
	Source  string `json:"source"`
	Version string `json:"version"`
	SubPath string `json:"subPath,omitempty"`
}

// ProjectConfig represents copm.json
type ProjectConfig struct {
	Tools        []string              `json:"tools"`
	Dependencies map[string]Dependency `json:"dependencies"`
}

// DefaultProjectConfig returns a config targeting copilot with no dependencies
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Tools:        []string{ToolCopilot},
		Dependencies: map[string]Dependency{},
	}
}

// LoadProjectConfig loads copm.json, returning ErrConfigNotFound when absent
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	if err := readJSONFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, copmerrors.ErrConfigNotFound
		}
		return nil, err
	}

	if len(cfg.Tools) == 0 {
		cfg.Tools = []string{ToolCopilot}
	}
	if cfg.Dependencies == nil {
		cfg.Dependencies = map[string]Dependency{}
	}

	return cfg, nil
}

// Save writes copm.json to disk
func (c *ProjectConfig) Save(path string) error {
	if c.Dependencies == nil {
		c.Dependencies = map[string]Dependency{}
	}
	return writeJSONFile(path, c)
}

// AddDependency inserts or replaces a dependency by name
func (c *ProjectConfig) AddDependency(name string, dep Dependency) {
	if c.Dependencies == nil {
		c.Dependencies = map[string]Dependency{}
	}
	c.Dependencies[name] = dep
}

// RemoveDependency deletes a dependency, reporting whether it existed
func (c *ProjectConfig) RemoveDependency(name string) bool {
	if _, ok := c.Dependencies[name]; !ok {
		return false
	}
	delete(c.Dependencies, name)
	return true
}

// DependencyNames returns dependency names in sorted order
func (c *ProjectConfig) DependencyNames() []string {
	names := make([]string, 0, len(c.Dependencies))
	for name := range c.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
