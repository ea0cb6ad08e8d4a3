package config

import "github.com/nao1215/seoscan/internal/analysis"

// ProjectConfig holds the settings of one project.
type ProjectConfig struct {
	// Name is the display name stored when a crawl is imported.
	Name string `yaml:"name,omitempty"`

	// Thresholds override the global thresholds for this project.
	// Unset fields keep the inherited value.
	Thresholds analysis.Thresholds `yaml:"thresholds,omitempty"`
}

// File represents the structure of the .seoscan configuration file.
type File struct {
	// Defaults apply to every project unless overridden per project.
	Defaults ProjectConfig `yaml:"defaults,omitempty"`

	// Projects maps project ids to their settings.
	Projects map[string]ProjectConfig `yaml:"projects,omitempty"`
}

// GetProjectConfig returns the configuration of a project: the defaults
// with every field the project sets taking precedence.
func (cf *File) GetProjectConfig(projectID string) ProjectConfig {
	result := cf.Defaults

	if p, ok := cf.Projects[projectID]; ok {
		if p.Name != "" {
			result.Name = p.Name
		}
		result.Thresholds = result.Thresholds.Merge(p.Thresholds)
	}

	return result
}
