package recipe

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Recipe is the decoded form of a recipe document.
// The root level is the unnamed namespace.
type Recipe struct {
	Env        map[string]string        `mapstructure:"env"`
	Tasks      map[string]TaskSpec      `mapstructure:"tasks"`
	Namespaces map[string]NamespaceSpec `mapstructure:"namespaces"`
}

// NamespaceSpec groups tasks and further namespaces under a name.
type NamespaceSpec struct {
	Desc       string                   `mapstructure:"desc"`
	Tasks      map[string]TaskSpec      `mapstructure:"tasks"`
	Namespaces map[string]NamespaceSpec `mapstructure:"namespaces"`
}

// TaskSpec describes one task.
// Run, Invoke and Rollback accept either a single string or a list.
type TaskSpec struct {
	Desc        string            `mapstructure:"desc"`
	Run         []string          `mapstructure:"run"`
	Call        string            `mapstructure:"call"`
	With        map[string]any    `mapstructure:"with"`
	Invoke      []string          `mapstructure:"invoke"`
	Transaction bool              `mapstructure:"transaction"`
	Rollback    []string          `mapstructure:"rollback"`
	Env         map[string]string `mapstructure:"env"`
}

// Load reads and parses the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML (or JSON) recipe document. Unknown keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}

	var r Recipe
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &r,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	return &r, nil
}
