package story

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteStoryboard writes a storyboard to a YAML file
func WriteStoryboard(sb *Storyboard, path string) error {
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadStoryboard reads a storyboard from a YAML file and validates its steps
func ReadStoryboard(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := Validate(sb.Steps); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &sb, nil
}
