package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"ui_verification/domain/entities"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a scenario file
type File struct {
	Scenarios []entities.Scenario `yaml:"scenarios"`
}

// LoadFile reads and validates scenarios from a YAML file
func LoadFile(path string) ([]entities.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenarios, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// Decode parses scenarios from YAML. Unknown fields are rejected so typos
// in assertion keys do not silently drop checks.
func Decode(r io.Reader) ([]entities.Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no scenarios defined", entities.ErrInvalidScenario)
		}
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", entities.ErrInvalidScenario)
	}

	seen := make(map[string]bool, len(file.Scenarios))
	for i, s := range file.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: scenario %d has no name", entities.ErrInvalidScenario, i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario name %q", entities.ErrInvalidScenario, s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	return file.Scenarios, nil
}

// Encode writes scenarios in the same layout Decode reads
func Encode(w io.Writer, scenarios ...entities.Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Scenarios: scenarios}); err != nil {
		return fmt.Errorf("failed to encode scenarios: %w", err)
	}
	return enc.Close()
}
