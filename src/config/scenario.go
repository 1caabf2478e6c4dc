package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/username/jamtax/src/models"
	"gopkg.in/yaml.v3"
)

// LoadScenario reads a YAML scenario file. Fields the file leaves out keep the
// built-in default values.
func LoadScenario(path string) (models.EvaluationInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.EvaluationInput{}, fmt.Errorf("error reading scenario file '%s': %w", path, err)
	}
	in, err := ParseScenario(bytes.NewReader(data))
	if err != nil {
		return models.EvaluationInput{}, fmt.Errorf("error parsing scenario file '%s': %w", path, err)
	}
	return in, nil
}

// ParseScenario decodes a YAML scenario on top of models.DefaultEvaluationInput.
// Unknown keys are rejected so typos in rate names do not silently fall back to defaults.
func ParseScenario(r io.Reader) (models.EvaluationInput, error) {
	in := models.DefaultEvaluationInput()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && err != io.EOF {
		return models.EvaluationInput{}, err
	}
	return in, nil
}

// DefaultInput returns the configured default scenario, or the built-in one when
// SCENARIO_PATH is unset.
func DefaultInput() (models.EvaluationInput, error) {
	if Cfg == nil || Cfg.ScenarioPath == "" {
		return models.DefaultEvaluationInput(), nil
	}
	return LoadScenario(Cfg.ScenarioPath)
}
