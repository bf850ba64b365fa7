package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryOverride extends one crisis category's lexicon.
type CategoryOverride struct {
	Keywords []string `yaml:"keywords"`
	Severity []string `yaml:"severity"`
}

// Overrides is the optional YAML deployment tuning file: extra lexicon
// phrases per category and extra blocked phrases for the validator.
//
// Example:
//
//	keywords:
//	  self_harm:
//	    keywords: ["local slang phrase"]
//	    severity: ["this weekend"]
//	blocked_phrases:
//	  - "specific local method"
type Overrides struct {
	Keywords       map[string]CategoryOverride `yaml:"keywords"`
	BlockedPhrases []string                    `yaml:"blocked_phrases"`
}

// LoadOverrides reads and parses an overrides file. A missing path is not
// an error; it yields empty overrides.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return &Overrides{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("read overrides: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return &o, nil
}
