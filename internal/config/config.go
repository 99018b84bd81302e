// Package config loads the optional YAML rules file.
package config

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/sweep/internal/rule"
	"github.com/andyballingall/sweep/internal/validator"
)

//go:embed schema.json
var rulesSchema []byte

// Config is the decoded rules file. Rules are appended to the built-in
// table unless ReplaceBuiltins is set.
type Config struct {
	ReplaceBuiltins bool        `yaml:"replaceBuiltins"`
	Rules           []rule.Spec `yaml:"rules"`
}

// Load reads, schema-checks and decodes the rules file at path.
//
// The document is validated against an embedded JSON Schema before it is
// decoded into Config, so shape errors (unknown keys, a rule without
// patterns) are reported against the file rather than surfacing later as a
// rule that never matches.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingConfigError{Path: path}
		}
		return nil, err
	}

	var doc validator.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}

	v, err := validator.NewSanthosh("sweep-rules.schema.json", rulesSchema)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(doc); err != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	return &cfg, nil
}
