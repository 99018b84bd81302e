package config

import "fmt"

// MissingConfigError reports a rules file path that does not exist.
type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("rules file missing: %s", e.Path)
}

// InvalidYAMLError reports a rules file that is not a valid yaml document.
type InvalidYAMLError struct {
	Path    string
	Wrapped error
}

func (e *InvalidYAMLError) Error() string {
	return fmt.Sprintf("rules file %s is not a valid yaml document: %v", e.Path, e.Wrapped)
}

func (e *InvalidYAMLError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfigError reports a rules file that parsed but failed schema
// validation.
type InvalidConfigError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("rules file %s is invalid: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Wrapped
}
