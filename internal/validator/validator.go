// Package validator provides JSON Schema validation for decoded documents.
package validator

// A Document is a parsed document - i.e. the result of json.Unmarshal() or
// yaml.Unmarshal() into an interface value.
type Document interface{}

// Validator represents something which can be used to validate a document.
type Validator interface {
	// Validate validates the document.
	Validate(doc Document) error
}
