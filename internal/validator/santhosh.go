package validator

import (
	"bytes"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// santhoshValidator wraps jsonschema.Schema to implement Validator.
type santhoshValidator struct {
	v *jsonschema.Schema
}

// NewSanthosh compiles the given schema document under the given resource
// name and returns a Validator for it.
// Using the santhosh-tekuri/jsonschema/v6 package.
func NewSanthosh(name string, schema []byte) (Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, err
	}

	s, err := c.Compile(name)
	if err != nil {
		return nil, err
	}
	return &santhoshValidator{v: s}, nil
}

// Validate adapts jsonschema.Schema.Validate to match the Validator interface.
func (sv *santhoshValidator) Validate(doc Document) error {
	return sv.v.Validate(doc)
}
