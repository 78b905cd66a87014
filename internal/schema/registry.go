package schema

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"csvsink/pkg/errors"
)

// Registry maps each stream to its current compiled validator and key
// properties. A stream's entry is replaced wholesale when a new schema
// declaration arrives for it.
type Registry struct {
	validators    map[string]*gojsonschema.Schema
	keyProperties map[string][]string
}

func NewRegistry() *Registry {
	return &Registry{
		validators:    make(map[string]*gojsonschema.Schema),
		keyProperties: make(map[string][]string),
	}
}

// Declare compiles the schema and installs it for stream, replacing any
// prior declaration.
func (r *Registry) Declare(stream string, schemaJSON json.RawMessage, keyProperties []string) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return errors.ErrDecode.
			WithMessage("unable to compile schema for stream %s", stream).
			WithCause(err)
	}

	r.validators[stream] = compiled
	r.keyProperties[stream] = keyProperties
	return nil
}

func (r *Registry) ValidatorFor(stream string) (*gojsonschema.Schema, error) {
	v, ok := r.validators[stream]
	if !ok {
		return nil, errors.ErrUnknownStream.
			WithMessage("a record for stream %s was encountered before a corresponding schema", stream).
			WithDetail("stream", stream)
	}
	return v, nil
}

func (r *Registry) KeyProperties(stream string) []string {
	return r.keyProperties[stream]
}

func (r *Registry) Declared(stream string) bool {
	_, ok := r.validators[stream]
	return ok
}

// Validate checks the raw record payload against the stream's current
// schema. Records must never outrun their schema: a missing declaration
// and a constraint violation are both fatal to the run.
func (r *Registry) Validate(stream string, record json.RawMessage) error {
	v, err := r.ValidatorFor(stream)
	if err != nil {
		return err
	}

	result, err := v.Validate(gojsonschema.NewBytesLoader(record))
	if err != nil {
		return errors.ErrSchemaValidation.
			WithMessage("unable to validate record for stream %s", stream).
			WithCause(err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		fields := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			violations = append(violations, re.String())
			fields = append(fields, re.Field())
		}
		return errors.ErrSchemaValidation.
			WithMessage("record for stream %s failed validation: %s", stream, strings.Join(violations, "; ")).
			WithDetail("stream", stream).
			WithDetail("fields", fields)
	}

	return nil
}
