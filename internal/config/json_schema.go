package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchemaJSON returns the JSON schema for the configuration document,
// used by the generate command to produce editor tooling support.
func (c *Config) GenerateSchemaJSON() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(c)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
