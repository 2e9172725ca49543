package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema returns the JSON schema of the configuration file. Field names are the
// ones used on the TOML files
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:   "mapstructure",
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "Bonder node configuration"
	return json.MarshalIndent(schema, "", "  ")
}
