package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

//go:generate go run ../tools/schema-generator ../schema

// GenerateSchema generates the JSON Schema for sheetsync.yml.
// Known sections are closed; unknown top-level keys are allowed because they
// hold extensions such as the logging section.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "sheetsync Configuration"
	schema.Description = "Schema for sheetsync.yml and sheetsync.toml."
	schema.AdditionalProperties = jsonschema.TrueSchema

	return json.MarshalIndent(schema, "", "  ")
}
