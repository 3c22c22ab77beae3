package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"
)

const schemaResource = "schema.json"

// loadSchema compiles a JSON Schema file. Comments and trailing commas are
// stripped first, so JSONC schema files work too.
func loadSchema(path string) (*jsonschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(jsonc.ToJSON(data))); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateSchema(schema *jsonschema.Schema, data map[string]any) error {
	if err := schema.Validate(data); err != nil {
		return fmt.Errorf("decoded data does not match schema: %w", err)
	}
	return nil
}
