package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"claimflow/internal/domain"
)

var (
	textSchema   = map[string]any{"type": []any{"string", "number"}}
	numberSchema = map[string]any{"type": "number"}
	listSchema   = map[string]any{"type": "array", "items": textSchema}
)

func objectSchema(props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

// compileSchema compiles the shape a sanitized backend response must have.
func compileSchema(docType domain.DocumentType, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", docType, err)
	}
	url := string(docType) + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", docType, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", docType, err)
	}
	return schema, nil
}

// validateFields checks sanitized fields against the schema.
func validateFields(schema *jsonschema.Schema, fields Fields) error {
	if schema == nil {
		return nil
	}
	if err := schema.Validate(map[string]any(fields)); err != nil {
		return &domain.ParseError{Err: fmt.Errorf("response does not match schema: %w", err)}
	}
	return nil
}
