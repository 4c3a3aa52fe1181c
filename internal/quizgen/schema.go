package quizgen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled quiz schemas by option count.
var schemaCache sync.Map // map[int]*jsonschema.Schema

// QuizSchema returns the JSON Schema for a quiz whose questions each carry
// exactly optionCount options and a correct_answer drawn from the first
// optionCount labels. explanation is optional but must be a string.
func QuizSchema(optionCount int) map[string]any {
	labels := Labels(optionCount)
	enum := make([]any, len(labels))
	for i, l := range labels {
		enum[i] = l
	}

	return map[string]any{
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"question", "options", "correct_answer"},
					"properties": map[string]any{
						"question": map[string]any{
							"type":      "string",
							"minLength": 1,
						},
						"options": map[string]any{
							"type":     "array",
							"minItems": optionCount,
							"maxItems": optionCount,
							"items":    map[string]any{"type": "string"},
						},
						"correct_answer": map[string]any{
							"type": "string",
							"enum": enum,
						},
						"explanation": map[string]any{
							"type": "string",
						},
					},
				},
			},
		},
	}
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(optionCount int) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(optionCount); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, so round-trip the
	// definition to normalize Go ints into JSON numbers.
	defBytes, err := json.Marshal(QuizSchema(optionCount))
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://quiz-%d-options.json", optionCount)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(optionCount, compiled)
	return compiled, nil
}
