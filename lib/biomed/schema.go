package biomed

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The upstream payloads are dynamically typed on the wire, so each body is
// checked against a schema before it is decoded into a struct. A missing key
// or wrong type is an ErrBadResponse, never a silent zero value.

var nerSchema = jsonschema.MustCompileString("ner.json", `{
	"type": "object",
	"required": ["input_text", "entities", "total_entities"],
	"properties": {
		"input_text": {"type": "string"},
		"total_entities": {"type": "integer"},
		"entities": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["word", "entity_group", "score", "start", "end"],
				"properties": {
					"word": {"type": "string"},
					"entity_group": {"type": "string"},
					"score": {"type": "number", "minimum": 0, "maximum": 1},
					"start": {"type": "integer", "minimum": 0},
					"end": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`)

var summarySchema = jsonschema.MustCompileString("summary.json", `{
	"type": "object",
	"required": ["original_text", "summary", "original_length", "summary_length", "compression_ratio"],
	"properties": {
		"original_text": {"type": "string"},
		"summary": {"type": "string"},
		"original_length": {"type": "integer"},
		"summary_length": {"type": "integer"},
		"compression_ratio": {"type": "number"},
		"max_length": {"type": "integer"},
		"min_length": {"type": "integer"}
	}
}`)

var healthSchema = jsonschema.MustCompileString("health.json", `{
	"type": "object",
	"required": ["status", "models_loaded"],
	"properties": {
		"status": {"type": "string"},
		"models_loaded": {
			"type": "object",
			"required": ["ner", "summarizer"],
			"properties": {
				"ner": {"type": "boolean"},
				"summarizer": {"type": "boolean"}
			}
		}
	}
}`)

func validateAgainstSchema(schema *jsonschema.Schema, raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return wrapError(ErrBadResponse, "invalid json", err)
	}
	if err := schema.Validate(v); err != nil {
		return wrapError(ErrBadResponse, err.Error(), err)
	}
	return nil
}
