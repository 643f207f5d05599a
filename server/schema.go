package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tsawler/bomex/learning"
	"github.com/tsawler/bomex/model"
)

// documentSchema validates the pre-extracted document payload before it
// reaches the pipeline (draft 2020-12 subset).
const documentSchema = `{
	"type": "object",
	"required": ["pages"],
	"properties": {
		"source": {"type": "string"},
		"pages": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["number"],
				"properties": {
					"number": {"type": "integer", "minimum": 1},
					"width": {"type": "number", "minimum": 0},
					"height": {"type": "number", "minimum": 0},
					"text": {"type": "string"},
					"tables": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["rows"],
							"properties": {
								"strategy": {"type": "string"},
								"rows": {
									"type": "array",
									"items": {"type": "array", "items": {"type": "string"}}
								}
							}
						}
					},
					"rects": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["x0", "y0", "x1", "y1"],
							"properties": {
								"x0": {"type": "number"},
								"y0": {"type": "number"},
								"x1": {"type": "number"},
								"y1": {"type": "number"}
							}
						}
					},
					"curves": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["points"],
							"properties": {
								"points": {
									"type": "array",
									"items": {
										"type": "object",
										"required": ["x", "y"],
										"properties": {
											"x": {"type": "number"},
											"y": {"type": "number"}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

var compiledDocumentSchema = mustCompileSchema("document.json", documentSchema)

func mustCompileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// decodeDocument validates and decodes an extraction payload.
func decodeDocument(data []byte) (*model.Document, error) {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse document payload: %w", err)
	}
	if err := compiledDocumentSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("document payload does not match schema: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document payload: %w", err)
	}
	return &doc, nil
}

// feedbackRequest is the payload of POST /feedback.
type feedbackRequest struct {
	Ratings []struct {
		Item    *model.BOMItem `json:"item"`
		Correct bool           `json:"correct"`
	} `json:"ratings"`
	Document string         `json:"document,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// feedbackResponse mirrors the learner summary.
type feedbackResponse struct {
	Status  string           `json:"status"`
	Summary learning.Summary `json:"summary"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}
