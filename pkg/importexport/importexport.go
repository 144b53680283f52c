// Package importexport moves transformation documents in and out of the
// designer as JSON.
package importexport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// ErrInvalidDocument is returned when an imported document fails schema
// validation. Nothing is persisted in that case.
var ErrInvalidDocument = errors.New("invalid transformation document")

// ErrAlreadyExists is returned when importing a document whose id is already
// stored and overwrite was not requested.
var ErrAlreadyExists = errors.New("transformation already exists")

// transformationSchema is the structural contract for imported documents.
// Content is validated per type after decoding, the schema only pins the
// envelope.
const transformationSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "revision_group_id", "name", "category", "version_tag", "state", "type", "content", "io_interface"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"revision_group_id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"category": {"type": "string", "minLength": 1},
		"version_tag": {"type": "string", "minLength": 1},
		"released_timestamp": {"type": ["string", "null"]},
		"disabled_timestamp": {"type": ["string", "null"]},
		"state": {"enum": ["DRAFT", "RELEASED", "DISABLED"]},
		"type": {"enum": ["COMPONENT", "WORKFLOW"]},
		"documentation": {"type": "string"},
		"content": {"type": ["string", "object"]},
		"io_interface": {
			"type": "object",
			"required": ["inputs", "outputs"],
			"properties": {
				"inputs": {"type": "array"},
				"outputs": {"type": "array"}
			}
		},
		"test_wiring": {"type": "object"}
	}
}`

var schema = gojsonschema.NewStringLoader(transformationSchema)

// Importer validates and stores transformation documents.
type Importer struct {
	persistence persistence.Persistence
}

func NewImporter(p persistence.Persistence) *Importer {
	return &Importer{persistence: p}
}

// Import validates a raw document against the schema, decodes it, checks the
// graph invariants, and persists it atomically. Overwrite allows replacing an
// existing revision with the same id.
func (i *Importer) Import(ctx context.Context, document []byte, overwrite bool) (*models.Transformation, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, schemaErrors(result))
	}

	transformation := &models.Transformation{}
	if err := json.Unmarshal(document, transformation); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err)
	}

	if content, ok := transformation.WorkflowContent(); ok {
		if err := content.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err)
		}
	}

	if !overwrite {
		if _, err := i.persistence.TransformationRepository().GetByID(ctx, transformation.ID); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, transformation.ID)
		}
	}

	if err := i.persistence.TransformationRepository().Save(ctx, transformation); err != nil {
		return nil, err
	}

	return transformation, nil
}

// Export renders the stored revision as its canonical JSON document.
func (i *Importer) Export(ctx context.Context, id string) ([]byte, error) {
	transformation, err := i.persistence.TransformationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(transformation, "", "  ")
}

func schemaErrors(result *gojsonschema.Result) string {
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return strings.Join(messages, "; ")
}
