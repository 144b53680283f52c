package importexport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
	"github.com/flowdesk/flowdesk/pkg/persistence/file"
)

func testPersistence(t *testing.T) persistence.Persistence {
	t.Helper()

	return file.NewPersistence("file://" + t.TempDir())
}

const componentDocument = `{
	"id": "c59e5b69-6bb4-4cec-b2b6-0a1ba3ad0a0f",
	"revision_group_id": "3e1b0bbe-10dd-4fd6-8f24-22153dd4a05a",
	"name": "Moving Average",
	"category": "Smoothing",
	"version_tag": "1.0.0",
	"state": "RELEASED",
	"type": "COMPONENT",
	"content": "def main(*, series):\n    return {\"smoothed\": series}\n",
	"io_interface": {
		"inputs": [{"id": "in-1", "name": "series", "data_type": "SERIES"}],
		"outputs": [{"id": "out-1", "name": "smoothed", "data_type": "SERIES"}]
	}
}`

func TestImporter_ImportComponent(t *testing.T) {
	importer := NewImporter(testPersistence(t))

	imported, err := importer.Import(context.Background(), []byte(componentDocument), false)
	require.NoError(t, err)

	assert.Equal(t, "Moving Average", imported.Name)
	assert.Equal(t, models.TypeComponent, imported.Type)

	content, ok := imported.ComponentContent()
	require.True(t, ok)
	assert.Contains(t, content.Code, "def main")
}

func TestImporter_ImportRejectsEnvelopeViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing id", func(doc map[string]any) { delete(doc, "id") }},
		{"empty name", func(doc map[string]any) { doc["name"] = "" }},
		{"unknown state", func(doc map[string]any) { doc["state"] = "ARCHIVED" }},
		{"unknown type", func(doc map[string]any) { doc["type"] = "PIPELINE" }},
		{"missing io_interface", func(doc map[string]any) { delete(doc, "io_interface") }},
		{"content wrong kind", func(doc map[string]any) { doc["content"] = 42 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testPersistence(t)
			importer := NewImporter(store)

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(componentDocument), &doc))
			tt.mutate(doc)

			payload, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = importer.Import(context.Background(), payload, false)
			require.ErrorIs(t, err, ErrInvalidDocument)

			listed, err := store.TransformationRepository().List(context.Background(), persistence.ListOptions{})
			require.NoError(t, err)
			assert.Empty(t, listed, "a rejected import leaves no partial state")
		})
	}
}

func TestImporter_ImportRejectsBrokenGraph(t *testing.T) {
	importer := NewImporter(testPersistence(t))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(componentDocument), &doc))
	doc["type"] = "WORKFLOW"
	doc["content"] = map[string]any{
		"operators": []any{},
		"links":     []any{},
		"inputs": []any{map[string]any{
			"id": "io-1", "name": "alpha", "data_type": "SERIES",
			"operator_id": "ghost", "connector_id": "in-1",
		}},
		"outputs":   []any{},
		"constants": []any{},
	}

	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = importer.Import(context.Background(), payload, false)
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), "ghost")
}

func TestImporter_ImportWithoutOverwriteRefusesExisting(t *testing.T) {
	importer := NewImporter(testPersistence(t))

	_, err := importer.Import(context.Background(), []byte(componentDocument), false)
	require.NoError(t, err)

	_, err = importer.Import(context.Background(), []byte(componentDocument), false)
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, err = importer.Import(context.Background(), []byte(componentDocument), true)
	require.NoError(t, err, "overwrite replaces the existing revision")
}

func TestImporter_ExportRoundTrip(t *testing.T) {
	importer := NewImporter(testPersistence(t))

	imported, err := importer.Import(context.Background(), []byte(componentDocument), false)
	require.NoError(t, err)

	exported, err := importer.Export(context.Background(), imported.ID)
	require.NoError(t, err)

	reimported := &models.Transformation{}
	require.NoError(t, json.Unmarshal(exported, reimported))
	assert.Equal(t, imported.Name, reimported.Name)
	assert.Equal(t, imported.VersionTag, reimported.VersionTag)

	content, ok := reimported.ComponentContent()
	require.True(t, ok)
	assert.Contains(t, content.Code, "def main", "component content exports as a plain string")
}
