package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// WiringRepository stores the test wiring of a transformation as one JSON
// file under <root>/wirings/, keyed by transformation id.
type WiringRepository struct {
	root string
}

// NewWiringRepository creates a new wiring repository.
func NewWiringRepository(root string) *WiringRepository {
	return &WiringRepository{root: root}
}

func (r *WiringRepository) dir() string {
	return path.Join(r.root, "wirings")
}

// GetByTransformation loads the stored test wiring for a transformation.
func (r *WiringRepository) GetByTransformation(_ context.Context, transformationID string) (*models.TestWiring, error) {
	filePath := filepath.Clean(path.Join(r.dir(), transformationID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewTransformationError("GetWiring", transformationID, persistence.ErrWiringNotFound)
		}

		return nil, fmt.Errorf("failed to read wiring for %s: %w", transformationID, err)
	}

	var wiring models.TestWiring

	err = json.Unmarshal(body, &wiring)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal wiring for %s: %w", transformationID, err)
	}

	return &wiring, nil
}

// Save writes the test wiring of a transformation, replacing any previous one.
func (r *WiringRepository) Save(_ context.Context, transformationID string, wiring *models.TestWiring) error {
	err := os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create wirings directory: %w", err)
	}

	data, err := json.MarshalIndent(wiring, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wiring for %s: %w", transformationID, err)
	}

	filePath := filepath.Clean(path.Join(r.dir(), transformationID+".json"))

	err = os.WriteFile(filePath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write wiring for %s: %w", transformationID, err)
	}

	return nil
}

// Delete removes the stored wiring, if any.
func (r *WiringRepository) Delete(_ context.Context, transformationID string) error {
	filePath := filepath.Clean(path.Join(r.dir(), transformationID+".json"))

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete wiring for %s: %w", transformationID, err)
	}

	return nil
}
