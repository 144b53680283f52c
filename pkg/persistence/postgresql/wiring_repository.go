package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// WiringRepository stores the test wiring documents in the wirings table.
type WiringRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWiringRepository creates a new wiring repository.
func NewWiringRepository(db *sql.DB, logger *slog.Logger) *WiringRepository {
	return &WiringRepository{db: db, logger: logger}
}

// GetByTransformation loads the stored test wiring for a transformation.
func (r *WiringRepository) GetByTransformation(ctx context.Context, transformationID string) (*models.TestWiring, error) {
	var document []byte

	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM wirings WHERE transformation_id = $1", transformationID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewTransformationError("GetWiring", transformationID, persistence.ErrWiringNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query wiring for %s: %w", transformationID, err)
	}

	var wiring models.TestWiring

	err = json.Unmarshal(document, &wiring)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal wiring for %s: %w", transformationID, err)
	}

	return &wiring, nil
}

// Save upserts the test wiring of a transformation.
func (r *WiringRepository) Save(ctx context.Context, transformationID string, wiring *models.TestWiring) error {
	document, err := json.Marshal(wiring)
	if err != nil {
		return fmt.Errorf("failed to marshal wiring for %s: %w", transformationID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO wirings (transformation_id, document)
		VALUES ($1, $2)
		ON CONFLICT (transformation_id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = NOW()
	`, transformationID, document)
	if err != nil {
		return fmt.Errorf("failed to save wiring for %s: %w", transformationID, err)
	}

	return nil
}

// Delete removes the stored wiring, if any.
func (r *WiringRepository) Delete(ctx context.Context, transformationID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM wirings WHERE transformation_id = $1", transformationID)
	if err != nil {
		return fmt.Errorf("failed to delete wiring for %s: %w", transformationID, err)
	}

	return nil
}
