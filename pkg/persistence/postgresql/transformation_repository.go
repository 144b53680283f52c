package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// TransformationRepository stores transformation revisions in the
// transformations table.
type TransformationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTransformationRepository creates a new transformation repository.
func NewTransformationRepository(db *sql.DB, logger *slog.Logger) *TransformationRepository {
	return &TransformationRepository{db: db, logger: logger}
}

// List returns transformations matching the given filters ordered by name
// and version tag. Disabled revisions are excluded unless requested.
func (r *TransformationRepository) List(ctx context.Context, opts persistence.ListOptions) ([]*models.Transformation, error) {
	query := "SELECT document FROM transformations"

	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if !opts.IncludeDisabled {
		conditions = append(conditions, "state <> '"+string(models.StateDisabled)+"'")
	}

	if opts.Type != nil {
		args = append(args, string(*opts.Type))
		conditions = append(conditions, "type = $"+strconv.Itoa(len(args)))
	}

	if opts.State != nil {
		args = append(args, string(*opts.State))
		conditions = append(conditions, "state = $"+strconv.Itoa(len(args)))
	}

	if opts.Category != "" {
		args = append(args, opts.Category)
		conditions = append(conditions, "category = $"+strconv.Itoa(len(args)))
	}

	if opts.Name != "" {
		args = append(args, "%"+opts.Name+"%")
		conditions = append(conditions, "name ILIKE $"+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY name, version_tag"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transformations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransformations(rows)
}

// GetByID retrieves a transformation by its revision id.
func (r *TransformationRepository) GetByID(ctx context.Context, id string) (*models.Transformation, error) {
	var document []byte

	err := r.db.QueryRowContext(ctx, "SELECT document FROM transformations WHERE id = $1", id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewTransformationError("GetByID", id, persistence.ErrTransformationNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query transformation %s: %w", id, err)
	}

	var transformation models.Transformation

	err = json.Unmarshal(document, &transformation)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transformation %s: %w", id, err)
	}

	return &transformation, nil
}

// GetByRevisionGroup returns every stored revision sharing the group id.
func (r *TransformationRepository) GetByRevisionGroup(ctx context.Context, revisionGroupID string) ([]*models.Transformation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT document FROM transformations WHERE revision_group_id = $1 ORDER BY version_tag",
		revisionGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revision group %s: %w", revisionGroupID, err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransformations(rows)
}

// Save upserts a transformation. A version tag collision inside the revision
// group surfaces as ErrVersionTagExists.
func (r *TransformationRepository) Save(ctx context.Context, transformation *models.Transformation) error {
	document, err := json.Marshal(transformation)
	if err != nil {
		return fmt.Errorf("failed to marshal transformation %s: %w", transformation.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transformations (id, revision_group_id, name, category, version_tag, state, type, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			revision_group_id = EXCLUDED.revision_group_id,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			version_tag = EXCLUDED.version_tag,
			state = EXCLUDED.state,
			type = EXCLUDED.type,
			document = EXCLUDED.document,
			updated_at = NOW()
	`,
		transformation.ID,
		transformation.RevisionGroupID,
		transformation.Name,
		transformation.Category,
		transformation.VersionTag,
		string(transformation.State),
		string(transformation.Type),
		document,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return persistence.NewRevisionGroupError("Save", transformation.RevisionGroupID, persistence.ErrVersionTagExists)
		}

		return fmt.Errorf("failed to save transformation %s: %w", transformation.ID, err)
	}

	return nil
}

// Delete removes a stored transformation revision.
func (r *TransformationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM transformations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete transformation %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result for %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.NewTransformationError("Delete", id, persistence.ErrTransformationNotFound)
	}

	return nil
}

func scanTransformations(rows *sql.Rows) ([]*models.Transformation, error) {
	transformations := make([]*models.Transformation, 0)

	for rows.Next() {
		var document []byte

		err := rows.Scan(&document)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transformation row: %w", err)
		}

		var transformation models.Transformation

		err = json.Unmarshal(document, &transformation)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal transformation row: %w", err)
		}

		transformations = append(transformations, &transformation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transformation rows: %w", err)
	}

	return transformations, nil
}
