package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// TransformationRepository stores one JSON file per transformation revision
// under <root>/transformations/.
type TransformationRepository struct {
	root string
}

// NewTransformationRepository creates a new transformation repository.
func NewTransformationRepository(root string) *TransformationRepository {
	return &TransformationRepository{root: root}
}

func (r *TransformationRepository) dir() string {
	return path.Join(r.root, "transformations")
}

// List returns transformations matching the given filters, sorted by name
// then version tag. Disabled revisions are excluded unless requested.
func (r *TransformationRepository) List(ctx context.Context, opts persistence.ListOptions) ([]*models.Transformation, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Transformation, 0, len(all))

	for _, t := range all {
		if t.State == models.StateDisabled && !opts.IncludeDisabled {
			continue
		}

		if opts.Type != nil && t.Type != *opts.Type {
			continue
		}

		if opts.State != nil && t.State != *opts.State {
			continue
		}

		if opts.Category != "" && t.Category != opts.Category {
			continue
		}

		if opts.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(opts.Name)) {
			continue
		}

		filtered = append(filtered, t)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Name != filtered[j].Name {
			return filtered[i].Name < filtered[j].Name
		}

		return filtered[i].VersionTag < filtered[j].VersionTag
	})

	return filtered, nil
}

// GetByID retrieves a transformation by its revision id.
func (r *TransformationRepository) GetByID(_ context.Context, id string) (*models.Transformation, error) {
	filePath := filepath.Clean(path.Join(r.dir(), id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewTransformationError("GetByID", id, persistence.ErrTransformationNotFound)
		}

		return nil, fmt.Errorf("failed to read transformation %s: %w", id, err)
	}

	var transformation models.Transformation

	err = json.Unmarshal(body, &transformation)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transformation %s: %w", id, err)
	}

	return &transformation, nil
}

// GetByRevisionGroup returns every stored revision sharing the group id.
func (r *TransformationRepository) GetByRevisionGroup(ctx context.Context, revisionGroupID string) ([]*models.Transformation, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	group := make([]*models.Transformation, 0)

	for _, t := range all {
		if t.RevisionGroupID == revisionGroupID {
			group = append(group, t)
		}
	}

	sort.Slice(group, func(i, j int) bool {
		return group[i].VersionTag < group[j].VersionTag
	})

	return group, nil
}

// Save writes a transformation after checking the version tag is unique
// within its revision group.
func (r *TransformationRepository) Save(ctx context.Context, transformation *models.Transformation) error {
	group, err := r.GetByRevisionGroup(ctx, transformation.RevisionGroupID)
	if err != nil {
		return err
	}

	for _, existing := range group {
		if existing.ID != transformation.ID && existing.VersionTag == transformation.VersionTag {
			return persistence.NewRevisionGroupError("Save", transformation.RevisionGroupID, persistence.ErrVersionTagExists)
		}
	}

	err = os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create transformations directory: %w", err)
	}

	data, err := json.MarshalIndent(transformation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transformation %s: %w", transformation.ID, err)
	}

	filePath := filepath.Clean(path.Join(r.dir(), transformation.ID+".json"))

	err = os.WriteFile(filePath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write transformation %s: %w", transformation.ID, err)
	}

	return nil
}

// Delete removes a stored transformation revision.
func (r *TransformationRepository) Delete(_ context.Context, id string) error {
	filePath := filepath.Clean(path.Join(r.dir(), id+".json"))

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewTransformationError("Delete", id, persistence.ErrTransformationNotFound)
		}

		return fmt.Errorf("failed to delete transformation %s: %w", id, err)
	}

	return nil
}

func (r *TransformationRepository) loadAll(ctx context.Context) ([]*models.Transformation, error) {
	root := os.DirFS(r.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list transformation files: %w", err)
	}

	all := make([]*models.Transformation, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // strip .json

		transformation, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load transformation %s: %w", id, err)
		}

		all = append(all, transformation)
	}

	return all, nil
}
