// Package persistence provides the data storage abstraction for
// transformations and their test wirings.
package persistence

import (
	"context"

	"github.com/flowdesk/flowdesk/pkg/models"
)

// ListOptions filters a transformation listing. Disabled revisions are
// excluded from every projection unless IncludeDisabled is set.
type ListOptions struct {
	Type            *models.TransformationType
	State           *models.TransformationState
	Category        string
	Name            string // Case-insensitive substring match
	IncludeDisabled bool
}

// TransformationRepository stores transformation revisions.
type TransformationRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*models.Transformation, error)
	GetByID(ctx context.Context, id string) (*models.Transformation, error)
	GetByRevisionGroup(ctx context.Context, revisionGroupID string) ([]*models.Transformation, error)
	Save(ctx context.Context, transformation *models.Transformation) error
	Delete(ctx context.Context, id string) error
}

// WiringRepository stores at most one test wiring per transformation.
type WiringRepository interface {
	GetByTransformation(ctx context.Context, transformationID string) (*models.TestWiring, error)
	Save(ctx context.Context, transformationID string, wiring *models.TestWiring) error
	Delete(ctx context.Context, transformationID string) error
}

// Persistence is the storage entry point handed to services.
type Persistence interface {
	TransformationRepository() TransformationRepository
	WiringRepository() WiringRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
