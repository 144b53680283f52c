// Package file provides file-based persistence for transformations and wirings.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of the file system.
// Each transformation revision is one JSON document.
type Persistence struct {
	root               string
	transformationRepo *TransformationRepository
	wiringRepo         *WiringRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix on the root is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:               cleanRoot,
		transformationRepo: NewTransformationRepository(cleanRoot),
		wiringRepo:         NewWiringRepository(cleanRoot),
	}
}

// TransformationRepository returns the transformation repository.
func (p *Persistence) TransformationRepository() persistence.TransformationRepository {
	return p.transformationRepo
}

// WiringRepository returns the wiring repository.
func (p *Persistence) WiringRepository() persistence.WiringRepository {
	return p.wiringRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to clean up for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
