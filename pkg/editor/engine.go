// Package editor owns the mutable copy of the currently open workflow and
// turns canvas events into structural graph mutations.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"github.com/flowdesk/flowdesk/pkg/eventbus"
	"github.com/flowdesk/flowdesk/pkg/events"
	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// DefaultAutosaveInterval is the fixed autosave period. Edits accumulated
// within one tick are persisted as a single snapshot.
const DefaultAutosaveInterval = 500 * time.Millisecond

// Engine serializes all mutations of one open transformation. One engine
// exists per open transformation; opening another transformation means
// constructing another engine.
type Engine struct {
	mu sync.Mutex

	transformation *models.Transformation
	repository     persistence.TransformationRepository
	publisher      eventbus.EventPublisher
	logger         *logrus.Entry
	interval       time.Duration
	dirty          bool
}

// NewEngine returns an engine holding a deep copy of the given
// transformation. The caller's instance is never aliased.
func NewEngine(
	transformation *models.Transformation,
	repository persistence.TransformationRepository,
	publisher eventbus.EventPublisher,
	logger *logrus.Entry,
) *Engine {
	return &Engine{
		transformation: transformation.Clone(),
		repository:     repository,
		publisher:      publisher,
		logger:         logger.WithField("transformation_id", transformation.ID),
		interval:       DefaultAutosaveInterval,
	}
}

// Transformation returns a deep copy of the current editing state.
func (e *Engine) Transformation() *models.Transformation {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.transformation.Clone()
}

// Dirty reports whether there are unsaved structural changes.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.dirty
}

// Start runs the autosave loop until ctx is cancelled. Each tick persists the
// accumulated edits when the transformation is dirty and not released.
func (e *Engine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Flush(ctx); err != nil {
				e.logger.WithError(err).Error("autosave failed")
			}
		}
	}
}

// Flush persists pending edits immediately. Released transformations are a
// silent no-op: local edits stay on the canvas but are never written back.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return nil
	}

	return e.persistLocked(ctx, true)
}

// content returns the workflow graph, or nil for component transformations.
// Callers must hold the mutex.
func (e *Engine) content() *models.WorkflowContent {
	c, _ := e.transformation.WorkflowContent()

	return c
}

// persistLocked writes the current state and clears the dirty flag. Callers
// must hold the mutex. Writes against a released transformation are dropped
// without error and without clearing the dirty flag, so the skip repeats on
// every tick.
func (e *Engine) persistLocked(ctx context.Context, autosave bool) error {
	if e.transformation.State == models.StateReleased {
		e.logger.Debug("skipping persist of released transformation")

		return nil
	}

	if err := e.repository.Save(ctx, e.transformation); err != nil {
		return err
	}

	e.dirty = false
	e.logger.WithField("autosave", autosave).Debug("transformation persisted")

	if e.publisher != nil {
		event := events.TransformationSaved{
			BaseEvent: events.BaseEvent{
				ID:               uuid.NewString(),
				Type:             events.TransformationSavedEvent,
				Timestamp:        time.Now().UTC(),
				TransformationID: e.transformation.ID,
				RevisionGroupID:  e.transformation.RevisionGroupID,
			},
			VersionTag: e.transformation.VersionTag,
			Autosave:   autosave,
		}

		if err := e.publisher.Publish(ctx, e.transformation.ID, event); err != nil {
			e.logger.WithError(err).Warn("failed to publish saved event")
		}
	}

	return nil
}
