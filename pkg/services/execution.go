package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdesk/flowdesk/pkg/eventbus"
	"github.com/flowdesk/flowdesk/pkg/events"
	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/otelhelper"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// Execution hands execution requests to the backend runtime over the event
// bus. The designer itself never runs a transformation.
type Execution struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
}

// NewExecution creates a new execution service.
func NewExecution(p persistence.Persistence, publisher eventbus.EventPublisher, tracer trace.Tracer) *Execution {
	return &Execution{
		persistence: p,
		publisher:   publisher,
		tracer:      tracer,
	}
}

// Execute resolves the wiring for a transformation and publishes an
// execution request. A nil wiring falls back to the stored standard wiring,
// and an explicitly provided wiring is stored as the new standard wiring
// before the request goes out.
func (s *Execution) Execute(ctx context.Context, transformationID string, wiring *models.TestWiring) (string, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "execution.request",
		attribute.String(otelhelper.TransformationIDKey, transformationID),
	)
	defer span.End()

	transformation, err := s.persistence.TransformationRepository().GetByID(ctx, transformationID)
	if err != nil {
		otelhelper.SetError(span, err)

		return "", err
	}

	if models.IsIncomplete(transformation) {
		err := NewValidationError("Execute", "NOT_EXECUTABLE",
			fmt.Sprintf("transformation %s has no executable interface", transformationID), ErrNotExecutable)
		otelhelper.SetError(span, err)

		return "", err
	}

	if wiring == nil {
		stored, err := s.persistence.WiringRepository().GetByTransformation(ctx, transformationID)
		if err != nil && !errors.Is(err, persistence.ErrWiringNotFound) {
			otelhelper.SetError(span, err)

			return "", err
		}

		if stored != nil {
			wiring = stored
		} else {
			wiring = &models.TestWiring{}
		}
	} else {
		if err := validateWiring(transformation, wiring); err != nil {
			otelhelper.SetError(span, err)

			return "", err
		}

		if err := s.persistence.WiringRepository().Save(ctx, transformationID, wiring); err != nil {
			otelhelper.SetError(span, err)

			return "", fmt.Errorf("failed to store wiring: %w", err)
		}
	}

	jobID := uuid.NewString()
	span.SetAttributes(attribute.String(otelhelper.JobIDKey, jobID))

	event := events.ExecutionRequested{
		BaseEvent: events.BaseEvent{
			ID:               jobID,
			Type:             events.ExecutionRequestedEvent,
			Timestamp:        time.Now().UTC(),
			TransformationID: transformationID,
			RevisionGroupID:  transformation.RevisionGroupID,
		},
		Wiring: wiring.Clone(),
	}

	if err := s.publisher.Publish(ctx, transformationID, event); err != nil {
		otelhelper.SetError(span, err)

		return "", fmt.Errorf("failed to publish execution request: %w", err)
	}

	return jobID, nil
}
