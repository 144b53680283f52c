package services

import (
	"context"
	"fmt"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

// ErrWiringNotFound is returned when no test wiring is stored for a transformation.
var ErrWiringNotFound = persistence.ErrWiringNotFound

// Wiring manages the single stored test wiring per transformation. Wirings
// are only written on the explicit execute and configure-io actions, never
// as a side effect of graph editing.
type Wiring struct {
	persistence persistence.Persistence
}

// NewWiring creates a new wiring service.
func NewWiring(p persistence.Persistence) *Wiring {
	return &Wiring{persistence: p}
}

// Get returns the stored standard wiring for a transformation.
func (s *Wiring) Get(ctx context.Context, transformationID string) (*models.TestWiring, error) {
	return s.persistence.WiringRepository().GetByTransformation(ctx, transformationID)
}

// Save upserts the standard wiring after checking it only addresses names
// the transformation actually exposes and that declared endpoint types are
// compatible with the matching ports.
func (s *Wiring) Save(ctx context.Context, transformationID string, wiring *models.TestWiring) (*models.TestWiring, error) {
	if wiring == nil {
		return nil, ErrInvalidRequest
	}

	transformation, err := s.persistence.TransformationRepository().GetByID(ctx, transformationID)
	if err != nil {
		return nil, err
	}

	if err := validateWiring(transformation, wiring); err != nil {
		return nil, err
	}

	if err := s.persistence.WiringRepository().Save(ctx, transformationID, wiring); err != nil {
		return nil, fmt.Errorf("failed to save wiring: %w", err)
	}

	return wiring, nil
}

// Delete removes the stored wiring for a transformation.
func (s *Wiring) Delete(ctx context.Context, transformationID string) error {
	return s.persistence.WiringRepository().Delete(ctx, transformationID)
}

// validateWiring rejects wirings that address inputs or outputs the
// transformation does not expose, and wirings whose declared adapter
// endpoint type cannot wire to the matching port. Unwired names are allowed,
// they simply stay unbound until execution; an empty wiring type skips the
// compatibility check because direct provisioning carries no endpoint type.
func validateWiring(transformation *models.Transformation, wiring *models.TestWiring) error {
	inputs := make(map[string]models.IOItem, len(transformation.IOInterface.Inputs))
	for _, item := range transformation.IOInterface.Inputs {
		inputs[item.Name] = item
	}

	outputs := make(map[string]models.IOItem, len(transformation.IOInterface.Outputs))
	for _, item := range transformation.IOInterface.Outputs {
		outputs[item.Name] = item
	}

	for _, iw := range wiring.InputWirings {
		item, ok := inputs[iw.WorkflowInputName]
		if !ok {
			return NewValidationError("Save", "UNKNOWN_INPUT",
				fmt.Sprintf("transformation %s exposes no input named %q", transformation.ID, iw.WorkflowInputName),
				ErrIncompleteWiring)
		}

		if iw.Type != "" && !models.DataType(iw.Type).Compatible(item.DataType) {
			return NewValidationError("Save", "INCOMPATIBLE_INPUT",
				fmt.Sprintf("source of type %s cannot feed input %q of type %s",
					iw.Type, iw.WorkflowInputName, item.DataType),
				ErrIncompatibleWiring)
		}
	}

	for _, ow := range wiring.OutputWirings {
		item, ok := outputs[ow.WorkflowOutputName]
		if !ok {
			return NewValidationError("Save", "UNKNOWN_OUTPUT",
				fmt.Sprintf("transformation %s exposes no output named %q", transformation.ID, ow.WorkflowOutputName),
				ErrIncompleteWiring)
		}

		if ow.Type != "" && !models.DataType(ow.Type).Compatible(item.DataType) {
			return NewValidationError("Save", "INCOMPATIBLE_OUTPUT",
				fmt.Sprintf("sink of type %s cannot accept output %q of type %s",
					ow.Type, ow.WorkflowOutputName, item.DataType),
				ErrIncompatibleWiring)
		}
	}

	return nil
}
