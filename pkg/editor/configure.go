package editor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/validation"
)

// Horizontal offsets for recomputed boundary connector positions, relative
// to the owning operator. Vertical stacking starts at 60 and steps by 30 per
// connector index so multiple ports do not overlap.
const (
	boundaryInputOffsetX  = -250
	boundaryOutputOffsetX = 450
	boundaryBaseOffsetY   = 60
	boundaryStepY         = 30
)

// IOUpdate is one confirmed row of the workflow I/O dialog. Naming a
// boundary connector and binding it to a constant are mutually exclusive.
type IOUpdate struct {
	ID         string
	Name       string
	IsConstant bool
	Value      any
}

// ConfigureWorkflowIO reconciles the confirmed I/O dialog rows back into the
// graph: boundary connector positions are recomputed from their owning
// operators, stale boundary links and constants for the reconfigured ports
// are dropped, and one synthetic link per named connector plus one per
// constant is regenerated with fresh ids. Wholly internal links survive
// untouched.
func (e *Engine) ConfigureWorkflowIO(ctx context.Context, updates []IOUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	if err := validateIOUpdates(updates, content.Outputs); err != nil {
		return err
	}

	byID := make(map[string]IOUpdate, len(updates))
	for _, update := range updates {
		byID[update.ID] = update
	}

	touched := make(map[string]bool)

	if err := e.applyIOUpdates(content, content.Inputs, byID, touched, true); err != nil {
		return err
	}

	if err := e.applyIOUpdates(content, content.Outputs, byID, touched, false); err != nil {
		return err
	}

	content.Links = linksWithoutBoundaryPorts(content.Links, touched)
	content.Constants = constantsWithoutPorts(content.Constants, touched)

	for i := range content.Inputs {
		e.regenerateBoundary(content, &content.Inputs[i], touched, true)
	}

	for i := range content.Outputs {
		e.regenerateBoundary(content, &content.Outputs[i], touched, false)
	}

	e.dirty = true

	return e.persistLocked(ctx, false)
}

// validateIOUpdates rejects invalid dialog rows before anything is written
// into the graph, so a failed confirm leaves the editing state untouched.
func validateIOUpdates(updates []IOUpdate, outputs []models.IOConnector) error {
	outputIDs := make(map[string]bool, len(outputs))
	for _, io := range outputs {
		outputIDs[io.ID] = true
	}

	names := make([]string, 0, len(updates))

	for _, update := range updates {
		if update.IsConstant {
			if update.Name != "" {
				return fmt.Errorf("boundary connector %s cannot be both named and constant", update.ID)
			}

			if outputIDs[update.ID] {
				return fmt.Errorf("boundary output %s cannot be bound to a constant", update.ID)
			}

			continue
		}

		if update.Name == "" {
			continue
		}

		if !validation.ValidIdentifier(update.Name) {
			return fmt.Errorf("invalid io name: %q", update.Name)
		}

		names = append(names, update.Name)
	}

	duplicates := validation.DuplicateNames(names)
	for name, duplicate := range duplicates {
		if duplicate {
			return fmt.Errorf("duplicate io name: %q", name)
		}
	}

	return nil
}

// applyIOUpdates writes names, constant flags, and recomputed positions onto
// the boundary connectors addressed by the dialog rows.
func (e *Engine) applyIOUpdates(
	content *models.WorkflowContent,
	connectors []models.IOConnector,
	byID map[string]IOUpdate,
	touched map[string]bool,
	input bool,
) error {
	for i := range connectors {
		io := &connectors[i]

		update, ok := byID[io.ID]
		if !ok {
			continue
		}

		touched[portKey(io.OperatorID, io.ConnectorID)] = true

		io.Name = update.Name
		io.Constant = update.IsConstant
		io.Value = update.Value

		operator, ok := content.OperatorByID(io.OperatorID)
		if !ok {
			return fmt.Errorf("operator %s not found", io.OperatorID)
		}

		index := connectorIndex(operator, io.ConnectorID, input)

		offsetX := boundaryInputOffsetX
		if !input {
			offsetX = boundaryOutputOffsetX
		}

		io.Position = models.Position{
			X: operator.Position.X + offsetX,
			Y: operator.Position.Y + boundaryBaseOffsetY + boundaryStepY*index,
		}
	}

	return nil
}

// regenerateBoundary synthesizes the boundary link or constant for one
// reconfigured connector. Untouched connectors keep their existing edges.
func (e *Engine) regenerateBoundary(content *models.WorkflowContent, io *models.IOConnector, touched map[string]bool, input bool) {
	if !touched[portKey(io.OperatorID, io.ConnectorID)] {
		return
	}

	if io.Constant {
		content.Constants = append(content.Constants, models.Constant{
			ID:          uuid.NewString(),
			OperatorID:  io.OperatorID,
			ConnectorID: io.ConnectorID,
			DataType:    io.DataType,
			Value:       io.Value,
			Position:    io.Position,
		})
	}

	if io.Constant || io.Name == "" {
		return
	}

	boundary := models.Vertex{Connector: models.Connector{
		ID:       io.ID,
		Name:     io.Name,
		DataType: io.DataType,
	}}
	inner := models.Vertex{Operator: io.OperatorID}

	operator, ok := content.OperatorByID(io.OperatorID)
	if ok {
		var connector *models.Connector
		if input {
			connector, _ = operator.InputByID(io.ConnectorID)
		} else {
			connector, _ = operator.OutputByID(io.ConnectorID)
		}

		if connector != nil {
			inner.Connector = *connector
		}
	}

	link := models.Link{ID: uuid.NewString()}
	if input {
		link.Start, link.End = boundary, inner
	} else {
		link.Start, link.End = inner, boundary
	}

	content.Links = append(content.Links, link)
}

// ConfigureComponentIO replaces a component's io_interface after validating
// that every name is a legal identifier and unique within its own list.
// Input and output names may collide with each other.
func (e *Engine) ConfigureComponentIO(ctx context.Context, inputs, outputs []models.IOItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transformation.Type != models.TypeComponent {
		return fmt.Errorf("transformation %s is not a component", e.transformation.ID)
	}

	for _, list := range [][]models.IOItem{inputs, outputs} {
		names := make([]string, 0, len(list))

		for _, item := range list {
			if !validation.ValidIdentifier(item.Name) {
				return fmt.Errorf("invalid io name: %q", item.Name)
			}

			names = append(names, item.Name)
		}

		for name, duplicate := range validation.DuplicateNames(names) {
			if duplicate {
				return fmt.Errorf("duplicate io name: %q", name)
			}
		}
	}

	for i := range inputs {
		if inputs[i].ID == "" {
			inputs[i].ID = uuid.NewString()
		}
	}

	for i := range outputs {
		if outputs[i].ID == "" {
			outputs[i].ID = uuid.NewString()
		}
	}

	e.transformation.IOInterface = models.IOInterface{Inputs: inputs, Outputs: outputs}
	e.dirty = true

	return e.persistLocked(ctx, false)
}

func connectorIndex(operator *models.Operator, connectorID string, input bool) int {
	connectors := operator.Inputs
	if !input {
		connectors = operator.Outputs
	}

	for i := range connectors {
		if connectors[i].ID == connectorID {
			return i
		}
	}

	return 0
}

func portKey(operatorID, connectorID string) string {
	return operatorID + "\x00" + connectorID
}

// linksWithoutBoundaryPorts drops links that have a boundary vertex whose
// inner endpoint is one of the reconfigured ports. Links between two
// operators never have a boundary vertex and are always kept.
func linksWithoutBoundaryPorts(links []models.Link, touched map[string]bool) []models.Link {
	kept := links[:0]

	for _, link := range links {
		boundary := link.Start.IsBoundary() || link.End.IsBoundary()

		drop := boundary &&
			(touched[portKey(link.Start.Operator, link.Start.Connector.ID)] ||
				touched[portKey(link.End.Operator, link.End.Connector.ID)])
		if !drop {
			kept = append(kept, link)
		}
	}

	return kept
}

func constantsWithoutPorts(constants []models.Constant, touched map[string]bool) []models.Constant {
	kept := constants[:0]

	for _, constant := range constants {
		if !touched[portKey(constant.OperatorID, constant.ConnectorID)] {
			kept = append(kept, constant)
		}
	}

	return kept
}
