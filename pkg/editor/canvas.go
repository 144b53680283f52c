package editor

import (
	"fmt"

	"github.com/flowdesk/flowdesk/pkg/flowchart"
	"github.com/flowdesk/flowdesk/pkg/models"
)

// Dispatcher markers carried by canvas add events.
const (
	DispatcherOperator = "operator"
	DispatcherLink     = "link"
)

// CanvasElement describes a canvas event target. Only the fields relevant to
// the targeted element kind are set.
type CanvasElement struct {
	ID         string
	Dispatcher string
	Position   models.Position
	Path       string
	PointIDs   string
	From       string // "<operatorId>_<connectorId>" composite
	To         string
}

// UpdatePosition dispatches a canvas move event to the entity with a matching
// id. Ids that match no operator, link, or boundary connector are ignored,
// not every canvas element corresponds to a graph entity.
func (e *Engine) UpdatePosition(element CanvasElement) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return
	}

	if operator, ok := content.OperatorByID(element.ID); ok {
		if operator.Position != element.Position {
			operator.Position = element.Position
			e.dirty = true
		}

		return
	}

	if link, ok := content.LinkByID(element.ID); ok {
		positions, _, err := flowchart.ConvertLinkPathToPositions(element.Path, element.PointIDs)
		if err != nil {
			e.logger.WithError(err).Warn("ignoring malformed link path")

			return
		}

		if len(positions) == 0 && len(link.Path) == 0 {
			return
		}

		link.Path = positions
		e.dirty = true

		return
	}

	if e.updateBoundaryPosition(content.Inputs, element) || e.updateBoundaryPosition(content.Outputs, element) {
		e.dirty = true
	}
}

func (e *Engine) updateBoundaryPosition(connectors []models.IOConnector, element CanvasElement) bool {
	for i := range connectors {
		if connectors[i].ID == element.ID {
			if connectors[i].Position == element.Position {
				return false
			}

			connectors[i].Position = element.Position

			return true
		}
	}

	return false
}

// AddElement handles canvas add events. Operators are added by the canvas
// itself beforehand, so the operator case only syncs the drop position. The
// link case synthesizes a new Link by resolving both composite endpoint
// attributes, treating a vertex as boundary when its operator id equals the
// workflow's own id.
func (e *Engine) AddElement(element CanvasElement) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	switch element.Dispatcher {
	case DispatcherOperator:
		if operator, ok := content.OperatorByID(element.ID); ok {
			operator.Position = element.Position
			e.dirty = true
		}

		return nil
	case DispatcherLink:
		return e.addLink(content, element)
	default:
		return fmt.Errorf("unknown canvas dispatcher: %q", element.Dispatcher)
	}
}

func (e *Engine) addLink(content *models.WorkflowContent, element CanvasElement) error {
	if _, exists := content.LinkByID(element.ID); exists {
		return nil
	}

	start, err := e.resolveVertex(element.From)
	if err != nil {
		return fmt.Errorf("link start: %w", err)
	}

	end, err := e.resolveVertex(element.To)
	if err != nil {
		return fmt.Errorf("link end: %w", err)
	}

	if !start.Connector.DataType.Compatible(end.Connector.DataType) {
		return fmt.Errorf("incompatible link types %s -> %s", start.Connector.DataType, end.Connector.DataType)
	}

	positions, _, err := flowchart.ConvertLinkPathToPositions(element.Path, element.PointIDs)
	if err != nil {
		return err
	}

	content.Links = append(content.Links, models.Link{
		ID:    element.ID,
		Start: start,
		End:   end,
		Path:  positions,
	})
	e.dirty = true

	return nil
}

func (e *Engine) resolveVertex(attribute string) (models.Vertex, error) {
	operatorID, connectorID, err := flowchart.LinkOperatorAndConnectorID(attribute)
	if err != nil {
		return models.Vertex{}, err
	}

	boundary := operatorID == e.transformation.ID

	connector, err := flowchart.ConnectorFromOperatorByID(e.transformation, operatorID, connectorID, boundary)
	if err != nil {
		return models.Vertex{}, err
	}

	vertex := models.Vertex{Connector: connector}
	if !boundary {
		vertex.Operator = operatorID
	}

	return vertex, nil
}

// RemoveElement removes the identified entity from whichever list contains
// it and strips constants bound to a removed operator. Links attached to a
// removed operator are expected to arrive as their own remove events.
func (e *Engine) RemoveElement(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return
	}

	removed := false

	for i := range content.Operators {
		if content.Operators[i].ID == id {
			content.Operators = append(content.Operators[:i], content.Operators[i+1:]...)
			content.Constants = constantsWithoutOperator(content.Constants, id)
			removed = true

			break
		}
	}

	if !removed {
		content.Inputs, removed = ioWithoutID(content.Inputs, id)
	}

	if !removed {
		content.Outputs, removed = ioWithoutID(content.Outputs, id)
	}

	if !removed {
		for i := range content.Links {
			if content.Links[i].ID == id {
				content.Links = append(content.Links[:i], content.Links[i+1:]...)
				removed = true

				break
			}
		}
	}

	if removed {
		e.dirty = true
	}
}

func constantsWithoutOperator(constants []models.Constant, operatorID string) []models.Constant {
	kept := constants[:0]

	for _, constant := range constants {
		if constant.OperatorID != operatorID {
			kept = append(kept, constant)
		}
	}

	return kept
}

func ioWithoutID(connectors []models.IOConnector, id string) ([]models.IOConnector, bool) {
	for i := range connectors {
		if connectors[i].ID == id {
			return append(connectors[:i], connectors[i+1:]...), true
		}
	}

	return connectors, false
}
