package editor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowdesk/flowdesk/pkg/models"
)

const copyOffset = 100

// DropOperator places a new operator referencing the dropped transformation
// at the given canvas position and persists immediately. The display name is
// deduplicated against operators already referencing the same transformation.
func (e *Engine) DropOperator(ctx context.Context, dropped *models.Transformation, position models.Position) (*models.Operator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return nil, fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	operator := operatorFromTransformation(dropped)
	operator.Name = dedupName(content.Operators, dropped.ID, dropped.Name)
	operator.Position = position

	content.Operators = append(content.Operators, operator)
	e.dirty = true

	if err := e.persistLocked(ctx, false); err != nil {
		return nil, err
	}

	return &content.Operators[len(content.Operators)-1], nil
}

// ChangeRevision atomically replaces an operator with one referencing another
// released revision of the same group. Unlike direct canvas removal this path
// cascades: all links and constants touching the old operator go with it.
func (e *Engine) ChangeRevision(ctx context.Context, operatorID string, replacement *models.Transformation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	old, ok := content.OperatorByID(operatorID)
	if !ok {
		return fmt.Errorf("operator %s not found", operatorID)
	}

	if old.RevisionGroupID != replacement.RevisionGroupID {
		return fmt.Errorf("transformation %s is not a revision of operator %s", replacement.ID, operatorID)
	}

	name, position := old.Name, old.Position

	operators := content.Operators[:0]
	for _, operator := range content.Operators {
		if operator.ID != operatorID {
			operators = append(operators, operator)
		}
	}

	content.Operators = operators
	content.Links = linksWithoutOperator(content.Links, operatorID)
	content.Constants = constantsWithoutOperator(content.Constants, operatorID)
	content.Inputs, _ = ioWithoutOperator(content.Inputs, operatorID)
	content.Outputs, _ = ioWithoutOperator(content.Outputs, operatorID)

	operator := operatorFromTransformation(replacement)
	operator.Name = name
	operator.Position = position

	content.Operators = append(content.Operators, operator)
	e.dirty = true

	return e.persistLocked(ctx, false)
}

// RenameOperator mutates the targeted operator's display name in place and
// persists immediately.
func (e *Engine) RenameOperator(ctx context.Context, operatorID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	operator, ok := content.OperatorByID(operatorID)
	if !ok {
		return fmt.Errorf("operator %s not found", operatorID)
	}

	operator.Name = name
	e.dirty = true

	return e.persistLocked(ctx, false)
}

// CopyOperator duplicates an operator at a (+100,+100) offset with a
// deduplicated name and persists immediately. Links and constants are not
// copied.
func (e *Engine) CopyOperator(ctx context.Context, operatorID string) (*models.Operator, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return nil, fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	source, ok := content.OperatorByID(operatorID)
	if !ok {
		return nil, fmt.Errorf("operator %s not found", operatorID)
	}

	duplicate := *source
	duplicate.ID = uuid.NewString()
	duplicate.Name = dedupName(content.Operators, source.TransformationID, baseName(source.Name))
	duplicate.Position = models.Position{X: source.Position.X + copyOffset, Y: source.Position.Y + copyOffset}
	duplicate.Inputs = append([]models.Connector(nil), source.Inputs...)
	duplicate.Outputs = append([]models.Connector(nil), source.Outputs...)

	content.Operators = append(content.Operators, duplicate)
	e.dirty = true

	if err := e.persistLocked(ctx, false); err != nil {
		return nil, err
	}

	return &content.Operators[len(content.Operators)-1], nil
}

// SetOptionalExposure toggles an optional input connector's exposed flag.
// Hiding a connector clears the name of any boundary input that references
// it, so the workflow no longer advertises the port.
func (e *Engine) SetOptionalExposure(operatorID, connectorID string, exposed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content := e.content()
	if content == nil {
		return fmt.Errorf("transformation %s is not a workflow", e.transformation.ID)
	}

	operator, ok := content.OperatorByID(operatorID)
	if !ok {
		return fmt.Errorf("operator %s not found", operatorID)
	}

	connector, ok := operator.InputByID(connectorID)
	if !ok {
		return fmt.Errorf("input connector %s not found on operator %s", connectorID, operatorID)
	}

	if connector.Exposed == exposed {
		return nil
	}

	connector.Exposed = exposed

	if !exposed {
		for i := range content.Inputs {
			io := &content.Inputs[i]
			if io.OperatorID == operatorID && io.ConnectorID == connectorID {
				io.Name = ""
			}
		}
	}

	e.dirty = true

	return nil
}

func operatorFromTransformation(t *models.Transformation) models.Operator {
	return models.Operator{
		ID:               uuid.NewString(),
		TransformationID: t.ID,
		RevisionGroupID:  t.RevisionGroupID,
		Name:             t.Name,
		Type:             t.Type,
		State:            t.State,
		VersionTag:       t.VersionTag,
		Inputs:           connectorsFromItems(t.IOInterface.Inputs),
		Outputs:          connectorsFromItems(t.IOInterface.Outputs),
	}
}

func connectorsFromItems(items []models.IOItem) []models.Connector {
	connectors := make([]models.Connector, len(items))
	for i, item := range items {
		connectors[i] = models.Connector{
			ID:       item.ID,
			Name:     item.Name,
			DataType: item.DataType,
			Exposed:  item.Exposed,
			Value:    item.Value,
		}
	}

	return connectors
}

// dedupName suffixes "name (N)" where N counts operators already referencing
// the same transformation, matching the canvas drop behavior.
func dedupName(operators []models.Operator, transformationID, name string) string {
	count := 0

	for _, operator := range operators {
		if operator.TransformationID == transformationID {
			count++
		}
	}

	if count == 0 {
		return name
	}

	return fmt.Sprintf("%s (%d)", name, count+1)
}

// baseName strips a " (N)" dedup suffix so copies of copies do not stack
// suffixes.
func baseName(name string) string {
	if i := len(name) - 1; i >= 0 && name[i] == ')' {
		for j := i - 1; j >= 0; j-- {
			c := name[j]
			if c >= '0' && c <= '9' {
				continue
			}

			if c == '(' && j >= 2 && name[j-1] == ' ' && j+1 < i {
				return name[:j-1]
			}

			break
		}
	}

	return name
}

func linksWithoutOperator(links []models.Link, operatorID string) []models.Link {
	kept := links[:0]

	for _, link := range links {
		if link.Start.Operator != operatorID && link.End.Operator != operatorID {
			kept = append(kept, link)
		}
	}

	return kept
}

func ioWithoutOperator(connectors []models.IOConnector, operatorID string) ([]models.IOConnector, bool) {
	kept := connectors[:0]
	removed := false

	for _, connector := range connectors {
		if connector.OperatorID == operatorID {
			removed = true

			continue
		}

		kept = append(kept, connector)
	}

	return kept, removed
}
