package models

import (
	"github.com/flowdesk/flowdesk/pkg/validation"
)

// IsIncomplete reports whether a transformation is not executable yet.
//
// A component is incomplete only when its io_interface declares nothing at
// all. A workflow is incomplete when it has no operators, or when any
// boundary input/output whose underlying operator port is exposed and not
// bound to a constant either carries an invalid name or is not the endpoint
// of any link.
func IsIncomplete(t *Transformation) bool {
	switch content := t.Content.(type) {
	case *ComponentContent:
		return len(t.IOInterface.Inputs) == 0 && len(t.IOInterface.Outputs) == 0
	case *WorkflowContent:
		return workflowIsIncomplete(content)
	}

	return true
}

func workflowIsIncomplete(content *WorkflowContent) bool {
	if len(content.Operators) == 0 {
		return true
	}

	for _, io := range content.Inputs {
		if io.Constant {
			continue
		}

		if !connectorExposed(content, io, true) {
			continue
		}

		if !validation.ValidIdentifier(io.Name) {
			return true
		}

		if !hasLinkTouching(content, io.OperatorID, io.ConnectorID) {
			return true
		}
	}

	for _, io := range content.Outputs {
		if io.Constant {
			continue
		}

		if !connectorExposed(content, io, false) {
			continue
		}

		if !validation.ValidIdentifier(io.Name) {
			return true
		}

		if !hasLinkTouching(content, io.OperatorID, io.ConnectorID) {
			return true
		}
	}

	return false
}

// connectorExposed resolves the inner operator port proxied by a boundary
// connector and reports its exposed flag. Unresolvable ports count as
// unexposed so a stale boundary entry cannot block execution evaluation.
func connectorExposed(content *WorkflowContent, io IOConnector, input bool) bool {
	operator, ok := content.OperatorByID(io.OperatorID)
	if !ok {
		return false
	}

	var connector *Connector
	if input {
		connector, ok = operator.InputByID(io.ConnectorID)
	} else {
		connector, ok = operator.OutputByID(io.ConnectorID)
	}

	if !ok {
		return false
	}

	return connector.Exposed
}

func hasLinkTouching(content *WorkflowContent, operatorID, connectorID string) bool {
	for _, link := range content.Links {
		if link.Start.Operator == operatorID && link.Start.Connector.ID == connectorID {
			return true
		}

		if link.End.Operator == operatorID && link.End.Connector.ID == connectorID {
			return true
		}
	}

	return false
}

// IsWorkflowWithoutIO reports whether a workflow graph has nothing to
// configure: no boundary inputs, no boundary outputs and no constants.
func IsWorkflowWithoutIO(content *WorkflowContent) bool {
	return len(content.Inputs) == 0 && len(content.Outputs) == 0 && len(content.Constants) == 0
}
