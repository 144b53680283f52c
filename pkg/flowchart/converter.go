package flowchart

import (
	"fmt"
	"strings"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/google/uuid"
)

// ConvertComponentToFlowchart builds a single-node canvas description from a
// transformation's io_interface: one component, no links, no boundary io.
// Inputs are annotated with their exposure and default value. For workflow
// content the annotation is derived by matching the io item id against inner
// operator inputs; component inputs are always exposed.
func ConvertComponentToFlowchart(t *models.Transformation) *Flowchart {
	node := Component{
		ID:      t.ID,
		Name:    t.Name,
		Inputs:  make([]Connector, 0, len(t.IOInterface.Inputs)),
		Outputs: make([]Connector, 0, len(t.IOInterface.Outputs)),
	}

	content, isWorkflow := t.WorkflowContent()

	for _, item := range t.IOInterface.Inputs {
		connector := Connector{
			ID:       item.ID,
			Name:     item.Name,
			DataType: item.DataType,
			Exposed:  true,
		}

		if isWorkflow {
			if inner, ok := innerInputByID(content, item.ID); ok {
				connector.Exposed = inner.Exposed
				connector.Default = inner.Value != nil
				connector.Value = inner.Value
			}
		} else if item.Value != nil {
			connector.Default = true
			connector.Value = item.Value
		}

		node.Inputs = append(node.Inputs, connector)
	}

	for _, item := range t.IOInterface.Outputs {
		node.Outputs = append(node.Outputs, Connector{
			ID:       item.ID,
			Name:     item.Name,
			DataType: item.DataType,
			Exposed:  true,
		})
	}

	return &Flowchart{
		Components: []Component{node},
		IO:         []IO{},
		Links:      []Link{},
	}
}

func innerInputByID(content *models.WorkflowContent, connectorID string) (*models.Connector, bool) {
	for i := range content.Operators {
		if connector, ok := content.Operators[i].InputByID(connectorID); ok {
			return connector, true
		}
	}

	return nil, false
}

// ConvertWorkflowToFlowchart maps a workflow graph onto its canvas
// description. Unnamed boundary io is not drawn; boundary direction is
// inverted (a workflow output is a canvas input); links bound to a constant
// are removed and the consuming connector is rendered as an in-place
// literal instead.
func ConvertWorkflowToFlowchart(t *models.Transformation) (*Flowchart, error) {
	source, ok := t.WorkflowContent()
	if !ok {
		return nil, fmt.Errorf("transformation %s is not a workflow", t.ID)
	}

	content := source.Clone()

	chart := &Flowchart{
		Components: make([]Component, 0, len(content.Operators)),
		IO:         []IO{},
		Links:      []Link{},
	}

	for _, operator := range content.Operators {
		chart.Components = append(chart.Components, operatorToComponent(operator))
	}

	for _, io := range content.Inputs {
		if io.Name == "" && !io.Constant {
			continue
		}

		chart.IO = append(chart.IO, boundaryToIO(io, false))
	}

	for _, io := range content.Outputs {
		if io.Name == "" && !io.Constant {
			continue
		}

		chart.IO = append(chart.IO, boundaryToIO(io, true))
	}

	for _, link := range content.Links {
		chart.Links = append(chart.Links, linkToChartLink(t.ID, link))
	}

	applyConstants(chart, content)

	return chart, nil
}

func operatorToComponent(operator models.Operator) Component {
	node := Component{
		ID:       operator.ID,
		Name:     operator.Name,
		Position: operator.Position,
		Inputs:   make([]Connector, 0, len(operator.Inputs)),
		Outputs:  make([]Connector, 0, len(operator.Outputs)),
	}

	for _, connector := range operator.Inputs {
		node.Inputs = append(node.Inputs, Connector{
			ID:       connector.ID,
			Name:     connector.Name,
			DataType: connector.DataType,
			Exposed:  connector.Exposed,
			Default:  connector.Value != nil,
			Value:    connector.Value,
		})
	}

	for _, connector := range operator.Outputs {
		node.Outputs = append(node.Outputs, Connector{
			ID:       connector.ID,
			Name:     connector.Name,
			DataType: connector.DataType,
			Exposed:  connector.Exposed,
		})
	}

	return node
}

// boundaryToIO inverts the io direction for drawing: a workflow output
// receives the value flowing out of the internals, so it is a canvas input.
func boundaryToIO(io models.IOConnector, workflowOutput bool) IO {
	return IO{
		ID:        io.ID,
		Name:      io.Name,
		DataType:  io.DataType,
		Position:  io.Position,
		Input:     workflowOutput,
		Constant:  io.Constant,
		Value:     io.Value,
		Operator:  io.OperatorID,
		Connector: io.ConnectorID,
	}
}

// linkToChartLink serializes one graph link, substituting the workflow's own
// id for boundary vertices and synthesizing a stable id per path point.
func linkToChartLink(workflowID string, link models.Link) Link {
	from := link.Start.Operator
	if from == "" {
		from = workflowID
	}

	to := link.End.Operator
	if to == "" {
		to = workflowID
	}

	pointIDs := make([]string, len(link.Path))
	for i := range link.Path {
		pointIDs[i] = uuid.New().String()
	}

	return Link{
		ID:       link.ID,
		From:     from + "_" + link.Start.Connector.ID,
		To:       to + "_" + link.End.Connector.ID,
		Path:     ConvertPositionsToLinkPath(link.Path),
		PointIDs: strings.Join(pointIDs, ","),
	}
}

// applyConstants marks every connector consuming a constant as an in-place
// literal and removes any drawn link touching that connector.
func applyConstants(chart *Flowchart, content *models.WorkflowContent) {
	for _, constant := range content.Constants {
		target := constant.OperatorID + "_" + constant.ConnectorID

		for c := range chart.Components {
			if chart.Components[c].ID != constant.OperatorID {
				continue
			}

			for i := range chart.Components[c].Inputs {
				if chart.Components[c].Inputs[i].ID == constant.ConnectorID {
					chart.Components[c].Inputs[i].Constant = true
					chart.Components[c].Inputs[i].Value = constant.Value
				}
			}
		}

		kept := chart.Links[:0]

		for _, link := range chart.Links {
			if link.From == target || link.To == target {
				continue
			}

			kept = append(kept, link)
		}

		chart.Links = kept
	}
}

// LinkOperatorAndConnectorID splits a composite "<operatorId>_<connectorId>"
// canvas attribute into its two parts. It fails unless the attribute splits
// into exactly two segments.
func LinkOperatorAndConnectorID(attribute string) (string, string, error) {
	parts := strings.Split(attribute, "_")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed link endpoint attribute %q", attribute)
	}

	return parts[0], parts[1], nil
}

// ConnectorFromOperatorByID resolves a link vertex to its connector. When
// boundary is true the connector is looked up in the workflow's own
// io_interface, otherwise in the referenced operator's connector lists.
func ConnectorFromOperatorByID(t *models.Transformation, operatorID, connectorID string, boundary bool) (models.Connector, error) {
	if boundary {
		for _, items := range [][]models.IOItem{t.IOInterface.Inputs, t.IOInterface.Outputs} {
			for _, item := range items {
				if item.ID == connectorID {
					return models.Connector{
						ID:       item.ID,
						Name:     item.Name,
						DataType: item.DataType,
					}, nil
				}
			}
		}

		return models.Connector{}, fmt.Errorf("boundary connector %s not found on workflow %s", connectorID, t.ID)
	}

	content, ok := t.WorkflowContent()
	if !ok {
		return models.Connector{}, fmt.Errorf("transformation %s is not a workflow", t.ID)
	}

	operator, ok := content.OperatorByID(operatorID)
	if !ok {
		return models.Connector{}, fmt.Errorf("operator %s not found in workflow %s", operatorID, t.ID)
	}

	if connector, ok := operator.InputByID(connectorID); ok {
		return *connector, nil
	}

	if connector, ok := operator.OutputByID(connectorID); ok {
		return *connector, nil
	}

	return models.Connector{}, fmt.Errorf("connector %s not found on operator %s", connectorID, operatorID)
}
