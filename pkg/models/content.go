package models

import (
	"fmt"
)

// Position is a canvas coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Connector is a typed input or output port on an operator.
type Connector struct {
	ID       string   `json:"id"       validate:"required"`
	Name     string   `json:"name"`
	DataType DataType `json:"data_type" validate:"required"`
	Exposed  bool     `json:"exposed,omitempty"`
	Value    any      `json:"value,omitempty"`
}

// Operator is a placed instance of another transformation inside a workflow.
// The state mirrors the referenced transformation's state at placement time
// and may go stale when that transformation is re-released.
type Operator struct {
	ID               string              `json:"id"                validate:"required"`
	TransformationID string              `json:"transformation_id" validate:"required"`
	RevisionGroupID  string              `json:"revision_group_id"`
	Name             string              `json:"name"              validate:"required"`
	Type             TransformationType  `json:"type"              validate:"required"`
	State            TransformationState `json:"state"`
	VersionTag       string              `json:"version_tag"`
	Inputs           []Connector         `json:"inputs"`
	Outputs          []Connector         `json:"outputs"`
	Position         Position            `json:"position"`
}

// InputByID returns the operator input connector with the given id.
func (o *Operator) InputByID(id string) (*Connector, bool) {
	for i := range o.Inputs {
		if o.Inputs[i].ID == id {
			return &o.Inputs[i], true
		}
	}

	return nil, false
}

// OutputByID returns the operator output connector with the given id.
func (o *Operator) OutputByID(id string) (*Connector, bool) {
	for i := range o.Outputs {
		if o.Outputs[i].ID == id {
			return &o.Outputs[i], true
		}
	}

	return nil, false
}

// IOConnector is a workflow-boundary port proxying one inner operator
// connector, with its own canvas position.
type IOConnector struct {
	ID          string   `json:"id"           validate:"required"`
	Name        string   `json:"name"`
	DataType    DataType `json:"data_type"`
	OperatorID  string   `json:"operator_id"  validate:"required"`
	ConnectorID string   `json:"connector_id" validate:"required"`
	Position    Position `json:"position"`
	Constant    bool     `json:"constant,omitempty"`
	Value       any      `json:"value,omitempty"`
}

// Vertex is one endpoint of a link. Operator is empty when the vertex is
// the workflow boundary itself.
type Vertex struct {
	Operator  string    `json:"operator,omitempty"`
	Connector Connector `json:"connector"`
}

// IsBoundary reports whether the vertex sits on the workflow boundary.
func (v Vertex) IsBoundary() bool {
	return v.Operator == ""
}

// Link is a directed edge between two connector vertices, with an optional
// user-drawn waypoint path.
type Link struct {
	ID    string     `json:"id"    validate:"required"`
	Start Vertex     `json:"start"`
	End   Vertex     `json:"end"`
	Path  []Position `json:"path,omitempty"`
}

// Constant binds a literal value to a consuming port instead of an inbound
// link. Mutually exclusive with a link ending at the same port.
type Constant struct {
	ID          string   `json:"id"`
	OperatorID  string   `json:"operator_id"  validate:"required"`
	ConnectorID string   `json:"connector_id" validate:"required"`
	DataType    DataType `json:"data_type"`
	Value       any      `json:"value"`
	Position    Position `json:"position"`
}

// WorkflowContent is the structured graph body of a workflow revision.
type WorkflowContent struct {
	Operators []Operator    `json:"operators"`
	Links     []Link        `json:"links"`
	Inputs    []IOConnector `json:"inputs"`
	Outputs   []IOConnector `json:"outputs"`
	Constants []Constant    `json:"constants"`
}

// NewWorkflowContent returns an empty graph with non-nil slices so the
// persisted JSON always carries the full shape.
func NewWorkflowContent() *WorkflowContent {
	return &WorkflowContent{
		Operators: []Operator{},
		Links:     []Link{},
		Inputs:    []IOConnector{},
		Outputs:   []IOConnector{},
		Constants: []Constant{},
	}
}

// OperatorByID returns the operator with the given id.
func (c *WorkflowContent) OperatorByID(id string) (*Operator, bool) {
	for i := range c.Operators {
		if c.Operators[i].ID == id {
			return &c.Operators[i], true
		}
	}

	return nil, false
}

// LinkByID returns the link with the given id.
func (c *WorkflowContent) LinkByID(id string) (*Link, bool) {
	for i := range c.Links {
		if c.Links[i].ID == id {
			return &c.Links[i], true
		}
	}

	return nil, false
}

// ConstantFor returns the constant bound to the given operator port.
func (c *WorkflowContent) ConstantFor(operatorID, connectorID string) (*Constant, bool) {
	for i := range c.Constants {
		if c.Constants[i].OperatorID == operatorID && c.Constants[i].ConnectorID == connectorID {
			return &c.Constants[i], true
		}
	}

	return nil, false
}

// LinkEndingAt returns the link whose end vertex is the given operator port.
func (c *WorkflowContent) LinkEndingAt(operatorID, connectorID string) (*Link, bool) {
	for i := range c.Links {
		l := &c.Links[i]
		if l.End.Operator == operatorID && l.End.Connector.ID == connectorID {
			return l, true
		}
	}

	return nil, false
}

// Validate checks the structural invariants of the graph: every boundary
// connector and every non-boundary link vertex must resolve to an existing
// operator port, and a port may be the target of at most one of
// {inbound link, constant}.
func (c *WorkflowContent) Validate() error {
	for _, io := range c.Inputs {
		if err := c.resolveInput(io.OperatorID, io.ConnectorID); err != nil {
			return fmt.Errorf("workflow input %s: %w", io.ID, err)
		}
	}

	for _, io := range c.Outputs {
		if err := c.resolveOutput(io.OperatorID, io.ConnectorID); err != nil {
			return fmt.Errorf("workflow output %s: %w", io.ID, err)
		}
	}

	for _, link := range c.Links {
		if !link.Start.IsBoundary() {
			if err := c.resolveOutput(link.Start.Operator, link.Start.Connector.ID); err != nil {
				return fmt.Errorf("link %s start: %w", link.ID, err)
			}
		}

		if !link.End.IsBoundary() {
			if err := c.resolveInput(link.End.Operator, link.End.Connector.ID); err != nil {
				return fmt.Errorf("link %s end: %w", link.ID, err)
			}
		}
	}

	for _, constant := range c.Constants {
		if err := c.resolveInput(constant.OperatorID, constant.ConnectorID); err != nil {
			return fmt.Errorf("constant for %s.%s: %w", constant.OperatorID, constant.ConnectorID, err)
		}

		if _, bound := c.LinkEndingAt(constant.OperatorID, constant.ConnectorID); bound {
			return fmt.Errorf("port %s.%s has both a constant and an inbound link",
				constant.OperatorID, constant.ConnectorID)
		}
	}

	return nil
}

func (c *WorkflowContent) resolveInput(operatorID, connectorID string) error {
	operator, ok := c.OperatorByID(operatorID)
	if !ok {
		return fmt.Errorf("operator %s not found", operatorID)
	}

	if _, ok := operator.InputByID(connectorID); !ok {
		return fmt.Errorf("input connector %s not found on operator %s", connectorID, operatorID)
	}

	return nil
}

func (c *WorkflowContent) resolveOutput(operatorID, connectorID string) error {
	operator, ok := c.OperatorByID(operatorID)
	if !ok {
		return fmt.Errorf("operator %s not found", operatorID)
	}

	if _, ok := operator.OutputByID(connectorID); !ok {
		return fmt.Errorf("output connector %s not found on operator %s", connectorID, operatorID)
	}

	return nil
}

// Clone returns a deep copy of the graph.
func (c *WorkflowContent) Clone() *WorkflowContent {
	clone := NewWorkflowContent()

	clone.Operators = make([]Operator, len(c.Operators))
	for i, op := range c.Operators {
		clone.Operators[i] = op
		clone.Operators[i].Inputs = append([]Connector(nil), op.Inputs...)
		clone.Operators[i].Outputs = append([]Connector(nil), op.Outputs...)
	}

	clone.Links = make([]Link, len(c.Links))
	for i, link := range c.Links {
		clone.Links[i] = link
		clone.Links[i].Path = append([]Position(nil), link.Path...)
	}

	clone.Inputs = append([]IOConnector(nil), c.Inputs...)
	clone.Outputs = append([]IOConnector(nil), c.Outputs...)
	clone.Constants = append([]Constant(nil), c.Constants...)

	return clone
}
