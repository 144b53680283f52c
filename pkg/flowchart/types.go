// Package flowchart converts between the persisted workflow graph model and
// the canvas description consumed by the drawing surface, in both directions.
// All conversions are pure: they never mutate their arguments.
package flowchart

import (
	"github.com/flowdesk/flowdesk/pkg/models"
)

// Connector is a port as drawn on a canvas node.
type Connector struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	DataType models.DataType `json:"data_type"`
	Exposed  bool            `json:"exposed"`
	Default  bool            `json:"default"`
	Value    any             `json:"value,omitempty"`
	Constant bool            `json:"constant"`
}

// Component is one node on the canvas.
type Component struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Position models.Position `json:"position"`
	Inputs   []Connector     `json:"inputs"`
	Outputs  []Connector     `json:"outputs"`
}

// IO is one boundary port drawn at the canvas edge. Direction is inverted
// relative to the workflow: a workflow output receives a value flowing out
// of the internals, so it is drawn as a canvas input.
type IO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	DataType  models.DataType `json:"data_type"`
	Position  models.Position `json:"position"`
	Input     bool            `json:"input"`
	Constant  bool            `json:"constant"`
	Value     any             `json:"value,omitempty"`
	Operator  string          `json:"operator"`
	Connector string          `json:"connector"`
}

// Link is a drawn edge. From and To are composite "<operatorId>_<connectorId>"
// attributes; Path is a serialized SVG path and PointIDs the comma-joined
// stable identifiers of its editable waypoints.
type Link struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Path     string `json:"path"`
	PointIDs string `json:"point_ids"`
}

// Flowchart is the complete canvas description of a transformation.
type Flowchart struct {
	Components []Component `json:"components"`
	IO         []IO        `json:"io"`
	Links      []Link      `json:"links"`
}
