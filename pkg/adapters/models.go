// Package adapters browses external adapter hierarchies and flattens them
// for the tree picker.
package adapters

import (
	"github.com/flowdesk/flowdesk/pkg/models"
)

// Adapter is a registered external system offering sources and sinks for
// test wirings.
type Adapter struct {
	ID       string `json:"id"       validate:"required"`
	Name     string `json:"name"     validate:"required"`
	URL      string `json:"url"      validate:"required,url"`
	Internal bool   `json:"internal"`
}

// ThingNode is one intermediate node of an adapter's browse hierarchy.
// A nil ParentID marks a root.
type ThingNode struct {
	ID          string  `json:"id"`
	ParentID    *string `json:"parentId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
}

// DataSource is a leaf readable endpoint attached to a thing node.
type DataSource struct {
	ID          string          `json:"id"`
	ThingNodeID string          `json:"thingNodeId"`
	Name        string          `json:"name"`
	DataType    models.DataType `json:"dataType"`
	Filters     map[string]any  `json:"filters,omitempty"`
}

// DataSink is a leaf writable endpoint attached to a thing node.
type DataSink struct {
	ID          string          `json:"id"`
	ThingNodeID string          `json:"thingNodeId"`
	Name        string          `json:"name"`
	DataType    models.DataType `json:"dataType"`
	Filters     map[string]any  `json:"filters,omitempty"`
}

// Tree is the full browse hierarchy fetched from one adapter.
type Tree struct {
	ThingNodes []ThingNode  `json:"thingNodes"`
	Sources    []DataSource `json:"sources"`
	Sinks      []DataSink   `json:"sinks"`
}

// FlatNode is one row of the flattened tree as consumed by the virtual
// scrolling widget. Exactly one of Source and Sink is set for leaves, both
// are nil for thing nodes.
type FlatNode struct {
	ID         string      `json:"id"`
	ParentID   *string     `json:"parentId"`
	Name       string      `json:"name"`
	Level      int         `json:"level"`
	Expandable bool        `json:"expandable"`
	Source     *DataSource `json:"source,omitempty"`
	Sink       *DataSink   `json:"sink,omitempty"`
}

// WirableWith reports whether a source can feed a port of the given type:
// exact match, or both sides in the series family.
func (s DataSource) WirableWith(portType models.DataType) bool {
	return s.DataType.Compatible(portType)
}

// WirableWith reports whether a sink can accept a port of the given type.
func (s DataSink) WirableWith(portType models.DataType) bool {
	return s.DataType.Compatible(portType)
}
