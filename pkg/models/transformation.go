// Package models defines the core domain models for the transformation designer.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransformationState represents the lifecycle state of a transformation revision.
// The lifecycle is one-way: DRAFT -> RELEASED -> DISABLED.
type TransformationState string

const (
	StateDraft    TransformationState = "DRAFT"    // Freely editable
	StateReleased TransformationState = "RELEASED" // Immutable except for the transition to DISABLED
	StateDisabled TransformationState = "DISABLED" // Terminal, hidden from active views
)

// CanTransitionTo reports whether the one-way lifecycle allows moving to next.
func (s TransformationState) CanTransitionTo(next TransformationState) bool {
	switch s {
	case StateDraft:
		return next == StateReleased
	case StateReleased:
		return next == StateDisabled
	case StateDisabled:
		return false
	}

	return false
}

// TransformationType discriminates the content union of a transformation.
type TransformationType string

const (
	TypeComponent TransformationType = "COMPONENT" // Opaque code string content
	TypeWorkflow  TransformationType = "WORKFLOW"  // Structured graph content
)

// IOItem is a named, typed input or output of a transformation's interface.
type IOItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	DataType DataType `json:"data_type" validate:"required"`
	Value    any      `json:"value,omitempty"`
	Exposed  bool     `json:"exposed,omitempty"`
}

// IOInterface declares the executable surface of a transformation.
type IOInterface struct {
	Inputs  []IOItem `json:"inputs"`
	Outputs []IOItem `json:"outputs"`
}

// Transformation is the persisted unit of design: either a component (code
// behind an io_interface) or a workflow (a graph of operators and links).
// The id is stable per revision; revision_group_id is stable across revisions
// of the same named entity.
type Transformation struct {
	ID                string              `json:"id"                           validate:"required"`
	RevisionGroupID   string              `json:"revision_group_id"            validate:"required"`
	Name              string              `json:"name"                         validate:"required,free_text"`
	Description       string              `json:"description,omitempty"        validate:"omitempty,free_text"`
	Category          string              `json:"category"                     validate:"required,free_text"`
	VersionTag        string              `json:"version_tag"                  validate:"required"`
	ReleasedTimestamp *time.Time          `json:"released_timestamp,omitempty"`
	DisabledTimestamp *time.Time          `json:"disabled_timestamp,omitempty"`
	State             TransformationState `json:"state"                        validate:"required,oneof=DRAFT RELEASED DISABLED"`
	Type              TransformationType  `json:"type"                         validate:"required,oneof=COMPONENT WORKFLOW"`
	Documentation     string              `json:"documentation,omitempty"`
	Content           Content             `json:"content"`
	IOInterface       IOInterface         `json:"io_interface"`
	TestWiring        TestWiring          `json:"test_wiring"`
}

// Content is the tagged union of transformation bodies. Exactly one concrete
// implementation exists per TransformationType.
type Content interface {
	ContentType() TransformationType
}

// ComponentContent is the opaque code-behind of a component revision.
type ComponentContent struct {
	Code string
}

func (ComponentContent) ContentType() TransformationType { return TypeComponent }

func (c ComponentContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Code)
}

func (c *ComponentContent) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.Code)
}

func (WorkflowContent) ContentType() TransformationType { return TypeWorkflow }

// ComponentContent returns the code content, or false when the
// transformation is a workflow.
func (t *Transformation) ComponentContent() (*ComponentContent, bool) {
	c, ok := t.Content.(*ComponentContent)

	return c, ok
}

// WorkflowContent returns the graph content, or false when the
// transformation is a component.
func (t *Transformation) WorkflowContent() (*WorkflowContent, bool) {
	c, ok := t.Content.(*WorkflowContent)

	return c, ok
}

// UnmarshalJSON decodes the content field into the variant selected by the
// type tag, keeping the wire shape bit-exact: components persist content as
// a plain string, workflows as a structured object.
func (t *Transformation) UnmarshalJSON(data []byte) error {
	type alias Transformation

	raw := struct {
		*alias

		Content json.RawMessage `json:"content"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t.Type {
	case TypeComponent:
		content := &ComponentContent{}
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, content); err != nil {
				return fmt.Errorf("failed to unmarshal component content: %w", err)
			}
		}

		t.Content = content
	case TypeWorkflow:
		content := NewWorkflowContent()
		if len(raw.Content) > 0 {
			if err := json.Unmarshal(raw.Content, content); err != nil {
				return fmt.Errorf("failed to unmarshal workflow content: %w", err)
			}
		}

		t.Content = content
	default:
		return fmt.Errorf("unknown transformation type: %q", t.Type)
	}

	return nil
}

// Clone returns a deep copy. The editor always works on clones so that
// store-held state is never aliased by in-flight edits.
func (t *Transformation) Clone() *Transformation {
	clone := *t

	clone.IOInterface = IOInterface{
		Inputs:  cloneIOItems(t.IOInterface.Inputs),
		Outputs: cloneIOItems(t.IOInterface.Outputs),
	}
	clone.TestWiring = t.TestWiring.Clone()

	switch content := t.Content.(type) {
	case *ComponentContent:
		c := *content
		clone.Content = &c
	case *WorkflowContent:
		clone.Content = content.Clone()
	}

	return &clone
}

func cloneIOItems(items []IOItem) []IOItem {
	if items == nil {
		return nil
	}

	out := make([]IOItem, len(items))
	copy(out, items)

	return out
}
