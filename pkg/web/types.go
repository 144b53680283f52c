// Package web provides HTTP request and response types for the designer API.
package web

import "github.com/flowdesk/flowdesk/pkg/models"

// CreateTransformationRequest represents the request body for creating a new
// transformation revision. An empty revision_group_id starts a new group.
type CreateTransformationRequest struct {
	Name            string `json:"name"              validate:"required,free_text"`
	Description     string `json:"description"       validate:"omitempty,free_text"`
	Category        string `json:"category"          validate:"required,free_text"`
	VersionTag      string `json:"version_tag"       validate:"required"`
	Type            string `json:"type"              validate:"required,oneof=COMPONENT WORKFLOW"`
	RevisionGroupID string `json:"revision_group_id" validate:"omitempty,uuid4"`
}

// NewRevisionRequest represents the request body for deriving a fresh draft
// from a released revision.
type NewRevisionRequest struct {
	VersionTag string `json:"version_tag" validate:"required"`
}

// ExecuteRequest represents the request body for a test execution. A nil
// wiring falls back to the stored standard wiring.
type ExecuteRequest struct {
	Wiring *models.TestWiring `json:"wiring,omitempty"`
}

// ExecuteResponse carries the id under which the backend runs the job.
type ExecuteResponse struct {
	JobID string `json:"job_id"`
}

// TransformationSummary is the list projection of a revision, annotated with
// the executability evaluation the sidebar needs.
type TransformationSummary struct {
	ID              string                     `json:"id"`
	RevisionGroupID string                     `json:"revision_group_id"`
	Name            string                     `json:"name"`
	Category        string                     `json:"category"`
	VersionTag      string                     `json:"version_tag"`
	State           models.TransformationState `json:"state"`
	Type            models.TransformationType  `json:"type"`
	Incomplete      bool                       `json:"incomplete"`
}

// SummarizeTransformation projects a revision onto its list representation.
func SummarizeTransformation(t *models.Transformation) TransformationSummary {
	return TransformationSummary{
		ID:              t.ID,
		RevisionGroupID: t.RevisionGroupID,
		Name:            t.Name,
		Category:        t.Category,
		VersionTag:      t.VersionTag,
		State:           t.State,
		Type:            t.Type,
		Incomplete:      models.IsIncomplete(t),
	}
}
