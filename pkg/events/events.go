// Package events defines event types for transformation lifecycle notifications.
package events

import (
	"time"

	"github.com/flowdesk/flowdesk/pkg/models"
)

type EventType string

// Kafka topic for designer events.
const Topic = "flowdesk.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Transformation lifecycle events.
	TransformationCreatedEvent  EventType = "transformation.created"
	TransformationSavedEvent    EventType = "transformation.saved"
	TransformationReleasedEvent EventType = "transformation.released"
	TransformationDisabledEvent EventType = "transformation.disabled"
	TransformationDeletedEvent  EventType = "transformation.deleted"

	// Execution events. Execution itself happens in the backend engine;
	// the designer only requests it and records the request.
	ExecutionRequestedEvent EventType = "execution.requested"
)

type BaseEvent struct {
	ID               string         `json:"id"`
	Type             EventType      `json:"type"`
	Timestamp        time.Time      `json:"timestamp"`
	TransformationID string         `json:"transformation_id"`
	RevisionGroupID  string         `json:"revision_group_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type TransformationCreated struct {
	BaseEvent

	Name       string                    `json:"name"`
	Kind       models.TransformationType `json:"kind"`
	VersionTag string                    `json:"version_tag"`
}

func (e TransformationCreated) GetType() EventType {
	return TransformationCreatedEvent
}

type TransformationSaved struct {
	BaseEvent

	VersionTag string `json:"version_tag"`
	Autosave   bool   `json:"autosave"`
}

func (e TransformationSaved) GetType() EventType {
	return TransformationSavedEvent
}

type TransformationReleased struct {
	BaseEvent

	VersionTag string    `json:"version_tag"`
	ReleasedAt time.Time `json:"released_at"`
}

func (e TransformationReleased) GetType() EventType {
	return TransformationReleasedEvent
}

type TransformationDisabled struct {
	BaseEvent

	VersionTag string    `json:"version_tag"`
	DisabledAt time.Time `json:"disabled_at"`
}

func (e TransformationDisabled) GetType() EventType {
	return TransformationDisabledEvent
}

type TransformationDeleted struct {
	BaseEvent
}

func (e TransformationDeleted) GetType() EventType {
	return TransformationDeletedEvent
}

type ExecutionRequested struct {
	BaseEvent

	Wiring models.TestWiring `json:"wiring"`
}

func (e ExecutionRequested) GetType() EventType {
	return ExecutionRequestedEvent
}
