package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flowdesk/flowdesk/pkg/eventbus"
	"github.com/flowdesk/flowdesk/pkg/events"
	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
	"github.com/flowdesk/flowdesk/pkg/validation"
)

// ErrTransformationNotFound is returned when a transformation is not found.
var ErrTransformationNotFound = persistence.ErrTransformationNotFound

type Transformation struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
}

// NewTransformation creates a new transformation service.
func NewTransformation(p persistence.Persistence, publisher eventbus.EventPublisher) *Transformation {
	return &Transformation{
		persistence: p,
		publisher:   publisher,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Transformation) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListTransformationsRequest contains filter options for listing.
type ListTransformationsRequest struct {
	Type            *models.TransformationType
	State           *models.TransformationState
	Category        string
	Name            string
	IncludeDisabled bool
}

// List retrieves transformations. Disabled revisions are excluded unless
// explicitly requested.
func (s *Transformation) List(ctx context.Context, req ListTransformationsRequest) ([]*models.Transformation, error) {
	result, err := s.persistence.TransformationRepository().List(ctx, persistence.ListOptions{
		Type:            req.Type,
		State:           req.State,
		Category:        req.Category,
		Name:            req.Name,
		IncludeDisabled: req.IncludeDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transformations: %w", err)
	}

	return result, nil
}

// Get retrieves one transformation revision by id.
func (s *Transformation) Get(ctx context.Context, id string) (*models.Transformation, error) {
	return s.persistence.TransformationRepository().GetByID(ctx, id)
}

// CreateTransformationRequest describes a new transformation. An empty
// RevisionGroupID starts a fresh revision group.
type CreateTransformationRequest struct {
	Name            string
	Description     string
	Category        string
	VersionTag      string
	Type            models.TransformationType
	RevisionGroupID string
}

// Create stores a new draft revision and publishes a created event.
func (s *Transformation) Create(ctx context.Context, req CreateTransformationRequest) (*models.Transformation, error) {
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}

	transformation := &models.Transformation{
		ID:              uuid.NewString(),
		RevisionGroupID: req.RevisionGroupID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		VersionTag:      req.VersionTag,
		State:           models.StateDraft,
		Type:            req.Type,
		IOInterface:     models.IOInterface{Inputs: []models.IOItem{}, Outputs: []models.IOItem{}},
	}

	switch req.Type {
	case models.TypeComponent:
		transformation.Content = &models.ComponentContent{}
	case models.TypeWorkflow:
		transformation.Content = models.NewWorkflowContent()
	}

	if err := s.persistence.TransformationRepository().Save(ctx, transformation); err != nil {
		if persistence.IsVersionTagExists(err) {
			return nil, NewConflictError("Create", "VERSION_TAG_EXISTS",
				fmt.Sprintf("version tag %q already exists in revision group %s", req.VersionTag, req.RevisionGroupID),
				ErrVersionTagConflict)
		}

		return nil, fmt.Errorf("failed to create transformation: %w", err)
	}

	s.publish(ctx, transformation.ID, events.TransformationCreated{
		BaseEvent:  s.baseEvent(events.TransformationCreatedEvent, transformation),
		Name:       transformation.Name,
		Kind:       transformation.Type,
		VersionTag: transformation.VersionTag,
	})

	return transformation, nil
}

// Update replaces a draft revision's document. Released revisions are
// immutable, disabled revisions are terminal.
func (s *Transformation) Update(ctx context.Context, transformation *models.Transformation) (*models.Transformation, error) {
	if transformation == nil {
		return nil, ErrTransformationNil
	}

	existing, err := s.persistence.TransformationRepository().GetByID(ctx, transformation.ID)
	if err != nil {
		return nil, err
	}

	switch existing.State {
	case models.StateReleased:
		return nil, NewConflictError("Update", "RELEASED_IMMUTABLE",
			"released transformations cannot be modified", ErrReleasedImmutable)
	case models.StateDisabled:
		return nil, NewConflictError("Update", "DISABLED_TERMINAL",
			"disabled transformations cannot be modified", ErrDisabledTerminal)
	case models.StateDraft:
	}

	if !validation.ValidFreeText(transformation.Name) {
		return nil, ErrInvalidName
	}

	// The lifecycle fields of the stored revision win over whatever the
	// client sent.
	transformation.State = existing.State
	transformation.RevisionGroupID = existing.RevisionGroupID
	transformation.ReleasedTimestamp = existing.ReleasedTimestamp
	transformation.DisabledTimestamp = existing.DisabledTimestamp

	if err := s.persistence.TransformationRepository().Save(ctx, transformation); err != nil {
		if persistence.IsVersionTagExists(err) {
			return nil, NewConflictError("Update", "VERSION_TAG_EXISTS",
				fmt.Sprintf("version tag %q already exists in revision group %s",
					transformation.VersionTag, transformation.RevisionGroupID),
				ErrVersionTagConflict)
		}

		return nil, fmt.Errorf("failed to update transformation: %w", err)
	}

	s.publish(ctx, transformation.ID, events.TransformationSaved{
		BaseEvent:  s.baseEvent(events.TransformationSavedEvent, transformation),
		VersionTag: transformation.VersionTag,
	})

	return transformation, nil
}

// Release transitions a draft to RELEASED and stamps the release time.
func (s *Transformation) Release(ctx context.Context, id string) (*models.Transformation, error) {
	transformation, err := s.persistence.TransformationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transformation.State.CanTransitionTo(models.StateReleased) {
		return nil, NewConflictError("Release", "INVALID_TRANSITION",
			fmt.Sprintf("cannot release a %s transformation", transformation.State), ErrInvalidTransition)
	}

	now := time.Now().UTC()
	transformation.State = models.StateReleased
	transformation.ReleasedTimestamp = &now

	if err := s.persistence.TransformationRepository().Save(ctx, transformation); err != nil {
		return nil, fmt.Errorf("failed to release transformation: %w", err)
	}

	s.publish(ctx, transformation.ID, events.TransformationReleased{
		BaseEvent:  s.baseEvent(events.TransformationReleasedEvent, transformation),
		VersionTag: transformation.VersionTag,
		ReleasedAt: now,
	})

	return transformation, nil
}

// Disable transitions a released revision to the terminal DISABLED state.
func (s *Transformation) Disable(ctx context.Context, id string) (*models.Transformation, error) {
	transformation, err := s.persistence.TransformationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transformation.State.CanTransitionTo(models.StateDisabled) {
		return nil, NewConflictError("Disable", "INVALID_TRANSITION",
			fmt.Sprintf("cannot disable a %s transformation", transformation.State), ErrInvalidTransition)
	}

	now := time.Now().UTC()
	transformation.State = models.StateDisabled
	transformation.DisabledTimestamp = &now

	if err := s.persistence.TransformationRepository().Save(ctx, transformation); err != nil {
		return nil, fmt.Errorf("failed to disable transformation: %w", err)
	}

	s.publish(ctx, transformation.ID, events.TransformationDisabled{
		BaseEvent:  s.baseEvent(events.TransformationDisabledEvent, transformation),
		VersionTag: transformation.VersionTag,
		DisabledAt: now,
	})

	return transformation, nil
}

// Delete removes a draft revision and its stored wiring. Released and
// disabled revisions are never deleted, they are part of the historic record.
func (s *Transformation) Delete(ctx context.Context, id string) error {
	transformation, err := s.persistence.TransformationRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if transformation.State != models.StateDraft {
		return NewConflictError("Delete", "DELETE_NON_DRAFT",
			fmt.Sprintf("cannot delete a %s transformation", transformation.State), ErrDeleteNonDraft)
	}

	if err := s.persistence.TransformationRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transformation: %w", err)
	}

	if err := s.persistence.WiringRepository().Delete(ctx, id); err != nil && !persistence.IsWiringNotFound(err) {
		return fmt.Errorf("failed to delete wiring of transformation %s: %w", id, err)
	}

	s.publish(ctx, id, events.TransformationDeleted{
		BaseEvent: events.BaseEvent{
			ID:               uuid.NewString(),
			Type:             events.TransformationDeletedEvent,
			Timestamp:        time.Now().UTC(),
			TransformationID: id,
			RevisionGroupID:  transformation.RevisionGroupID,
		},
	})

	return nil
}

// ReleasedRevisions lists the released revisions of a revision group,
// excluding the given revision id. Used by the change-revision dialog.
func (s *Transformation) ReleasedRevisions(ctx context.Context, revisionGroupID, excludeID string) ([]*models.Transformation, error) {
	revisions, err := s.persistence.TransformationRepository().GetByRevisionGroup(ctx, revisionGroupID)
	if err != nil {
		return nil, err
	}

	released := make([]*models.Transformation, 0, len(revisions))

	for _, revision := range revisions {
		if revision.State == models.StateReleased && revision.ID != excludeID {
			released = append(released, revision)
		}
	}

	return released, nil
}

// NewRevision copies a released revision into a fresh draft inside the same
// revision group.
func (s *Transformation) NewRevision(ctx context.Context, id, versionTag string) (*models.Transformation, error) {
	if versionTag == "" {
		return nil, ErrVersionTagRequired
	}

	source, err := s.persistence.TransformationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if source.State != models.StateReleased {
		return nil, NewConflictError("NewRevision", "INVALID_TRANSITION",
			"new revisions can only be created from released transformations", ErrInvalidTransition)
	}

	draft := source.Clone()
	draft.ID = uuid.NewString()
	draft.VersionTag = versionTag
	draft.State = models.StateDraft
	draft.ReleasedTimestamp = nil
	draft.DisabledTimestamp = nil

	if err := s.persistence.TransformationRepository().Save(ctx, draft); err != nil {
		if persistence.IsVersionTagExists(err) {
			return nil, NewConflictError("NewRevision", "VERSION_TAG_EXISTS",
				fmt.Sprintf("version tag %q already exists in revision group %s", versionTag, draft.RevisionGroupID),
				ErrVersionTagConflict)
		}

		return nil, fmt.Errorf("failed to create revision: %w", err)
	}

	s.publish(ctx, draft.ID, events.TransformationCreated{
		BaseEvent:  s.baseEvent(events.TransformationCreatedEvent, draft),
		Name:       draft.Name,
		Kind:       draft.Type,
		VersionTag: draft.VersionTag,
	})

	return draft, nil
}

// CategoryGroup is one category bucket of the sidebar projection.
type CategoryGroup struct {
	Category        string                   `json:"category"`
	Transformations []*models.Transformation `json:"transformations"`
}

// ByCategoryAndName groups transformations by category for the sidebar,
// sorted by category and name. Disabled revisions never appear here.
func (s *Transformation) ByCategoryAndName(ctx context.Context, kind *models.TransformationType, nameFilter string) ([]CategoryGroup, error) {
	transformations, err := s.persistence.TransformationRepository().List(ctx, persistence.ListOptions{
		Type: kind,
		Name: nameFilter,
	})
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]*models.Transformation)
	for _, transformation := range transformations {
		buckets[transformation.Category] = append(buckets[transformation.Category], transformation)
	}

	categories := make([]string, 0, len(buckets))
	for category := range buckets {
		categories = append(categories, category)
	}

	sort.Strings(categories)

	groups := make([]CategoryGroup, 0, len(categories))

	for _, category := range categories {
		bucket := buckets[category]
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].Name != bucket[j].Name {
				return bucket[i].Name < bucket[j].Name
			}

			return bucket[i].VersionTag < bucket[j].VersionTag
		})

		groups = append(groups, CategoryGroup{Category: category, Transformations: bucket})
	}

	return groups, nil
}

func validateCreateRequest(req *CreateTransformationRequest) error {
	if req.Name == "" {
		return ErrNameRequired
	}

	if !validation.ValidFreeText(req.Name) {
		return NewValidationError("Create", "INVALID_NAME",
			fmt.Sprintf("name %q contains forbidden characters", req.Name), ErrInvalidName)
	}

	if req.Category == "" {
		return ErrCategoryRequired
	}

	if !validation.ValidFreeText(req.Category) {
		return NewValidationError("Create", "INVALID_CATEGORY",
			fmt.Sprintf("category %q contains forbidden characters", req.Category), ErrInvalidName)
	}

	if req.VersionTag == "" {
		return ErrVersionTagRequired
	}

	if req.Type != models.TypeComponent && req.Type != models.TypeWorkflow {
		return ErrInvalidType
	}

	if req.RevisionGroupID == "" {
		req.RevisionGroupID = uuid.NewString()
	}

	return nil
}

func (s *Transformation) baseEvent(eventType events.EventType, transformation *models.Transformation) events.BaseEvent {
	return events.BaseEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		Timestamp:        time.Now().UTC(),
		TransformationID: transformation.ID,
		RevisionGroupID:  transformation.RevisionGroupID,
	}
}

func (s *Transformation) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	// Notification delivery is best effort, a broker outage must not fail
	// the write that already happened.
	_ = s.publisher.Publish(ctx, key, event)
}
