package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/flowdesk/flowdesk/pkg/editor"
	"github.com/flowdesk/flowdesk/pkg/models"
)

// CanvasElementRequest is one canvas event target as sent by the frontend.
// Only the fields relevant to the targeted element kind are set.
type CanvasElementRequest struct {
	ID         string          `json:"id"`
	Dispatcher string          `json:"dispatcher"`
	Position   models.Position `json:"position"`
	Path       string          `json:"path,omitempty"`
	PointIDs   string          `json:"point_ids,omitempty"`
	From       string          `json:"from,omitempty"`
	To         string          `json:"to,omitempty"`
}

func (r CanvasElementRequest) element() editor.CanvasElement {
	return editor.CanvasElement{
		ID:         r.ID,
		Dispatcher: r.Dispatcher,
		Position:   r.Position,
		Path:       r.Path,
		PointIDs:   r.PointIDs,
		From:       r.From,
		To:         r.To,
	}
}

// DropOperatorRequest places a revision from the sidebar onto the canvas.
type DropOperatorRequest struct {
	TransformationID string          `json:"transformation_id" validate:"required"`
	Position         models.Position `json:"position"`
}

// RenameOperatorRequest changes an operator's display name.
type RenameOperatorRequest struct {
	Name string `json:"name" validate:"required,free_text"`
}

// ChangeRevisionRequest swaps an operator to another revision of its group.
type ChangeRevisionRequest struct {
	TransformationID string `json:"transformation_id" validate:"required"`
}

// ExposureRequest toggles an optional connector's visibility.
type ExposureRequest struct {
	Exposed bool `json:"exposed"`
}

// IOUpdateRequest is one confirmed row of the workflow I/O dialog.
type IOUpdateRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name"`
	IsConstant bool   `json:"is_constant"`
	Value      any    `json:"value,omitempty"`
}

// ConfigureIORequest carries the confirmed I/O dialog. Updates addresses
// workflow boundary connectors, Inputs/Outputs replace a component's
// io_interface.
type ConfigureIORequest struct {
	Updates []IOUpdateRequest `json:"updates,omitempty"`
	Inputs  []models.IOItem   `json:"inputs,omitempty"`
	Outputs []models.IOItem   `json:"outputs,omitempty"`
}

// OpenEditor starts an editing session for a transformation and returns its
// current state. Opening an already open transformation joins the running
// session.
func (h *APIHandlers) OpenEditor(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	engine, err := h.editorSessions.Open(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(engine.Transformation())
}

// GetEditorState returns the live editing state, including edits not yet
// autosaved.
func (h *APIHandlers) GetEditorState(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	return c.JSON(engine.Transformation())
}

// CloseEditor flushes pending edits and ends the session.
func (h *APIHandlers) CloseEditor(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.editorSessions.Close(c.Context(), id); err != nil {
		if errors.Is(err, editor.ErrNoSession) {
			return notFound(c, "no open editing session")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddEditorElement handles a canvas add event for the open session.
func (h *APIHandlers) AddEditorElement(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req CanvasElementRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := engine.AddElement(req.element()); err != nil {
		return badRequest(c, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MoveEditorElement handles a canvas move event. Unmatched element ids are
// ignored.
func (h *APIHandlers) MoveEditorElement(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req CanvasElementRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	engine.UpdatePosition(req.element())

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveEditorElement handles a canvas remove event for one element id.
func (h *APIHandlers) RemoveEditorElement(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	engine.RemoveElement(c.Params("elementId"))

	return c.SendStatus(fiber.StatusNoContent)
}

// DropEditorOperator places a new operator for the dropped revision.
func (h *APIHandlers) DropEditorOperator(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req DropOperatorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	dropped, err := h.transformationService.Get(c.Context(), req.TransformationID)
	if err != nil {
		return handleServiceError(c, err)
	}

	operator, err := engine.DropOperator(c.Context(), dropped, req.Position)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(operator)
}

// CopyEditorOperator duplicates an operator at the fixed offset.
func (h *APIHandlers) CopyEditorOperator(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	operator, err := engine.CopyOperator(c.Context(), c.Params("operatorId"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(operator)
}

// RenameEditorOperator changes an operator's display name.
func (h *APIHandlers) RenameEditorOperator(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req RenameOperatorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := engine.RenameOperator(c.Context(), c.Params("operatorId"), req.Name); err != nil {
		return badRequest(c, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ChangeEditorOperatorRevision atomically swaps an operator to another
// released revision of the same group.
func (h *APIHandlers) ChangeEditorOperatorRevision(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req ChangeRevisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	replacement, err := h.transformationService.Get(c.Context(), req.TransformationID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := engine.ChangeRevision(c.Context(), c.Params("operatorId"), replacement); err != nil {
		return badRequest(c, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetEditorConnectorExposure toggles an optional connector of an operator.
func (h *APIHandlers) SetEditorConnectorExposure(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req ExposureRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := engine.SetOptionalExposure(c.Params("operatorId"), c.Params("connectorId"), req.Exposed); err != nil {
		return badRequest(c, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ConfigureEditorIO applies the confirmed I/O dialog: boundary connector
// rows for workflows, a full io_interface replacement for components.
func (h *APIHandlers) ConfigureEditorIO(c fiber.Ctx) error {
	engine, ok := h.editorSessions.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no open editing session")
	}

	var req ConfigureIORequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if engine.Transformation().Type == models.TypeComponent {
		if err := engine.ConfigureComponentIO(c.Context(), req.Inputs, req.Outputs); err != nil {
			return badRequest(c, err.Error())
		}

		return c.SendStatus(fiber.StatusNoContent)
	}

	updates := make([]editor.IOUpdate, len(req.Updates))
	for i, row := range req.Updates {
		updates[i] = editor.IOUpdate{
			ID:         row.ID,
			Name:       row.Name,
			IsConstant: row.IsConstant,
			Value:      row.Value,
		}
	}

	if err := engine.ConfigureWorkflowIO(c.Context(), updates); err != nil {
		return badRequest(c, err.Error())
	}

	return c.SendStatus(fiber.StatusNoContent)
}
