// Package web provides HTTP handlers and REST API endpoints for the designer.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowdesk/flowdesk/pkg/adapters"
	"github.com/flowdesk/flowdesk/pkg/editor"
	"github.com/flowdesk/flowdesk/pkg/flowchart"
	"github.com/flowdesk/flowdesk/pkg/importexport"
	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/services"
)

type APIHandlers struct {
	transformationService *services.Transformation
	wiringService         *services.Wiring
	executionService      *services.Execution
	importer              *importexport.Importer
	editorSessions        *editor.Manager
	adapterRegistry       []adapters.Adapter
	adapterClient         *adapters.Client
	adapterCache          *adapters.Cache
	validator             *validator.Validate
}

func NewAPIHandlers(
	transformationService *services.Transformation,
	wiringService *services.Wiring,
	executionService *services.Execution,
	importer *importexport.Importer,
	editorSessions *editor.Manager,
	adapterRegistry []adapters.Adapter,
	adapterClient *adapters.Client,
	adapterCache *adapters.Cache,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		transformationService: transformationService,
		wiringService:         wiringService,
		executionService:      executionService,
		importer:              importer,
		editorSessions:        editorSessions,
		adapterRegistry:       adapterRegistry,
		adapterClient:         adapterClient,
		adapterCache:          adapterCache,
		validator:             validator,
	}
}

func (h *APIHandlers) GetTransformations(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.transformationService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]TransformationSummary, len(result))
	for i, transformation := range result {
		summaries[i] = SummarizeTransformation(transformation)
	}

	return c.JSON(summaries)
}

// parseListRequest parses and validates query parameters for listing.
func (h *APIHandlers) parseListRequest(c fiber.Ctx) (*services.ListTransformationsRequest, error) {
	req := &services.ListTransformationsRequest{
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		kind := models.TransformationType(typeStr)
		req.Type = &kind
	}

	if stateStr := c.Query("state"); stateStr != "" {
		state := models.TransformationState(stateStr)
		req.State = &state
	}

	if includeStr := c.Query("include_disabled"); includeStr != "" {
		include, err := strconv.ParseBool(includeStr)
		if err != nil {
			return nil, err
		}

		req.IncludeDisabled = include
	}

	return req, nil
}

func (h *APIHandlers) GetTransformationsByCategory(c fiber.Ctx) error {
	var kind *models.TransformationType

	if typeStr := c.Query("type"); typeStr != "" {
		t := models.TransformationType(typeStr)
		kind = &t
	}

	groups, err := h.transformationService.ByCategoryAndName(c.Context(), kind, c.Query("name"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(groups)
}

func (h *APIHandlers) GetTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	transformation, err := h.transformationService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(transformation)
}

func (h *APIHandlers) CreateTransformation(c fiber.Ctx) error {
	var req CreateTransformationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.transformationService.Create(c.Context(), services.CreateTransformationRequest{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		VersionTag:      req.VersionTag,
		Type:            models.TransformationType(req.Type),
		RevisionGroupID: req.RevisionGroupID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	transformation := &models.Transformation{}
	if err := c.Bind().JSON(transformation); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	transformation.ID = id

	if content, ok := transformation.WorkflowContent(); ok {
		if err := content.Validate(); err != nil {
			return badRequest(c, err.Error())
		}
	}

	updated, err := h.transformationService.Update(c.Context(), transformation)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	if err := h.transformationService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ReleaseTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	released, err := h.transformationService.Release(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(released)
}

func (h *APIHandlers) DisableTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	disabled, err := h.transformationService.Disable(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(disabled)
}

// GetRevisions lists the released sibling revisions of a transformation,
// feeding the change-revision dialog.
func (h *APIHandlers) GetRevisions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	transformation, err := h.transformationService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	revisions, err := h.transformationService.ReleasedRevisions(c.Context(), transformation.RevisionGroupID, id)
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]TransformationSummary, len(revisions))
	for i, revision := range revisions {
		summaries[i] = SummarizeTransformation(revision)
	}

	return c.JSON(summaries)
}

func (h *APIHandlers) CreateRevision(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	var req NewRevisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	draft, err := h.transformationService.NewRevision(c.Context(), id, req.VersionTag)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(draft)
}

func (h *APIHandlers) GetWiring(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	wiring, err := h.wiringService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wiring)
}

func (h *APIHandlers) SaveWiring(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	wiring := &models.TestWiring{}
	if err := c.Bind().JSON(wiring); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	saved, err := h.wiringService.Save(c.Context(), id, wiring)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) ExecuteTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	var req ExecuteRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	jobID, err := h.executionService.Execute(c.Context(), id, req.Wiring)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(ExecuteResponse{JobID: jobID})
}

// GetFlowchart renders the canvas description of a revision: a single node
// for components, the full graph for workflows.
func (h *APIHandlers) GetFlowchart(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	transformation, err := h.transformationService.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if transformation.Type == models.TypeComponent {
		return c.JSON(flowchart.ConvertComponentToFlowchart(transformation))
	}

	chart, err := flowchart.ConvertWorkflowToFlowchart(transformation)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(chart)
}

func (h *APIHandlers) ImportTransformation(c fiber.Ctx) error {
	overwrite := false

	if overwriteStr := c.Query("overwrite"); overwriteStr != "" {
		parsed, err := strconv.ParseBool(overwriteStr)
		if err != nil {
			return badRequest(c, "Invalid overwrite parameter")
		}

		overwrite = parsed
	}

	imported, err := h.importer.Import(c.Context(), c.Body(), overwrite)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(imported)
}

func (h *APIHandlers) ExportTransformation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Transformation ID is required")
	}

	document, err := h.importer.Export(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(document)
}

func (h *APIHandlers) GetAdapters(c fiber.Ctx) error {
	return c.JSON(h.adapterRegistry)
}

// GetAdapterStructure returns the flattened browse tree of one adapter,
// optionally narrowed by free text and by the data type of the port being
// wired. The cached tree is used when available.
func (h *APIHandlers) GetAdapterStructure(c fiber.Ctx) error {
	id := c.Params("id")

	adapter, ok := h.adapterByID(id)
	if !ok {
		return notFound(c, "adapter not found")
	}

	tree, err := h.adapterTree(c, adapter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(adapters.Flatten(*tree, c.Query("filter"), models.DataType(c.Query("dataType"))))
}

func (h *APIHandlers) adapterByID(id string) (adapters.Adapter, bool) {
	for _, adapter := range h.adapterRegistry {
		if adapter.ID == id {
			return adapter, true
		}
	}

	return adapters.Adapter{}, false
}

func (h *APIHandlers) adapterTree(c fiber.Ctx, adapter adapters.Adapter) (*adapters.Tree, error) {
	if h.adapterCache != nil {
		tree, err := h.adapterCache.Get(c.Context(), adapter.ID)
		if err == nil {
			return tree, nil
		}

		if !errors.Is(err, adapters.ErrTreeNotCached) {
			return nil, err
		}
	}

	tree, err := h.adapterClient.FetchTree(c.Context(), adapter)
	if err != nil {
		return nil, err
	}

	if h.adapterCache != nil {
		if err := h.adapterCache.Set(c.Context(), adapter.ID, tree); err != nil {
			return nil, err
		}
	}

	return tree, nil
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.transformationService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "FlowDesk API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "FlowDesk API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
