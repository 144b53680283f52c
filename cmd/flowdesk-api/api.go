// Package main provides the FlowDesk API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowdesk/flowdesk/pkg/adapters"
	"github.com/flowdesk/flowdesk/pkg/editor"
	"github.com/flowdesk/flowdesk/pkg/eventbus"
	"github.com/flowdesk/flowdesk/pkg/importexport"
	"github.com/flowdesk/flowdesk/pkg/otelhelper"
	"github.com/flowdesk/flowdesk/pkg/persistence"
	"github.com/flowdesk/flowdesk/pkg/services"
	"github.com/flowdesk/flowdesk/pkg/validation"
	"github.com/flowdesk/flowdesk/pkg/web"
)

// APIConfig carries the optional infrastructure settings of the server.
type APIConfig struct {
	RedisURL        string
	RefreshSchedule string
	AdapterTimeout  time.Duration
}

type API struct {
	logger         *slog.Logger
	persistence    persistence.Persistence
	eventBus       eventbus.EventBus
	registry       []adapters.Adapter
	editorSessions *editor.Manager
	config         APIConfig
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	registry []adapters.Adapter,
	config APIConfig,
) *API {
	return &API{
		logger:         logger,
		persistence:    persistence,
		eventBus:       eventBus,
		registry:       registry,
		editorSessions: editor.NewManager(persistence.TransformationRepository(), eventBus),
		config:         config,
	}
}

func (a *API) App(ctx context.Context) *fiber.App {
	tracer, err := otelhelper.NewTracer(ctx, "flowdesk-api")
	if err != nil {
		a.logger.WarnContext(ctx, "Tracing disabled", "error", err)

		tracer = noop.NewTracerProvider().Tracer("flowdesk-api")
	}

	transformationService := services.NewTransformation(a.persistence, a.eventBus)
	wiringService := services.NewWiring(a.persistence)
	executionService := services.NewExecution(a.persistence, a.eventBus, tracer)
	importer := importexport.NewImporter(a.persistence)

	adapterClient := adapters.NewClient(a.config.AdapterTimeout)
	adapterCache := a.adapterCache(ctx, adapterClient)

	handlers := web.NewAPIHandlers(
		transformationService,
		wiringService,
		executionService,
		importer,
		a.editorSessions,
		a.registry,
		adapterClient,
		adapterCache,
		validation.NewValidator(),
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowDesk API")
	})

	tr := app.Group("/transformations")
	tr.Get("/", handlers.GetTransformations)
	tr.Post("/", handlers.CreateTransformation)
	tr.Get("/by-category", handlers.GetTransformationsByCategory)
	tr.Post("/import", handlers.ImportTransformation)
	tr.Get("/:id", handlers.GetTransformation)
	tr.Put("/:id", handlers.UpdateTransformation)
	tr.Delete("/:id", handlers.DeleteTransformation)
	tr.Post("/:id/release", handlers.ReleaseTransformation)
	tr.Post("/:id/disable", handlers.DisableTransformation)
	tr.Get("/:id/revisions", handlers.GetRevisions)
	tr.Post("/:id/revisions", handlers.CreateRevision)
	tr.Get("/:id/wirings", handlers.GetWiring)
	tr.Post("/:id/wirings", handlers.SaveWiring)
	tr.Post("/:id/execute", handlers.ExecuteTransformation)
	tr.Get("/:id/flowchart", handlers.GetFlowchart)
	tr.Get("/:id/export", handlers.ExportTransformation)

	ed := tr.Group("/:id/editor")
	ed.Post("/", handlers.OpenEditor)
	ed.Get("/", handlers.GetEditorState)
	ed.Delete("/", handlers.CloseEditor)
	ed.Post("/elements", handlers.AddEditorElement)
	ed.Put("/elements", handlers.MoveEditorElement)
	ed.Delete("/elements/:elementId", handlers.RemoveEditorElement)
	ed.Post("/operators", handlers.DropEditorOperator)
	ed.Post("/operators/:operatorId/copy", handlers.CopyEditorOperator)
	ed.Put("/operators/:operatorId/name", handlers.RenameEditorOperator)
	ed.Put("/operators/:operatorId/revision", handlers.ChangeEditorOperatorRevision)
	ed.Put("/operators/:operatorId/connectors/:connectorId/exposure", handlers.SetEditorConnectorExposure)
	ed.Put("/io", handlers.ConfigureEditorIO)

	ad := app.Group("/adapters")
	ad.Get("/", handlers.GetAdapters)
	ad.Get("/:id/structure", handlers.GetAdapterStructure)

	app.Get("/health", handlers.HealthCheck)

	return app
}

// adapterCache builds the redis-backed tree cache and starts the periodic
// refresher. Without a redis URL every structure request hits the adapters
// directly.
func (a *API) adapterCache(ctx context.Context, client *adapters.Client) *adapters.Cache {
	if a.config.RedisURL == "" {
		return nil
	}

	options, err := redis.ParseURL(a.config.RedisURL)
	if err != nil {
		a.logger.WarnContext(ctx, "Adapter cache disabled, invalid redis URL", "error", err)

		return nil
	}

	cache := adapters.NewCache(redis.NewClient(options), 0)

	refresher := adapters.NewRefresher(a.registry, client, cache, a.logger)
	if err := refresher.Start(ctx, a.config.RefreshSchedule); err != nil {
		a.logger.WarnContext(ctx, "Adapter tree refresher not started", "error", err)
	}

	return cache
}

func (a *API) Start(ctx context.Context, port int) error {
	app := a.App(ctx)

	err := app.Listen(":" + strconv.Itoa(port))

	if closeErr := a.editorSessions.CloseAll(context.WithoutCancel(ctx)); closeErr != nil {
		a.logger.ErrorContext(ctx, "Failed to flush open editing sessions", "error", closeErr)
	}

	return err
}
