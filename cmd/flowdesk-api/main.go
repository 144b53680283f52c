package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowdesk/flowdesk/pkg/adapters"
	"github.com/flowdesk/flowdesk/pkg/cmd"
	"github.com/flowdesk/flowdesk/pkg/log"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "flowdesk-api",
		Usage:                 "Design and manage dataflow transformations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file:// or postgres://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka broker addresses, used when the event bus is kafka",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "adapters",
				Usage:   "JSON array of external adapters ([{\"id\":...,\"name\":...,\"url\":...}])",
				Sources: cli.EnvVars("FLOWDESK_ADAPTERS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis connection URL for the adapter tree cache",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "adapter-refresh-schedule",
				Usage:   "Cron schedule for refreshing cached adapter trees",
				Value:   "@every 15m",
				Sources: cli.EnvVars("ADAPTER_REFRESH_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "adapter-timeout",
				Usage:   "Timeout for adapter HTTP requests",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("ADAPTER_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing FlowDesk API")

			registry, err := parseAdapters(command.String("adapters"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, eventBus, registry, APIConfig{
				RedisURL:        command.String("redis-url"),
				RefreshSchedule: command.String("adapter-refresh-schedule"),
				AdapterTimeout:  command.Duration("adapter-timeout"),
			})

			if err := api.Start(ctx, command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func parseAdapters(raw string) ([]adapters.Adapter, error) {
	if raw == "" {
		return nil, nil
	}

	var registry []adapters.Adapter
	if err := json.Unmarshal([]byte(raw), &registry); err != nil {
		return nil, fmt.Errorf("invalid adapters configuration: %w", err)
	}

	return registry, nil
}
