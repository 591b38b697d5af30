package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/codelore/backend/internal/oracle"
	"github.com/codelore/backend/internal/pipeline"
	"github.com/codelore/backend/internal/queue"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/batch"
	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graph"
	"github.com/codelore/backend/pkg/graphstore"
	"github.com/codelore/backend/pkg/logger"
	"github.com/codelore/backend/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init pgx client
	databaseURL := util.GetEnv("DATABASE_URL")
	if err := store.Migrate(databaseURL, util.GetEnv("MIGRATIONS_PATH")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}
	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	db := store.New(pgConn)

	// Init graph database
	graphStore, err := graphstore.NewNeo4jStore(ctx, graphstore.Neo4jParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USERNAME"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnv("NEO4J_DATABASE"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to graph database", "err", err)
	}
	defer graphStore.Close(context.Background())

	// Language model providers. Without one, analysis still runs and stores
	// code-only records.
	aiClient, err := oracle.NewFromEnv(ctx)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			logger.Fatal("Failed to initialize language model providers", "err", err)
		}
		logger.Warn("No language model provider configured, running in code-only mode")
		aiClient = nil
	}

	extractor := extract.New(aiClient, db.ExtractionCache(), extract.Options{
		Attempts:   util.GetEnvInt("EXTRACT_ATTEMPTS", 3),
		RetryDelay: time.Second,
		BatchDelay: time.Duration(util.GetEnvInt("EXTRACT_BATCH_DELAY_MS", 500)) * time.Millisecond,
	})

	counter := batch.NewTokenCounter()
	batcher := batch.NewBatcher(counter, util.GetEnvInt("BATCH_TOKEN_LIMIT", batch.DefaultTokenLimit))

	pipe := pipeline.New(pipeline.Params{
		Store:     db,
		Extractor: extractor,
		Projector: graph.NewProjector(graphStore),
		Batcher:   batcher,
		WorkDir:   util.GetEnv("WORK_DIR"),
	})

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Repositories are analyzed in parallel up to the concurrency limit;
	// within one repository the batches still run sequentially.
	concurrency := util.GetEnvInt("ANALYZE_CONCURRENCY", 2)
	if concurrency < 1 {
		concurrency = 1
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(concurrency, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.AnalyzeQueue,
		fmt.Sprintf("%s_consumer", queue.AnalyzeQueue),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.AnalyzeQueue, "err", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed")
					return
				}
				group.Go(func() error {
					processMessage(groupCtx, consumerCh, pipe, msg)
					return nil
				})
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, waiting for running analyses...")
	if err := group.Wait(); err != nil {
		logger.Error("Worker group error", "err", err)
	}
}

func processMessage(ctx context.Context, ch *amqp.Channel, pipe *pipeline.Pipeline, msg amqp.Delivery) {
	startTime := time.Now()
	logger.Info("Received message", "queue", queue.AnalyzeQueue)

	if err := queue.ProcessAnalyze(ctx, pipe, string(msg.Body)); err != nil {
		logger.Error("Error processing message", "queue", queue.AnalyzeQueue, "err", err)
		handleProcessingError(ch, msg, queue.AnalyzeQueue)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message", "err", err)
	}

	duration := time.Since(startTime)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60
	logger.Info(
		"Message processed successfully",
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// After 10 attempts the message goes to the dead-letter queue.
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
