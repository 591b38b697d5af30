package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/codelore/backend/internal/oracle"
	"github.com/codelore/backend/internal/queue"
	mid "github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/graph"
	"github.com/codelore/backend/pkg/graphstore"
	"github.com/codelore/backend/pkg/logger"
	"github.com/codelore/backend/pkg/rag"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := store.Migrate(databaseURL, util.GetEnv("MIGRATIONS_PATH")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

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

	// Without a language model provider the API still serves repositories
	// and insights; only chat is unavailable.
	var engine *rag.Engine
	aiClient, err := oracle.NewFromEnv(ctx)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			logger.Fatal("Failed to initialize language model providers", "err", err)
		}
		logger.Warn("No language model provider configured, chat is disabled")
	} else {
		engine, err = rag.NewEngine(aiClient, graphStore)
		if err != nil {
			logger.Fatal("Failed to create answer engine", "err", err)
		}
	}

	app := &mid.App{
		DBConn: conn,
		Queue:  ch,
		Store:  store.New(conn),
		Graph:  graph.NewProjector(graphStore),
	}
	if engine != nil {
		app.Engine = engine
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
