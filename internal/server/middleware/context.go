package middleware

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graph"
	"github.com/codelore/backend/pkg/rag"
)

// Repositories is the persistence surface the route handlers use.
// *store.Store satisfies it.
type Repositories interface {
	CreateRepository(ctx context.Context, name string, url string) (store.Repository, error)
	GetRepository(ctx context.Context, id string) (store.Repository, error)
	ListRepositories(ctx context.Context) ([]store.Repository, error)
	DeleteRepository(ctx context.Context, id string) error
	GetRecords(ctx context.Context, repoID string) ([]extract.Record, error)
	AddChatMessage(ctx context.Context, repoID string, role string, content string, metadata any) error
	GetChatHistory(ctx context.Context, repoID string, limit int) ([]store.ChatMessage, error)
}

// Graph projects extraction records into the graph store on demand.
// *graph.Projector satisfies it.
type Graph interface {
	EnsureLoaded(ctx context.Context, repoName string, records []extract.Record) (bool, error)
	Insights(ctx context.Context) (graph.Insights, error)
}

// Answerer resolves a chat question against an analyzed repository.
// *rag.Engine satisfies it.
type Answerer interface {
	Answer(ctx context.Context, repo rag.RepoInfo, question string) (rag.Result, error)
}

// App bundles the server's shared dependencies for route handlers.
type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel
	Store  Repositories
	Graph  Graph
	Engine Answerer
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
