package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/logger"
	"github.com/codelore/backend/pkg/rag"
)

// ChatHandler answers one question about an analyzed repository and appends
// both turns to the chat history.
func ChatHandler(c echo.Context) error {
	type chatParams struct {
		ID       string `param:"id" validate:"required"`
		Question string `json:"question" validate:"required,min=1,max=2000"`
	}

	params := new(chatParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if app.Engine == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"message": "No language model provider configured",
		})
	}

	repository, err := app.Store.GetRepository(ctx, params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Repository not found"})
		}
		logger.Error("Failed to get repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if repository.Status != store.StatusAnalyzed {
		return c.JSON(http.StatusConflict, map[string]string{
			"message": "Repository analysis is not finished yet",
			"status":  repository.Status,
		})
	}

	// Small talk is answered without touching the graph, so only load
	// records and project the graph for real questions.
	if !rag.IsCasual(params.Question) {
		records, err := app.Store.GetRecords(ctx, repository.ID)
		if err != nil {
			logger.Error("Failed to load records", "repo", repository.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
		if _, err := app.Graph.EnsureLoaded(ctx, repository.ID, records); err != nil {
			logger.Error("Failed to load graph", "repo", repository.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Graph database unavailable"})
		}
	}

	result, err := app.Engine.Answer(ctx, rag.RepoInfo{
		Name:          repository.Name,
		Language:      repository.Language,
		Description:   repository.Description,
		FilesAnalyzed: repository.FilesAnalyzed,
	}, params.Question)
	if err != nil {
		logger.Error("Failed to answer question", "repo", repository.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	if err := app.Store.AddChatMessage(ctx, repository.ID, "user", params.Question, nil); err != nil {
		logger.Warn("Failed to save user message", "repo", repository.ID, "err", err)
	}
	if err := app.Store.AddChatMessage(ctx, repository.ID, "assistant", result.Answer, result); err != nil {
		logger.Warn("Failed to save assistant message", "repo", repository.ID, "err", err)
	}

	return c.JSON(http.StatusOK, result)
}
