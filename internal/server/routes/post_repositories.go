package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/queue"
	"github.com/codelore/backend/internal/repo"
	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/pkg/logger"
)

// CreateRepositoryHandler registers a repository and queues its analysis.
func CreateRepositoryHandler(c echo.Context) error {
	type createRepositoryParams struct {
		URL string `json:"url" validate:"required,url"`
	}

	params := new(createRepositoryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := repo.ValidateURL(params.URL); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	repository, err := app.Store.CreateRepository(ctx, repo.NameFromURL(params.URL), params.URL)
	if err != nil {
		logger.Error("Failed to create repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	err = queue.PublishAnalyze(app.Queue, queue.AnalyzeMsg{
		RepositoryID: repository.ID,
		URL:          repository.URL,
	})
	if err != nil {
		logger.Error("Failed to queue analysis", "repo", repository.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to queue analysis"})
	}

	return c.JSON(http.StatusAccepted, repository)
}
