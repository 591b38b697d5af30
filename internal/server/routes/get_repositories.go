package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/logger"
)

func GetRepositoriesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	repositories, err := app.Store.ListRepositories(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list repositories", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if repositories == nil {
		repositories = []store.Repository{}
	}
	return c.JSON(http.StatusOK, repositories)
}

func GetRepositoryHandler(c echo.Context) error {
	type getRepositoryParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getRepositoryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	repository, err := app.Store.GetRepository(c.Request().Context(), params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Repository not found"})
		}
		logger.Error("Failed to get repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, repository)
}

// GetRepositoryStatusHandler returns just the analysis state, for polling.
func GetRepositoryStatusHandler(c echo.Context) error {
	type getStatusParams struct {
		ID string `param:"id" validate:"required"`
	}

	type statusResponse struct {
		Status   string  `json:"status"`
		Phase    string  `json:"phase,omitempty"`
		Progress float64 `json:"progress"`
		Error    string  `json:"error,omitempty"`
	}

	params := new(getStatusParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	repository, err := app.Store.GetRepository(c.Request().Context(), params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Repository not found"})
		}
		logger.Error("Failed to get repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, statusResponse{
		Status:   repository.Status,
		Phase:    repository.Phase,
		Progress: repository.Progress,
		Error:    repository.Error,
	})
}
