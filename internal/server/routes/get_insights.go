package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/logger"
)

// GetInsightsHandler returns a structural summary of the repository graph.
func GetInsightsHandler(c echo.Context) error {
	type getInsightsParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getInsightsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	repository, err := app.Store.GetRepository(ctx, params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Repository not found"})
		}
		logger.Error("Failed to get repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	records, err := app.Store.GetRecords(ctx, repository.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusConflict, map[string]string{"message": "Repository has no analysis results yet"})
		}
		logger.Error("Failed to load records", "repo", repository.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if _, err := app.Graph.EnsureLoaded(ctx, repository.ID, records); err != nil {
		logger.Error("Failed to load graph", "repo", repository.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Graph database unavailable"})
	}

	insights, err := app.Graph.Insights(ctx)
	if err != nil {
		logger.Error("Failed to compute insights", "repo", repository.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, insights)
}
