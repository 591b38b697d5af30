package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/logger"
)

func DeleteRepositoryHandler(c echo.Context) error {
	type deleteRepositoryParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(deleteRepositoryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	if err := app.Store.DeleteRepository(c.Request().Context(), params.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Repository not found"})
		}
		logger.Error("Failed to delete repository", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	return c.NoContent(http.StatusNoContent)
}
