package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codelore/backend/internal/server/middleware"
	"github.com/codelore/backend/internal/store"
	"github.com/codelore/backend/pkg/logger"
)

func GetChatHistoryHandler(c echo.Context) error {
	type getChatParams struct {
		ID    string `param:"id" validate:"required"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=200"`
	}

	params := new(getChatParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	app := c.(*middleware.AppContext).App
	messages, err := app.Store.GetChatHistory(c.Request().Context(), params.ID, params.Limit)
	if err != nil {
		logger.Error("Failed to get chat history", "repo", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}
	return c.JSON(http.StatusOK, messages)
}
