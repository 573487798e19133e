package v1

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/parleyhq/parley/chat"
	"github.com/parleyhq/parley/store"
)

type storeChatHistoryRequest struct {
	UserID   int32       `json:"user_id"`
	Messages []chat.Turn `json:"messages"`
	Summary  string      `json:"summary"`
}

func (s *APIV1Service) handleStoreChatHistory(c echo.Context) error {
	var req storeChatHistoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	if req.UserID == 0 {
		req.UserID = currentUserID(c)
	}
	if req.UserID != currentUserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot store history for another user")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages are required")
	}
	for _, m := range req.Messages {
		if !m.Role.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid message role")
		}
	}

	ctx := c.Request().Context()
	user, err := s.Store.GetUserByID(ctx, req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	encoded, err := json.Marshal(req.Messages)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode messages")
	}
	if _, err := s.Store.CreateChatHistory(ctx, &store.ChatHistory{
		UID:       shortuuid.New(),
		UserID:    req.UserID,
		Messages:  string(encoded),
		Summary:   req.Summary,
		CreatedTs: time.Now().Unix(),
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store chat history")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Chat history stored"})
}

type chatHistoryResponse struct {
	Messages  []chat.Turn `json:"messages"`
	Summary   string      `json:"summary"`
	CreatedAt int64       `json:"createdAt"`
}

func (s *APIV1Service) handleGetChatHistory(c echo.Context) error {
	userID64, err := strconv.ParseInt(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	userID := int32(userID64)
	if userID != currentUserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot read history for another user")
	}

	ctx := c.Request().Context()
	user, err := s.Store.GetUserByID(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	records, err := s.Store.ListChatHistories(ctx, &store.FindChatHistory{UserID: &userID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list chat history")
	}

	out := make([]chatHistoryResponse, 0, len(records))
	for _, record := range records {
		turns, err := decodeTurns(record.Messages)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to decode stored transcript")
		}
		out = append(out, chatHistoryResponse{
			Messages:  turns,
			Summary:   record.Summary,
			CreatedAt: record.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, out)
}
