package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/chat"
)

func TestStoreAndGetChatHistory(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")

	messages := []chat.Turn{
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "hi there"},
	}
	rec := env.doJSON(http.MethodPost, "/api/v1/store_chat_history", map[string]any{
		"messages": messages,
		"summary":  "greeting",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/get_chat_history/%d", userID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		Messages []chat.Turn `json:"messages"`
		Summary  string      `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, messages, out[0].Messages)
	require.Equal(t, "greeting", out[0].Summary)
}

func TestStoreChatHistoryValidation(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")

	rec := env.doJSON(http.MethodPost, "/api/v1/store_chat_history", map[string]any{
		"messages": []chat.Turn{},
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/store_chat_history", map[string]any{
		"messages": []map[string]string{{"role": "wizard", "content": "zap"}},
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// A user may only write their own history.
	rec = env.doJSON(http.MethodPost, "/api/v1/store_chat_history", map[string]any{
		"user_id":  userID + 1,
		"messages": []chat.Turn{{Role: chat.RoleUser, Content: "hello"}},
	}, token)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetChatHistoryForbidden(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")

	rec := env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/get_chat_history/%d", userID+1), nil, token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/v1/get_chat_history/not-a-number", nil, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChatHistoryEmpty(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")

	rec := env.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/get_chat_history/%d", userID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Empty(t, out)
}
