package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/chat"
)

func TestChatReturnsAssistantTurn(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.chat.reply = "Hello! How can I help?"

	rec := env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "hello"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "assistant", resp.Role)
	require.Equal(t, "Hello! How can I help?", resp.Content)
	require.Equal(t, 1, env.chat.requestCount())
}

func TestChatRejectsBlankMessage(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")

	for _, message := range []string{"", "   ", "\n\t"} {
		rec := env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": message}, token)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	require.Equal(t, 0, env.chat.requestCount())
}

func TestChatStreamsSSE(t *testing.T) {
	env := newTestEnv(t)
	env.service.Profile.LLMStreaming = true
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.chat.fragments = []string{"Hel", "lo ", "there"}

	body := strings.NewReader(`{"message":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	// Reassembling the data events yields the committed content.
	var reassembled strings.Builder
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			reassembled.WriteString(after)
		}
	}
	require.Equal(t, "Hello there", reassembled.String())
	require.Contains(t, rec.Body.String(), "event: done")
}

func TestChatSessionSurvivesAcrossRequests(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")

	rec := env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "first"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "second"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	session, ok := env.service.sessions.Peek(userID)
	require.True(t, ok)
	transcript := session.Transcript()
	require.Len(t, transcript, 4)
	require.Equal(t, "first", transcript[0].Content)
	require.Equal(t, "second", transcript[2].Content)
}

func TestLogoutFlushesTranscript(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.chat.reply = "hi"

	rec := env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "hello"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	record, err := env.store.GetLatestChatHistory(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, record)
	var turns []chat.Turn
	require.NoError(t, json.Unmarshal([]byte(record.Messages), &turns))
	require.Equal(t, []chat.Turn{
		{Role: chat.RoleUser, Content: "hello"},
		{Role: chat.RoleAssistant, Content: "hi"},
	}, turns)

	// The session is gone; the next chat starts fresh from stored history.
	_, ok := env.service.sessions.Peek(userID)
	require.False(t, ok)
}

func TestLogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")

	rec := env.doJSON(http.MethodPost, "/api/v1/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadDocumentSetsReferenceContext(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.service.Extractor = &fakeExtractor{text: "extracted body"}

	rec := doMultipart(t, env, "/api/v1/upload_document", "file", "doc.txt", []byte("raw"), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The uploaded document becomes reference context for the next exchange.
	rec = env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "summarize"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	env.chat.mu.Lock()
	request := env.chat.requests[len(env.chat.requests)-1]
	env.chat.mu.Unlock()
	require.Equal(t, "system", request[0].Role)
	require.Equal(t, "Reference Document: extracted body", request[0].Content)

	_, ok := env.service.sessions.Peek(userID)
	require.True(t, ok)
}

func TestUploadDocumentExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.service.Extractor = &fakeExtractor{err: errFakeExtract}

	rec := doMultipart(t, env, "/api/v1/upload_document", "file", "doc.pdf", []byte("raw"), token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTranscribe(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.service.Transcriber = &fakeTranscriber{text: "turn on the lights"}

	rec := doMultipart(t, env, "/api/v1/transcribe", "audio", "clip.wav", []byte("riff"), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transcribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "turn on the lights", resp.Text)
	require.True(t, resp.Understood)
}

func TestTranscribeSentinel(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.service.Transcriber = &fakeTranscriber{text: "Could not understand audio"}

	rec := doMultipart(t, env, "/api/v1/transcribe", "audio", "clip.wav", []byte("riff"), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transcribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Understood)
}

func TestDescribeImage(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.service.Describer = &fakeDescriber{description: "a red bicycle"}

	rec := doMultipart(t, env, "/api/v1/describe_image", "image", "photo.png", []byte{0x89, 0x50}, token, map[string]string{
		"prompt": "What is this?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp describeImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "a red bicycle", resp.Description)
}

// Flushing the same user's history twice concatenates rather than replaces.
func TestHistoryConcatenatesAcrossLogins(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signupAndLogin(t, "alice@example.com", "hunter22")
	env.chat.reply = "hi"

	rec := env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "hello"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(http.MethodPost, "/api/v1/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "again"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(http.MethodPost, "/api/v1/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	record, err := env.store.GetLatestChatHistory(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, record)
	var turns []chat.Turn
	require.NoError(t, json.Unmarshal([]byte(record.Messages), &turns))
	require.Len(t, turns, 4)
	require.Equal(t, "hello", turns[0].Content)
	require.Equal(t, "again", turns[2].Content)
}
