package v1

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parleyhq/parley/chat"
	"github.com/parleyhq/parley/plugin/speech"
)

// maxUploadBytes caps document, audio, and image uploads.
const maxUploadBytes = 20 << 20

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// handleChat runs one orchestrated exchange. With Accept: text/event-stream
// the fragments are delivered as SSE data events followed by a done event;
// otherwise the committed assistant turn is returned as JSON.
func (s *APIV1Service) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}

	ctx := c.Request().Context()
	session, err := s.sessions.GetOrCreate(ctx, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open session")
	}

	if c.Request().Header.Get("Accept") == "text/event-stream" {
		return s.streamChat(c, session, req.Message)
	}

	assistant, ok := session.Exchange(ctx, req.Message, nil)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "empty message")
	}
	return c.JSON(http.StatusOK, chatResponse{Role: string(assistant.Role), Content: assistant.Content})
}

func (s *APIV1Service) streamChat(c echo.Context, session *chat.Session, message string) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	_, ok := session.Exchange(c.Request().Context(), message, func(fragment string) {
		fmt.Fprintf(resp, "data: %s\n\n", fragment)
		resp.Flush()
	})
	if !ok {
		fmt.Fprint(resp, "event: error\ndata: empty message\n\n")
		resp.Flush()
		return nil
	}

	fmt.Fprint(resp, "event: done\ndata: \n\n")
	resp.Flush()
	return nil
}

func (s *APIV1Service) handleUploadDocument(c echo.Context) error {
	if s.Extractor == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document extraction is not enabled")
	}

	file, header, err := c.Request().FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	contentType := header.Header.Get("Content-Type")

	ctx := c.Request().Context()
	if err := s.extractSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server busy")
	}
	defer s.extractSemaphore.Release(1)

	text, err := s.Extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		slog.Warn("document extraction failed", "content_type", contentType, "error", err)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "could not extract text from document")
	}

	session, err := s.sessions.GetOrCreate(ctx, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open session")
	}
	session.SetReferenceContext(text)

	return c.JSON(http.StatusOK, messageResponse{Message: "Document uploaded"})
}

type transcribeResponse struct {
	Text       string `json:"text"`
	Understood bool   `json:"understood"`
}

func (s *APIV1Service) handleTranscribe(c echo.Context) error {
	if s.Transcriber == nil {
		return echo.NewHTTPError(http.StatusNotFound, "transcription is not enabled")
	}

	file, header, err := c.Request().FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}

	// Transcription resolves to sentinel text instead of failing, so the
	// chat flow continues regardless.
	text := s.Transcriber.Transcribe(c.Request().Context(), data, header.Filename)
	return c.JSON(http.StatusOK, transcribeResponse{
		Text:       text,
		Understood: !speech.IsSentinel(text),
	})
}

type describeImageResponse struct {
	Description string `json:"description"`
}

func (s *APIV1Service) handleDescribeImage(c echo.Context) error {
	if s.Describer == nil {
		return echo.NewHTTPError(http.StatusNotFound, "image description is not enabled")
	}

	file, _, err := c.Request().FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	prompt := c.FormValue("prompt")

	description, err := s.Describer.Describe(c.Request().Context(), data, prompt)
	if err != nil {
		slog.Warn("image description failed", "error", err)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "could not describe image")
	}
	return c.JSON(http.StatusOK, describeImageResponse{Description: description})
}

// handleLogout flushes and discards the user's session. The flush is
// idempotent, so repeated logout calls are harmless.
func (s *APIV1Service) handleLogout(c echo.Context) error {
	if err := s.sessions.Remove(c.Request().Context(), currentUserID(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save chat history")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}
