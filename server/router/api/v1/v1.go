// Package v1 implements the JSON/SSE HTTP API: credential and OTP login,
// transcript persistence, and the chat endpoints driven by the turn
// orchestrator.
package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/parleyhq/parley/chat"
	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/plugin/llm"
	"github.com/parleyhq/parley/plugin/mailer"
	"github.com/parleyhq/parley/plugin/speech"
	"github.com/parleyhq/parley/plugin/textextract"
	"github.com/parleyhq/parley/plugin/vision"
	"github.com/parleyhq/parley/server/auth"
	"github.com/parleyhq/parley/server/middleware"
	"github.com/parleyhq/parley/store"
)

// userIDContextKey is the echo context key carrying the authenticated user.
const userIDContextKey = "parley.user-id"

// APIV1Service wires the HTTP handlers to their collaborators.
type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	Chat        llm.ChatService
	Extractor   textextract.Extractor
	Transcriber speech.Transcriber
	Describer   vision.Describer
	Mailer      mailer.Mailer

	sessions *SessionRegistry

	// extractSemaphore bounds concurrent document extractions.
	extractSemaphore *semaphore.Weighted
	// otpLimiter throttles code issuance per email.
	otpLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, chatService llm.ChatService) *APIV1Service {
	s := &APIV1Service{
		Secret:           p.Secret,
		Profile:          p,
		Store:            st,
		Chat:             chatService,
		extractSemaphore: semaphore.NewWeighted(3),
		otpLimiter:       middleware.NewRateLimiter(3, time.Minute, 3),
	}
	s.sessions = NewSessionRegistry(s.sessionFactory)
	return s
}

// RegisterRoutes attaches all v1 routes to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/signup", s.handleSignup)
	g.POST("/login", s.handleLogin)
	g.POST("/send-otp", s.handleSendOTP)
	g.POST("/verify-otp", s.handleVerifyOTP)

	authed := g.Group("", s.requireAuth)
	authed.POST("/store_chat_history", s.handleStoreChatHistory)
	authed.GET("/get_chat_history/:user_id", s.handleGetChatHistory)
	authed.POST("/chat", s.handleChat)
	authed.POST("/upload_document", s.handleUploadDocument)
	authed.POST("/transcribe", s.handleTranscribe)
	authed.POST("/describe_image", s.handleDescribeImage)
	authed.POST("/logout", s.handleLogout)
}

// requireAuth resolves the bearer token into a user ID.
func (s *APIV1Service) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		userID, err := auth.ParseToken(token, s.Secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) int32 {
	id, _ := c.Get(userIDContextKey).(int32)
	return id
}

// sessionFactory builds a chat session for a freshly authenticated user.
func (s *APIV1Service) sessionFactory(userID int32) *chat.Session {
	policy := chat.RequestPolicy{Window: s.Profile.ContextWindow}
	if s.Profile.SystemPosition == "append" {
		policy.Position = chat.SystemAppend
	}
	gateway := &storeHistoryGateway{store: s.Store}
	return chat.NewSession(userID, &completerAdapter{service: s.Chat}, policy, s.Profile.LLMStreaming, gateway)
}

// FlushSessions flushes every live chat session, used at shutdown.
func (s *APIV1Service) FlushSessions(ctx context.Context) {
	s.sessions.FlushAll(ctx)
}

// messageResponse is the common {message} payload.
type messageResponse struct {
	Message string `json:"message"`
}
