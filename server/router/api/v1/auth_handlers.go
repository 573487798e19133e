package v1

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parleyhq/parley/server/auth"
	"github.com/parleyhq/parley/store"
)

const otpTTL = 5 * time.Minute

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *APIV1Service) handleSignup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	email := auth.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	ctx := c.Request().Context()
	existing, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}
	if _, err := s.Store.CreateUser(ctx, &store.User{
		Email:        email,
		PasswordHash: hash,
		CreatedTs:    time.Now().Unix(),
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}

	slog.Info("user signed up", "email", email)
	return c.JSON(http.StatusOK, messageResponse{Message: "Signup successful! Please log in."})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (s *APIV1Service) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	email := auth.NormalizeEmail(req.Email)

	ctx := c.Request().Context()
	user, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Email not registered")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, s.Secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

func (s *APIV1Service) handleSendOTP(c echo.Context) error {
	if !s.Profile.OTPEnabled || s.Mailer == nil {
		return echo.NewHTTPError(http.StatusNotFound, "OTP login is not enabled")
	}

	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	email := auth.NormalizeEmail(req.Email)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	if !s.otpLimiter.Allow(email) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many codes requested, try again later")
	}

	ctx := c.Request().Context()
	user, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Email not registered")
	}

	code, err := generateOTP()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate code")
	}
	if err := s.Store.UpsertOTP(ctx, &store.OTP{
		Email:     email,
		Code:      code,
		ExpiresTs: time.Now().Add(otpTTL).Unix(),
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store code")
	}
	if err := s.Mailer.SendOTP(email, code); err != nil {
		slog.Error("failed to send OTP mail", "email", email, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send code")
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "OTP sent. Check your inbox."})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type verifyOTPResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

func (s *APIV1Service) handleVerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	email := auth.NormalizeEmail(req.Email)

	ctx := c.Request().Context()
	stored, err := s.Store.GetOTP(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up code")
	}
	if stored == nil {
		return echo.NewHTTPError(http.StatusNotFound, "OTP not found. Please request a new one.")
	}
	if time.Now().Unix() > stored.ExpiresTs {
		// Expired codes are removed so retries get a clean "not found".
		_ = s.Store.DeleteOTP(ctx, email)
		return echo.NewHTTPError(http.StatusBadRequest, "OTP expired. Request a new one.")
	}
	if req.OTP != stored.Code {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP")
	}

	// Codes are single-use.
	if err := s.Store.DeleteOTP(ctx, email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to consume code")
	}

	user, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil || user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Email not registered")
	}
	token, err := auth.GenerateToken(user.ID, s.Secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, verifyOTPResponse{Message: "Login successful", Email: email, Token: token})
}

// generateOTP returns a random 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
