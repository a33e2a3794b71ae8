package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/response"
	"github.com/anbeck/user-directory/pkg/validation"
)

type AuthHandler struct {
	Svc          *application.AuthService
	Logger       *logrus.Logger
	CookieDomain string
	CookieSecure bool
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, CookieDomain: cookieDomain, CookieSecure: cookieSecure}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Input validation failed", validation.ToDetails(err))
		return
	}

	account, err := h.Svc.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailExists) {
			response.Error[any](c, http.StatusConflict, "Email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":    account.ID,
		"email": account.Email,
		"role":  account.Role,
	}, "User registered successfully", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Email and password required", validation.ToDetails(err))
		return
	}

	account, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "Wrong email or password", nil)
		return
	}

	h.setTokenCookies(c, pair)
	response.Success(c, http.StatusOK, gin.H{
		"id":    account.ID,
		"email": account.Email,
		"role":  account.Role,
	}, "login successful", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	h.setTokenCookies(c, pair)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", gin.H{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	h.clearTokenCookies(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, pair application.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", pair.AccessToken, maxAgeFrom(pair.AccessTokenExpiry), "/", h.CookieDomain, h.CookieSecure, true)
	c.SetCookie("refresh_token", pair.RefreshToken, maxAgeFrom(pair.RefreshTokenExpiry), "/", h.CookieDomain, h.CookieSecure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", "", -1, "/", h.CookieDomain, h.CookieSecure, true)
	c.SetCookie("refresh_token", "", -1, "/", h.CookieDomain, h.CookieSecure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
