package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/domain/entity"
	repo "github.com/anbeck/user-directory/internal/domain/repository"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/response"
	"github.com/anbeck/user-directory/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Location  string `json:"location" binding:"required"`
	IsActive  *bool  `json:"isActive"`
	IsBlocked *bool  `json:"isBlocked"`
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Location  *string `json:"location"`
	IsActive  *bool   `json:"isActive"`
	IsBlocked *bool   `json:"isBlocked"`
}

// filterFromQuery builds the shared list/export filter from query
// params. The login-range filter is a privileged capability: it is only
// resolved for admins, everyone else's range params are ignored.
func filterFromQuery(c *gin.Context, admin bool) repo.UserFilter {
	f := repo.UserFilter{
		Name:     c.Query("name"),
		Email:    c.Query("email"),
		Location: c.Query("location"),
		SortBy:   c.DefaultQuery("sortBy", "name"),
		Order:    c.DefaultQuery("order", "asc"),
	}

	if v, ok := c.GetQuery("isActive"); ok {
		active := v == "true"
		f.IsActive = &active
	}
	if v, ok := c.GetQuery("isBlocked"); ok {
		blocked := v == "true"
		f.IsBlocked = &blocked
	}

	if admin {
		f.Login = repo.ResolveLoginRange(
			c.Query("loginRange"),
			c.Query("loginFrom"),
			c.Query("loginTo"),
			time.Now(),
		)
	}

	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	return f
}

func (h *UserHandler) List(c *gin.Context) {
	admin := middleware.IsAdmin(c)
	f := filterFromQuery(c, admin)
	f.Normalize()

	users, total, err := h.Svc.List(f)
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to fetch users", nil)
		return
	}

	response.Success(c, http.StatusOK, entity.SanitizeAll(users, admin), "users", gin.H{
		"page":       f.Page,
		"limit":      f.Limit,
		"total":      total,
		"totalPages": int(math.Ceil(float64(total) / float64(f.Limit))),
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	u, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get user failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to fetch user", nil)
		return
	}

	response.Success(c, http.StatusOK, u.Sanitized(middleware.IsAdmin(c)), "user", nil)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u := entity.User{
		Name:     req.Name,
		Email:    req.Email,
		Location: req.Location,
		IsActive: true,
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsBlocked != nil {
		u.IsBlocked = *req.IsBlocked
	}

	if err := h.Svc.Create(c.Request.Context(), &u); err != nil {
		if errors.Is(err, application.ErrEmailExists) {
			response.Error[any](c, http.StatusConflict, "Email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("create user failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}

	response.Success(c, http.StatusCreated, u, "user created", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Update(c.Request.Context(), id, repo.UserPatch{
		Name:      req.Name,
		Email:     req.Email,
		Location:  req.Location,
		IsActive:  req.IsActive,
		IsBlocked: req.IsBlocked,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
		case errors.Is(err, application.ErrEmailExists):
			response.Error[any](c, http.StatusConflict, "Email already exists", nil)
		default:
			h.Logger.WithError(err).Error("update user failed")
			response.Error[any](c, http.StatusInternalServerError, "Failed to update user", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, u, "user updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("delete user failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to delete user", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Block(c *gin.Context)   { h.setBlocked(c, true) }
func (h *UserHandler) Unblock(c *gin.Context) { h.setBlocked(c, false) }

func (h *UserHandler) setBlocked(c *gin.Context, blocked bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	if err := h.Svc.SetBlocked(id, blocked); err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.Logger.WithError(err).Error("set blocked failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to update user", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("user search failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to search users", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"q": q, "size": size})
}
