package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldforce-system/internal/gateway/middleware"
	"fieldforce-system/internal/services"
)

type SettingsHTTPHandler struct {
	svc *services.Services
}

func NewSettingsHTTPHandler(svc *services.Services) *SettingsHTTPHandler {
	return &SettingsHTTPHandler{svc: svc}
}

func (h *SettingsHTTPHandler) GetSettings(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.svc.Settings.Get(ctx, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Settings retrieved successfully", st))
}

func (h *SettingsHTTPHandler) UpdateSettings(c *gin.Context) {
	var req services.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.svc.Settings.Update(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("System settings updated successfully", st))
}

func (h *SettingsHTTPHandler) GetProfile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.svc.Settings.Profile(ctx, middleware.CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Profile retrieved successfully", p))
}

func (h *SettingsHTTPHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.svc.Settings.UpdateProfile(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Profile updated successfully", p))
}
