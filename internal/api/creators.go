package api

import (
	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/models"
	"paidlinks-api/internal/response"
	"paidlinks-api/internal/services"
)

// GetProfile returns the caller's profile
func (h *Handler) GetProfile(c *gin.Context) {
	creator, err := h.Creators.GetProfile(c.Request.Context(), callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, creator)
}

// UpdateProfile creates or replaces the caller's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	creator, err := h.Creators.UpsertProfile(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, creator)
}

// GetPublicProfile shows a creator by username
func (h *Handler) GetPublicProfile(c *gin.Context) {
	profile, err := h.Creators.GetPublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, profile)
}

// RegisterAsset stores a feed or vault item for the caller
func (h *Handler) RegisterAsset(c *gin.Context) {
	var req services.RegisterAssetRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	asset, err := h.Vault.Register(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, asset)
}

// ListAssets lists the caller's assets, optionally filtered by ?source=
func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.Vault.List(c.Request.Context(), callerID(c), models.MediaSource(c.Query("source")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, assets)
}
