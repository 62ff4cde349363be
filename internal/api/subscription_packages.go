package api

import (
	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/response"
	"paidlinks-api/internal/services"
)

// CreatePackage adds a discount package for the caller
func (h *Handler) CreatePackage(c *gin.Context) {
	var req services.CreatePackageRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	pkg, err := h.Packages.Create(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.CreatedJSON(c, pkg)
}

// ListPackages lists the caller's packages with quotes
func (h *Handler) ListPackages(c *gin.Context) {
	pkgs, err := h.Packages.ListByCreator(c.Request.Context(), callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, pkgs)
}

// UpdatePackage patches one of the caller's packages
func (h *Handler) UpdatePackage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req services.UpdatePackageRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	pkg, err := h.Packages.Update(c.Request.Context(), id, callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, pkg)
}

// TogglePackage flips is_active and returns the new state
func (h *Handler) TogglePackage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pkg, err := h.Packages.ToggleActive(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, gin.H{
		"id":        pkg.ID,
		"is_active": pkg.IsActive,
	})
}

// DeletePackage removes one of the caller's packages
func (h *Handler) DeletePackage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.Packages.Delete(c.Request.Context(), id, callerID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}

// ListPublicPackages lists a creator's active packages
func (h *Handler) ListPublicPackages(c *gin.Context) {
	pkgs, err := h.Packages.ListPublic(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, pkgs)
}
