package api

import (
	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/response"
	"paidlinks-api/internal/services"
)

// CreatePaidLink creates a link for the caller
func (h *Handler) CreatePaidLink(c *gin.Context) {
	var req services.CreateLinkRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	link, err := h.Links.Create(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.CreatedJSON(c, link)
}

// ListPaidLinks lists the caller's links
func (h *Handler) ListPaidLinks(c *gin.Context) {
	links, err := h.Links.ListByCreator(c.Request.Context(), callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, links)
}

// PaidLinkStats totals the caller's links
func (h *Handler) PaidLinkStats(c *gin.Context) {
	stats, err := h.Links.Stats(c.Request.Context(), callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, stats)
}

// GetPaidLink returns one of the caller's links
func (h *Handler) GetPaidLink(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	link, err := h.Links.GetForOwner(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, link)
}

// UpdatePaidLink patches one of the caller's links
func (h *Handler) UpdatePaidLink(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req services.UpdateLinkRequest
	if err := bindJSON(c, &req); err != nil {
		response.FromError(c, err)
		return
	}

	link, err := h.Links.Update(c.Request.Context(), id, callerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, link)
}

// TogglePaidLink flips is_active and returns the new state
func (h *Handler) TogglePaidLink(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	link, err := h.Links.ToggleActive(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, gin.H{
		"id":        link.ID,
		"is_active": link.IsActive,
	})
}

// DeletePaidLink deletes a link nobody has bought
func (h *Handler) DeletePaidLink(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.Links.Delete(c.Request.Context(), id, callerID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, nil)
}

// ListLinkPurchases lists the purchases of one of the caller's links
func (h *Handler) ListLinkPurchases(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	purchases, err := h.Links.ListPurchases(c.Request.Context(), id, callerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, purchases)
}
