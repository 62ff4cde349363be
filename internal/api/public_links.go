package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/middleware"
	"paidlinks-api/internal/response"
	"paidlinks-api/internal/services"
)

// IdempotencyHeader lets a buyer retry a purchase without paying twice
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 100

// PurchaseBody is the optional body of a purchase request
type PurchaseBody struct {
	BuyerEmail   string `json:"buyer_email" validate:"omitempty,email,max=254"`
	PaymentToken string `json:"payment_token" validate:"max=512"`
}

// PreviewLink shows a link before purchase
func (h *Handler) PreviewLink(c *gin.Context) {
	preview, err := h.Links.Preview(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, preview)
}

// PurchaseLink buys a link. The body is optional.
func (h *Handler) PurchaseLink(c *gin.Context) {
	var body PurchaseBody
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &body); err != nil {
			response.FromError(c, err)
			return
		}
	}
	if err := h.Validator.Validate(body); err != nil {
		response.FromError(c, err)
		return
	}

	req := services.PurchaseRequest{
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyHeader)),
		PaymentToken:   body.PaymentToken,
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		response.FromError(c, apperrors.Invalid(IdempotencyHeader, "must be at most 100 characters"))
		return
	}
	if buyer, ok := middleware.Subject(c); ok {
		req.BuyerID = &buyer
	}
	if email := strings.TrimSpace(body.BuyerEmail); email != "" {
		req.BuyerEmail = &email
	}

	result, err := h.Purchases.Purchase(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	response.JSON(c, status, response.Success(result))
}

// AccessLink returns the unlocked content for a valid token
func (h *Handler) AccessLink(c *gin.Context) {
	grant, err := h.Access.Verify(c.Request.Context(), c.Param("slug"), c.Param("token"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, grant)
}
