package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/middleware"
	"paidlinks-api/internal/payment"
	"paidlinks-api/internal/services"
	"paidlinks-api/internal/validator"
)

// Handler serves the HTTP API on top of the services
type Handler struct {
	Store     *database.Store
	Links     *services.PaidLinkService
	Purchases *services.PurchaseService
	Access    *services.AccessService
	Packages  *services.SubscriptionPackageService
	Creators  *services.CreatorService
	Vault     *services.VaultService
	Validator *validator.Validator
}

// Deps are the collaborators that differ between production, development
// and tests
type Deps struct {
	Cache     services.LinkCache
	Guard     services.PurchaseGuard
	Gateway   payment.Gateway
	Notifiers []services.PurchaseNotifier
	Purchase  services.PurchaseConfig
}

// NewHandler builds the services over store
func NewHandler(store *database.Store, deps Deps) *Handler {
	v := validator.New()

	return &Handler{
		Store:     store,
		Links:     services.NewPaidLinkService(store, services.NewMediaResolver(store), deps.Cache, v),
		Purchases: services.NewPurchaseService(store, deps.Gateway, deps.Guard, deps.Cache, deps.Purchase, deps.Notifiers...),
		Access:    services.NewAccessService(store),
		Packages:  services.NewSubscriptionPackageService(store),
		Creators:  services.NewCreatorService(store, v),
		Vault:     services.NewVaultService(store, v),
		Validator: v,
	}
}

// bindJSON decodes the body into obj. Malformed JSON is a validation error.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperrors.Invalid("body", "must be valid JSON: "+err.Error())
	}
	return nil
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Invalid("id", "must be a positive integer")
	}
	return uint(id), nil
}

// callerID is the authenticated account. Only valid behind RequireAuth.
func callerID(c *gin.Context) string {
	id, _ := middleware.Subject(c)
	return id
}
