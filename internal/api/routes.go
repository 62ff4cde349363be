package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/middleware"
	"paidlinks-api/pkg/logging"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handler, jwtSecret string) {
	requireAuth := middleware.RequireAuth(jwtSecret)

	api := r.Group("/api")
	{
		// Creator dashboard
		creator := api.Group("/creator")
		creator.Use(requireAuth)
		{
			links := creator.Group("/paid-media-links")
			{
				links.POST("", h.CreatePaidLink)
				links.GET("", h.ListPaidLinks)
				links.GET("/stats", h.PaidLinkStats)
				links.GET("/:id", h.GetPaidLink)
				links.PUT("/:id", h.UpdatePaidLink)
				links.PATCH("/:id/toggle", h.TogglePaidLink)
				links.DELETE("/:id", h.DeletePaidLink)
				links.GET("/:id/purchases", h.ListLinkPurchases)
			}

			packages := creator.Group("/subscription-packages")
			{
				packages.POST("", h.CreatePackage)
				packages.GET("", h.ListPackages)
				packages.PUT("/:id", h.UpdatePackage)
				packages.PATCH("/:id/toggle", h.TogglePackage)
				packages.DELETE("/:id", h.DeletePackage)
			}

			creator.GET("/profile", h.GetProfile)
			creator.PUT("/profile", h.UpdateProfile)

			creator.POST("/vault", h.RegisterAsset)
			creator.GET("/vault", h.ListAssets)
		}

		// Public creator pages
		creators := api.Group("/creators")
		{
			creators.GET("/:username", h.GetPublicProfile)
			creators.GET("/:username/subscription-packages", h.ListPublicPackages)
		}
	}

	// Buyer facing link pages
	public := r.Group("/l")
	{
		public.GET("/:slug", h.PreviewLink)
		public.POST("/:slug", middleware.OptionalAuth(jwtSecret), h.PurchaseLink)
		public.GET("/:slug/access/:token", h.AccessLink)
	}

	r.GET("/health", h.Health)
}

// Health reports liveness and database reachability
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		logging.Errorf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"service":  "paidlinks-api",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "paidlinks-api",
		"database": "ok",
	})
}
