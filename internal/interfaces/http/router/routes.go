package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/interfaces/http/handler"
	"github.com/shopforge/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers mounted under the API prefix
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Store     *handler.StoreHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Import    *handler.ProductImportHandler
	Variant   *handler.VariantHandler
	Inventory *handler.InventoryHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Review    *handler.ReviewHandler
	Analytics *handler.AnalyticsHandler
	AI        *handler.AIHandler
	Predictor *handler.PredictorHandler
}

// Guards are the access checks wrapped around routes
type Guards struct {
	Authenticated gin.HandlerFunc
	OptionalAuth  gin.HandlerFunc
	SiteAdmin     gin.HandlerFunc
	StoreRole     func(min store.Role) gin.HandlerFunc
}

// NewGuards builds the guards from the JWT config and the store role checker
func NewGuards(jwtCfg middleware.JWTMiddlewareConfig, checker middleware.RoleChecker, log *zap.Logger) Guards {
	permCfg := middleware.PermissionConfig{Logger: log}
	return Guards{
		Authenticated: middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		OptionalAuth:  middleware.OptionalJWTAuthMiddleware(jwtCfg),
		SiteAdmin:     middleware.RequireSiteAdmin(),
		StoreRole: func(min store.Role) gin.HandlerFunc {
			return middleware.RequireStoreRole(checker, min, permCfg)
		},
	}
}

// DomainGroups returns the API route groups in registration order
func DomainGroups(h Handlers, g Guards) []*DomainGroup {
	return []*DomainGroup{
		systemRoutes(h),
		authRoutes(h, g),
		adminRoutes(h, g),
		storeRoutes(h, g),
		catalogRoutes(h, g),
		reviewRoutes(h, g),
		cartRoutes(h, g),
		orderRoutes(h, g),
		analyticsRoutes(h, g),
	}
}

// Mount registers every API group with r
func Mount(r *Router, h Handlers, g Guards) *Router {
	for _, group := range DomainGroups(h, g) {
		r.Register(group)
	}
	return r
}

func systemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth").
		POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/confirm-email", h.Auth.ConfirmEmail).
		POST("/forgot-password", h.Auth.ForgotPassword).
		POST("/reset-password", h.Auth.ResetPassword)

	auth.Group("session", "").
		Use(g.Authenticated).
		POST("/logout", h.Auth.Logout).
		POST("/resend-confirmation", h.Auth.ResendConfirmation).
		PUT("/password", h.Auth.ChangePassword).
		GET("/me", h.Auth.GetMe).
		PUT("/me", h.Auth.UpdateMe)

	return auth
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(g.Authenticated, g.SiteAdmin)

	admin.Group("users", "/users").
		GET("", h.User.List).
		GET("/:id", h.User.Get).
		PUT("/:id/role", h.User.SetRole).
		PUT("/:id/status", h.User.SetStatus).
		DELETE("/:id", h.User.Delete)

	admin.POST("/stores/counters/recompute", h.Store.RecomputeAllCounters).
		GET("/ai/logs", h.AI.ListAllLogs).
		POST("/predictions/refresh", h.Predictor.RefreshAll)

	return admin
}

// storeRoutes holds the store directory and everything scoped to one store.
// The role guard resolves :storeId, so handlers read it via GetStoreID.
func storeRoutes(h Handlers, g Guards) *DomainGroup {
	moderator := g.StoreRole(store.RoleModerator)
	admin := g.StoreRole(store.RoleAdmin)
	owner := g.StoreRole(store.RoleOwner)

	stores := NewDomainGroup("stores", "/stores").
		GET("", h.Store.List).
		GET("/mine", g.Authenticated, h.Store.ListMine).
		POST("", g.Authenticated, h.Store.Create).
		GET("/:storeId", g.OptionalAuth, h.Store.Get)

	scoped := stores.Group("store", "/:storeId").Use(g.Authenticated)
	scoped.PUT("", admin, h.Store.Update).
		DELETE("", owner, h.Store.Delete).
		POST("/counters/recompute", admin, h.Store.RecomputeCounters).
		GET("/roles", admin, h.Store.ListRoles).
		POST("/roles", admin, h.Store.AssignRole).
		DELETE("/roles/:userId", admin, h.Store.RevokeRole)

	scoped.Group("categories", "/categories").
		GET("", moderator, h.Category.List).
		POST("", admin, h.Category.Create).
		GET("/:categoryId", moderator, h.Category.GetByID).
		PUT("/:categoryId", admin, h.Category.Update).
		DELETE("/:categoryId", admin, h.Category.Delete)

	products := scoped.Group("products", "/products").
		GET("", moderator, h.Product.List).
		POST("", admin, h.Product.Create).
		POST("/import", admin, h.Import.Import).
		GET("/:productId", moderator, h.Product.GetByID).
		PUT("/:productId", admin, h.Product.Update).
		DELETE("/:productId", admin, h.Product.Delete).
		POST("/:productId/publish", admin, h.Product.Publish).
		POST("/:productId/archive", admin, h.Product.Archive).
		POST("/:productId/images", admin, h.Product.UploadImage).
		DELETE("/:productId/images", admin, h.Product.RemoveImage).
		GET("/:productId/variants", moderator, h.Variant.List).
		POST("/:productId/variants", admin, h.Variant.Create)
	products.POST("/:productId/ai/description", admin, h.AI.GenerateDescription).
		POST("/:productId/ai/review-summary", admin, h.AI.SummarizeReviews).
		POST("/:productId/predictions", admin, h.Predictor.PredictProduct)

	scoped.Group("variants", "/variants").
		PUT("/:variantId", admin, h.Variant.Update).
		DELETE("/:variantId", admin, h.Variant.Delete)

	scoped.Group("inventory", "/inventory").
		GET("", moderator, h.Inventory.List).
		GET("/:variantId", moderator, h.Inventory.Get).
		PUT("/:variantId", admin, h.Inventory.SetQuantity).
		POST("/:variantId/adjust", admin, h.Inventory.Adjust).
		PUT("/:variantId/threshold", admin, h.Inventory.SetThreshold)

	scoped.GET("/orders", moderator, h.Order.ListStore).
		PUT("/orders/:orderId/status", admin, h.Order.UpdateStatus).
		GET("/reviews", moderator, h.Review.ListForStore).
		GET("/analytics/dashboard", moderator, h.Analytics.Dashboard).
		GET("/ai/logs", admin, h.AI.ListStoreLogs).
		GET("/predictions", moderator, h.Predictor.ListPredictions).
		POST("/predictions/refresh", admin, h.Predictor.PredictStore)

	return stores
}

func catalogRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("catalog", "/products").
		GET("", h.Product.ListPublic).
		GET("/:productId", h.Product.GetPublic).
		GET("/:productId/reviews", h.Review.ListForProduct).
		POST("/:productId/reviews", g.Authenticated, h.Review.Create)
}

func reviewRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("reviews", "/reviews").
		Use(g.Authenticated).
		PUT("/:reviewId", h.Review.Update).
		DELETE("/:reviewId", h.Review.Delete)
}

func cartRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("cart", "/cart").
		Use(g.Authenticated).
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:itemId", h.Cart.UpdateItem).
		DELETE("/items/:itemId", h.Cart.RemoveItem)
}

func orderRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		Use(g.Authenticated).
		POST("/checkout", h.Order.Checkout).
		GET("", h.Order.ListMine).
		GET("/:orderId", h.Order.Get).
		POST("/:orderId/cancel", h.Order.Cancel)
}

func analyticsRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("analytics", "/analytics").
		POST("/events", g.OptionalAuth, h.Analytics.Record)
}
