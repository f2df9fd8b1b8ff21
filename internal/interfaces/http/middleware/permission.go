package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/store"
	"github.com/shopforge/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// StoreIDParam is the path parameter carrying the store for store-scoped routes
const StoreIDParam = "storeId"

// StoreIDKey holds the parsed store ID once RequireStoreRole has passed
const StoreIDKey = "store_id"

// RoleChecker answers store role questions for the guards
type RoleChecker interface {
	CheckRole(ctx context.Context, storeID, userID uuid.UUID, min store.Role) (bool, error)
}

// PermissionConfig holds configuration for the guards
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequireSiteAdmin only lets site administrators through.
// It must run after JWTAuthMiddleware.
func RequireSiteAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTClaims(c) == nil {
			abortUnauthorized(c)
			return
		}
		if !IsSiteAdmin(c) {
			abortForbidden(c, "Site administrator role required")
			return
		}
		c.Next()
	}
}

// RequireStoreRole lets a request through when the caller holds at least
// min in the store named by the :storeId path parameter. Site admins pass
// regardless of store membership.
func RequireStoreRole(checker RoleChecker, min store.Role, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, err := uuid.Parse(c.Param(StoreIDParam))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_BAD_REQUEST",
					"message":    "Invalid store ID",
					"request_id": c.GetString(RequestIDContextKey),
				},
			})
			return
		}
		userID, ok := GetUserUUID(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		if !IsSiteAdmin(c) {
			allowed, err := checker.CheckRole(c.Request.Context(), storeID, userID, min)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("Store role check failed",
						zap.String("store_id", storeID.String()),
						zap.String("user_id", userID.String()),
						zap.Error(err))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":       "ERR_INTERNAL",
						"message":    "An unexpected error occurred",
						"request_id": c.GetString(RequestIDContextKey),
					},
				})
				return
			}
			if !allowed {
				if cfg.Logger != nil {
					cfg.Logger.Debug("Store role check denied",
						zap.String("store_id", storeID.String()),
						zap.String("user_id", userID.String()),
						zap.String("required", string(min)))
				}
				abortForbidden(c, "Requires store role "+string(min)+" or higher")
				return
			}
		}

		c.Set(StoreIDKey, storeID)
		c.Request = c.Request.WithContext(logger.WithStoreID(c.Request.Context(), storeID.String()))
		c.Next()
	}
}

// GetStoreID returns the store ID validated by RequireStoreRole
func GetStoreID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(StoreIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "ERR_UNAUTHORIZED",
			"message":    "Authentication required",
			"request_id": c.GetString(RequestIDContextKey),
		},
	})
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":       "ERR_FORBIDDEN",
			"message":    message,
			"request_id": c.GetString(RequestIDContextKey),
		},
	})
}
