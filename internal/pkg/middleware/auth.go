package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"microsocial/internal/domain/user/model"
	"microsocial/pkg/response"
	"microsocial/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// tokenStore is the redis client used for the logout denylist. Set once at
// startup; when nil the denylist check is skipped (tests, stress tools).
var tokenStore *redis.Client

// SetTokenStore installs the redis client used to check revoked tokens.
func SetTokenStore(client *redis.Client) {
	tokenStore = client
}

// denylistKey is the redis key prefix for revoked token IDs.
const denylistKey = "microsocial:token:denied:"

// RevokeToken marks a token ID as logged-out until its natural expiry.
func RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenStore == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return tokenStore.Set(ctx, denylistKey+tokenID, 1, ttl).Err()
}

func isTokenRevoked(ctx context.Context, tokenID string) bool {
	if tokenStore == nil || tokenID == "" {
		return false
	}
	n, err := tokenStore.Exists(ctx, denylistKey+tokenID).Result()
	if err != nil {
		// Redis trouble must not lock everyone out.
		return false
	}
	return n > 0
}

func claimsFromHeader(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// Expected format "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}

	if isTokenRevoked(c.Request.Context(), claims.ID) {
		return nil, false
	}

	return claims, true
}

// AuthMiddleware requires a valid, non-revoked bearer token and stores the
// caller's identity in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		storeClaims(c, claims)
		c.Next()
	}
}

func storeClaims(c *gin.Context, claims *utils.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("tokenID", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("tokenExpiresAt", claims.ExpiresAt.Time)
	}
}

// OptionalAuthMiddleware resolves the caller's identity when a token is
// present but lets anonymous requests through. Routes behind it must treat
// a missing userID as an unauthenticated viewer.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c); ok {
			storeClaims(c, claims)
		}
		c.Next()
	}
}

// AdminMiddleware allows only platform administrators; must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			c.Abort()
			return
		}

		roleInt, ok := role.(int)
		if !ok || roleInt != model.RoleAdmin {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			c.Abort()
			return
		}

		c.Next()
	}
}
