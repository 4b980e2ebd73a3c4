package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/auth"
	"github.com/crypticandwired/StudentFeedback/internal/models"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
)

// JWTAuthMiddleware authenticates requests with locally issued tokens
// and loads the account so blocked users are cut off mid-session, not
// just at login.
type JWTAuthMiddleware struct {
	jwt      *auth.JWTService
	userRepo repositories.UserRepository
}

func NewJWTAuthMiddleware(jwt *auth.JWTService, userRepo repositories.UserRepository) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		jwt:      jwt,
		userRepo: userRepo,
	}
}

// AuthMiddleware returns a Gin middleware function for token authentication
func (am *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		claims, err := am.jwt.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		user, err := am.userRepo.GetByID(c.Request.Context(), nil, claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: "account no longer exists",
			})
			c.Abort()
			return
		}

		if user.IsBlocked {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Account blocked",
				Details: "your account has been blocked, contact the administrator",
			})
			c.Abort()
			return
		}

		// Set user information in context
		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (am *JWTAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden",
				Details: "user role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden",
				Details: "invalid user role format",
			})
			c.Abort()
			return
		}

		hasRequiredRole := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				hasRequiredRole = true
				break
			}
		}

		if !hasRequiredRole {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden",
				Details: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user id, or zero with
// an error response already written when it is missing.
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}

	id, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}

	return id, true
}
