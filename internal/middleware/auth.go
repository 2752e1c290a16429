package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/viksitkanpur/portal/internal/auth"
	"github.com/viksitkanpur/portal/internal/model"
)

func bearerClaims(c *gin.Context, jwtSecret string) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		return nil, false
	}

	claims, err := auth.ValidateAccessToken(parts[1], jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return nil, false
	}

	return claims, true
}

func setUserContext(c *gin.Context, claims *auth.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("userEmail", claims.Email)
	c.Set("userName", claims.Name)
	c.Set("userRole", claims.Role)
	c.Set("userDepartment", claims.Department)
}

// AuthMiddleware requires a valid JWT token
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtSecret)
		if !ok {
			c.Abort()
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}

// StaffMiddleware requires a valid JWT token AND a staff role
// (field-worker, department-head, district-magistrate).
func StaffMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtSecret)
		if !ok {
			c.Abort()
			return
		}

		if !model.IsStaff(claims.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			c.Abort()
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}

// RoleMiddleware requires one of the given roles exactly.
func RoleMiddleware(jwtSecret string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtSecret)
		if !ok {
			c.Abort()
			return
		}

		allowed := false
		for _, r := range roles {
			if claims.Role == r {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			c.Abort()
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}
