package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the electrician behind a request.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Company  string `json:"company,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for user
func GenerateToken(user config.User, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Company:  user.Company,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates JWT token and extracts user info
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid || claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("company", claims.Company)
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), logger.UserIDKey, claims.UserID))

		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" outside AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func GetUsername(c *gin.Context) string {
	return c.GetString("username")
}

func GetCompany(c *gin.Context) string {
	return c.GetString("company")
}
