package middleware

import (
	"net/http"
	"strings"

	"ebanking/services"

	"github.com/gin-gonic/gin"
)

const usernameKey = "username"

// TokenParser проверяет токен и возвращает его claims
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// Auth проверяет JWT токен из заголовка Authorization и кладет имя оператора в контекст
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		// Убираем префикс "Bearer " если он есть
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

// GetUsername возвращает имя оператора, установленное Auth
func GetUsername(c *gin.Context) (string, bool) {
	username := c.GetString(usernameKey)
	return username, username != ""
}
