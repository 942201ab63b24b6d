package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/auth"
)

type AuthMiddleware struct {
	jwtService   *auth.JWTService
	chatbotToken string
}

func NewAuthMiddleware(jwtService *auth.JWTService, chatbotToken string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		chatbotToken: chatbotToken,
	}
}

// Authenticate verifies the JWT bearer token on admin routes and sets the
// caller's identity in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID.String())
		c.Set("ownerID", claims.OwnerID.String())
		c.Next()
	}
}

// AuthenticateChatbot checks the static shared secret used by the intake
// chatbot.
func (m *AuthMiddleware) AuthenticateChatbot() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing or malformed authorization header"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.chatbotToken)) != 1 {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
