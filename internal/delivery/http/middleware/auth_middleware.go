package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/security"
)

// AuthMiddleware accepts a Bearer token issued by sign-in and loads the user
// it belongs to, so deleted accounts lose access before their token expires.
func AuthMiddleware(tokens *security.TokenIssuer, authUC domain.AuthUsecase, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reject := func(reason, message string) {
			secLog.LogUnauthorized(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString(response.RequestIDKey),
				reason,
			)
			response.Abort(c, http.StatusUnauthorized, message)
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject("missing_token", "Se requiere el encabezado Authorization")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			reject("invalid_token", "Token inválido o vencido")
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			reject("unknown_user", "Usuario no encontrado")
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), user.Role)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
		ctx = context.WithValue(ctx, domain.KeyUserRole, user.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
