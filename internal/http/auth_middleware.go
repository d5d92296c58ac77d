package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"schooldir/internal/service"
)

const authClaimsKey = "auth_claims"

// AuthMiddleware valida el token de sesión y guarda claims en el contexto.
// El token viaja en la cookie HTTP-only; se acepta también un bearer header
// para clientes no navegador.
func AuthMiddleware(tokenSvc *service.TokenService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			respondError(c, http.StatusInternalServerError, errInternal, "auth not configured")
			c.Abort()
			return
		}

		token := extractToken(c, cookieName)
		if token == "" {
			respondError(c, http.StatusUnauthorized, errUnauthorized, "missing token")
			c.Abort()
			return
		}

		claims, err := tokenSvc.Parse(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, errUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// GetAuthClaims obtiene claims de sesión desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
