package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schooldir/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	userH *UserHandler,
	schoolH *SchoolHandler,
	cookieName string,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	authRequired := AuthMiddleware(tokenSvc, cookieName)

	r.POST("/register", userH.Register)
	r.POST("/verify-otp", userH.VerifyOTP)
	r.POST("/resend-otp", userH.ResendOTP)
	r.POST("/login", userH.Login)
	r.POST("/logout", userH.Logout)
	r.GET("/profile", authRequired, userH.Profile)

	schools := r.Group("/schools")
	schools.GET("", schoolH.List)
	schools.GET("/:id", schoolH.Get)
	schools.POST("", authRequired, schoolH.Create)
	schools.PUT("/:id", authRequired, schoolH.Update)
	schools.DELETE("/:id", authRequired, schoolH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
