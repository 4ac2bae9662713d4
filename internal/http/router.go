package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"accounts-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, userH *UserHandler, jwtSvc *service.JWTService) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	user := r.Group("/user")
	user.POST("/login", userH.Login)
	user.POST("/token", userH.RefreshToken)
	user.POST("/logout", userH.Logout)
	user.POST("", userH.CreateUser)
	user.POST("/forgot-password", userH.ForgotPassword)
	user.POST("/reset-password", userH.ResetPassword)

	gated := user.Group("", JWTAuthMiddleware(jwtSvc))
	gated.GET("", userH.ListUsers)
	gated.GET("/:id", userH.GetUser)
	gated.PATCH("/:id", userH.UpdateUser)
	gated.DELETE("/:id", userH.DeleteUser)

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
