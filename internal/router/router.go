package router

import (
	"time"

	"dayliz/config"
	"dayliz/internal/handler"
	"dayliz/internal/middleware"
	"dayliz/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Payment *handler.PaymentHandler
	Webhook *handler.PaymentWebhookHandler
	Address *handler.AddressHandler
	Hub     *ws.Hub
}

func New(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	limiter := middleware.NewInMemoryRateLimiter(100, time.Minute)
	r.Use(middleware.RateLimit(limiter))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
		}

		// webhook authenticates by signature, not JWT
		api.POST("/payments/webhook", h.Webhook.HandleWebhook)

		payments := api.Group("/payments")
		payments.Use(middleware.AuthRequired(&cfg.JWT))
		{
			payments.POST("/create-order-with-payment", h.Payment.CreateOrderWithPayment)
			payments.GET("/status/:order_id", h.Payment.GetStatus)
			payments.POST("/retry/:order_id", h.Payment.RetryPayment)
			payments.POST("/verify", h.Payment.VerifyPayment)
			payments.POST("/cod/process", h.Payment.ProcessCOD)
			payments.GET("/methods", h.Payment.GetMethods)
			payments.POST("/mock/simulate", h.Payment.SimulatePayment)
		}

		addresses := api.Group("/addresses")
		addresses.Use(middleware.AuthRequired(&cfg.JWT))
		{
			addresses.POST("", h.Address.Create)
			addresses.GET("", h.Address.List)
		}
	}

	r.GET("/ws/payments", ws.Serve(h.Hub, &cfg.JWT))

	return r
}
