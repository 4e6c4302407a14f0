package router

import (
	"net/http"
	"time"

	"refearn/config"
	"refearn/internal/handler"
	"refearn/internal/middleware"
	"refearn/internal/repository"
	"refearn/internal/service"
	"refearn/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	hub := ws.NewHub()
	distributor := service.NewDistributionService(db, userRepo, ledgerRepo)

	signupHandler := handler.NewSignupHandler(userRepo)
	purchaseHandler := handler.NewPurchaseHandler(distributor, hub)
	earningsHandler := handler.NewEarningsHandler(ledgerRepo)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Referral system backend is running")
	})

	api := r.Group("/api/v1")
	{
		api.POST("/signup", signupHandler.Signup)
		api.POST("/purchases", purchaseHandler.Create)
		api.GET("/earnings/:user_id", earningsHandler.Get)
	}

	r.GET("/ws/earnings", ws.UpgradeEarningsWS(hub))

	return r
}
