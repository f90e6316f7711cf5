package routes

import (
	"net/http"
	"time"

	"ebanking/controllers"
	"ebanking/middleware"
	"ebanking/services"
	"ebanking/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies сервисы, из которых собирается роутер
type Dependencies struct {
	Accounts   *services.BankAccountService
	Statements *services.StatementService
	Reconciler *services.ReconciliationService
	// Auth nil оставляет API открытым
	Auth    *services.AuthService
	Metrics *utils.Metrics
	// Limiter nil отключает ограничение частоты запросов
	Limiter *utils.RateLimiter
}

// NewRouter создает gin-роутер со всеми маршрутами приложения
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	}))
	if deps.Limiter != nil {
		router.Use(middleware.RateLimit(deps.Limiter))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if deps.Auth != nil {
		authController := controllers.NewAuthController(deps.Auth)
		api.POST("/auth/signIn", authController.SignIn)
	}

	// Защищенные маршруты
	protected := api.Group("")
	if deps.Auth != nil {
		protected.Use(middleware.Auth(deps.Auth))
	}

	customerController := controllers.NewCustomerController(deps.Accounts)
	customers := protected.Group("/customers")
	customers.GET("", customerController.List)
	customers.GET("/search", customerController.Search)
	customers.GET("/:id", customerController.Get)
	customers.GET("/:id/accounts", customerController.Accounts)
	customers.POST("", customerController.Create)
	customers.PUT("/:id", customerController.Update)
	customers.DELETE("/:id", customerController.Delete)

	accountController := controllers.NewAccountController(deps.Accounts, deps.Statements, deps.Reconciler)
	accounts := protected.Group("/accounts")
	accounts.POST("/current", accountController.CreateCurrent)
	accounts.POST("/saving", accountController.CreateSaving)
	accounts.GET("", accountController.List)
	accounts.GET("/:id", accountController.Get)
	accounts.GET("/:id/operations", accountController.Operations)
	accounts.GET("/:id/pageOperations", accountController.PageOperations)
	accounts.GET("/:id/statement", accountController.Statement)
	accounts.GET("/:id/reconciliation", accountController.Reconciliation)
	accounts.POST("/debit", accountController.Debit)
	accounts.POST("/credit", accountController.Credit)
	accounts.POST("/transfer", accountController.Transfer)

	metricsController := controllers.NewMetricsController(deps.Metrics)
	protected.GET("/metrics", metricsController.Snapshot)

	return router
}
