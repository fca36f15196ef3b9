package restapi

import (
	"net/http"

	"unipool_backend/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter configures and returns the Gin router.
func SetupRouter(
	cfg *configloader.Config,
	portfolioHandler *PortfolioHandler,
	transactionHandler *TransactionHandler,
) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", portfolioHandler.GetPortfolioHandler)
		v1.POST("/portfolio/refresh", portfolioHandler.RefreshPortfolioHandler)
		v1.GET("/portfolio/position/:address", portfolioHandler.GetPositionHandler)

		v1.POST("/transactions/invest", transactionHandler.InvestHandler)
		v1.POST("/transactions/approve", transactionHandler.ApproveHandler)
		v1.POST("/transactions/withdraw", transactionHandler.WithdrawHandler)
		v1.GET("/transactions/:id", transactionHandler.GetFlowHandler)
		v1.POST("/transactions/:id/ack", transactionHandler.AcknowledgeFlowHandler)
	}

	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		// The OpenAPI document is served statically; gin-swagger renders the UI off it.
		router.StaticFile("/docs/swagger.yaml", cfg.Swagger.SpecPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
