package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter builds the Gin engine with all routes and middleware.
func SetupRouter(handler *PortfolioHandler) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio/:address", handler.GetPortfolio)
		v1.GET("/portfolio/:address/history", handler.GetHistory)
		v1.GET("/yields", handler.GetYields)
		v1.GET("/chains", handler.GetChains)
		v1.GET("/health", handler.GetHealth)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
	swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))

	return router
}
