package system_healthcheck

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthcheckResponse struct {
	Status string `json:"status"`
}

type HealthcheckController struct {
	service *HealthcheckService
}

func NewHealthcheckController(service *HealthcheckService) *HealthcheckController {
	return &HealthcheckController{service: service}
}

func (c *HealthcheckController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.CheckHealth)
	router.GET("/health/db", c.CheckDatabase)
}

// CheckHealth
// @Summary Check system health
// @Description Check if the system is healthy by testing the database and artifact storage
// @Tags system/health
// @Produce json
// @Success 200 {object} HealthcheckResponse
// @Failure 503 {object} HealthcheckResponse
// @Router /health [get]
func (c *HealthcheckController) CheckHealth(ctx *gin.Context) {
	// Allow unrestricted CORS so monitoring tools from any origin can
	// probe this endpoint.
	ctx.Header("Access-Control-Allow-Origin", "*")
	ctx.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	ctx.Header("Access-Control-Allow-Headers", "Content-Type")

	if ctx.Request.Method == "OPTIONS" {
		ctx.AbortWithStatus(http.StatusNoContent)
		return
	}

	if err := c.service.IsHealthy(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, HealthcheckResponse{Status: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, HealthcheckResponse{
		Status: "Application is healthy, database and artifact storage are working",
	})
}

// CheckDatabase
// @Summary Ping the database directly
// @Tags system/health
// @Produce json
// @Success 200 {object} HealthcheckResponse
// @Failure 503 {object} HealthcheckResponse
// @Router /health/db [get]
func (c *HealthcheckController) CheckDatabase(ctx *gin.Context) {
	if err := c.service.CheckDatabase(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, HealthcheckResponse{Status: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, HealthcheckResponse{Status: "Database connection is healthy"})
}
