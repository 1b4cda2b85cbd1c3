package admin

import (
	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	service *DashboardService
}

func NewDashboardController(service *DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

func (c *DashboardController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/admin/dashboard", c.Dashboard)
}

// Dashboard
// @Summary Aggregate counters and recent activity for the admin panel
// @Tags admin
// @Produce json
// @Success 200 {object} response.Envelope{data=DashboardStats}
// @Failure 401 {object} response.Envelope
// @Router /admin/dashboard [get]
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	response.Success(ctx, c.service.Stats(), "")
}
