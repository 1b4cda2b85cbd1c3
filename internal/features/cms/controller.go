package cms

import (
	"errors"
	"log/slog"
	"net/http"

	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CmsController struct {
	service *CmsService
	logger  *slog.Logger
}

func NewCmsController(service *CmsService, logger *slog.Logger) *CmsController {
	return &CmsController{
		service: service,
		logger:  logger,
	}
}

func (c *CmsController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/cms-content", c.Content)
}

// RegisterAdminRoutes registers the editing slice; the caller wraps the
// group in admin authentication.
func (c *CmsController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PUT("/admin/cms/settings", c.SaveSettings)
	router.POST("/admin/cms/usps", c.SaveUsp)
	router.POST("/admin/cms/faqs", c.SaveFaq)
	router.DELETE("/admin/cms/faqs/:id", c.DeleteFaq)
}

// Content
// @Summary Site content for the marketing frontend
// @Description Settings, USPs and FAQs in a single payload
// @Tags cms
// @Produce json
// @Success 200 {object} SiteContent
// @Failure 500
// @Router /cms-content [get]
func (c *CmsController) Content(ctx *gin.Context) {
	content, err := c.service.Content()
	if err != nil {
		c.logger.Error("failed to load site content", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Failed to load content")
		return
	}

	response.Success(ctx, content, "Success")
}

// SaveSettings
// @Summary Update site settings
// @Tags cms
// @Accept json
// @Success 200
// @Failure 422
// @Router /admin/cms/settings [put]
func (c *CmsController) SaveSettings(ctx *gin.Context) {
	var request SaveSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	skipped, err := c.service.SaveSettings(&request)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	response.Success(ctx, gin.H{"skipped_keys": skipped}, "Settings saved")
}

// SaveUsp
// @Summary Create or update a USP card
// @Tags cms
// @Accept json
// @Success 200
// @Failure 404
// @Router /admin/cms/usps [post]
func (c *CmsController) SaveUsp(ctx *gin.Context) {
	var request SaveUspRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	if err := c.service.SaveUsp(&request); err != nil {
		if errors.Is(err, ErrContentNotFound) {
			response.Error(ctx, http.StatusNotFound, "USP not found")
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to save USP")
		return
	}

	response.Success(ctx, nil, "USP saved")
}

// SaveFaq
// @Summary Create or update an FAQ entry
// @Tags cms
// @Accept json
// @Success 200
// @Failure 404
// @Router /admin/cms/faqs [post]
func (c *CmsController) SaveFaq(ctx *gin.Context) {
	var request SaveFaqRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	if err := c.service.SaveFaq(&request); err != nil {
		if errors.Is(err, ErrContentNotFound) {
			response.Error(ctx, http.StatusNotFound, "FAQ not found")
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to save FAQ")
		return
	}

	response.Success(ctx, nil, "FAQ saved")
}

// DeleteFaq
// @Summary Delete an FAQ entry
// @Tags cms
// @Param id path string true "FAQ ID"
// @Success 200
// @Failure 404
// @Router /admin/cms/faqs/{id} [delete]
func (c *CmsController) DeleteFaq(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid FAQ ID")
		return
	}

	if err := c.service.DeleteFaq(id); err != nil {
		if errors.Is(err, ErrContentNotFound) {
			response.Error(ctx, http.StatusNotFound, "FAQ not found")
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to delete FAQ")
		return
	}

	response.Success(ctx, nil, "FAQ deleted")
}
