package templates

import (
	"errors"
	"net/http"

	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TemplateController struct {
	templateService *TemplateService
}

func NewTemplateController(templateService *TemplateService) *TemplateController {
	return &TemplateController{templateService: templateService}
}

func (c *TemplateController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/templates", c.ListTemplates)
	router.GET("/templates/:slug", c.GetTemplate)
}

// RegisterAdminRoutes registers the CMS slice; the caller wraps the group
// in admin authentication.
func (c *TemplateController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/admin/templates", c.CreateTemplate)
	router.PUT("/admin/templates/:id", c.UpdateTemplate)
	router.PUT("/admin/templates/:id/toggle", c.ToggleTemplate)
	router.PUT("/admin/template-sort-order", c.ReorderTemplates)
}

// ListTemplates
// @Summary List active templates
// @Description Paginated template gallery ordered by sort_order
// @Tags templates
// @Produce json
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Items per page" default(12)
// @Success 200 {array} TemplateListItem
// @Failure 500
// @Router /templates [get]
func (c *TemplateController) ListTemplates(ctx *gin.Context) {
	var request ListTemplatesRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		response.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}
	request.Normalize()

	items, total, err := c.templateService.ListActive(request.Page, request.PerPage)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to load templates")
		return
	}

	response.Paginated(ctx, items, request.Page, request.PerPage, total)
}

// GetTemplate
// @Summary Get a template by slug
// @Tags templates
// @Produce json
// @Param slug path string true "Template slug"
// @Success 200 {object} TemplateDetail
// @Failure 404
// @Router /templates/{slug} [get]
func (c *TemplateController) GetTemplate(ctx *gin.Context) {
	detail, err := c.templateService.GetBySlug(ctx.Param("slug"))
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to load template")
		return
	}
	if detail == nil {
		response.Error(ctx, http.StatusNotFound, "Template not found")
		return
	}

	response.Success(ctx, gin.H{"template": detail}, "Success")
}

// CreateTemplate
// @Summary Create a template
// @Tags admin
// @Accept json
// @Success 201 {object} Template
// @Failure 400
// @Router /admin/templates [post]
func (c *TemplateController) CreateTemplate(ctx *gin.Context) {
	var request UpsertTemplateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	template, err := c.templateService.Create(&request)
	if err != nil {
		if errors.Is(err, ErrInvalidFieldSchema) {
			response.ValidationError(ctx, err.Error())
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to create template")
		return
	}

	response.Created(ctx, template, "Template created")
}

// UpdateTemplate
// @Summary Update a template
// @Tags admin
// @Accept json
// @Param id path string true "Template ID"
// @Success 200 {object} Template
// @Failure 400
// @Failure 404
// @Router /admin/templates/{id} [put]
func (c *TemplateController) UpdateTemplate(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid template ID")
		return
	}

	var request UpsertTemplateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	template, err := c.templateService.UpdateTemplate(id, &request)
	if err != nil {
		if errors.Is(err, ErrInvalidFieldSchema) {
			response.ValidationError(ctx, err.Error())
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to update template")
		return
	}
	if template == nil {
		response.Error(ctx, http.StatusNotFound, "Template not found")
		return
	}

	response.Success(ctx, template, "Template updated")
}

// ReorderTemplates
// @Summary Reorder the template gallery
// @Description Applies a batch of sort_order changes in one transaction
// @Tags admin
// @Accept json
// @Success 200
// @Failure 400
// @Router /admin/template-sort-order [put]
func (c *TemplateController) ReorderTemplates(ctx *gin.Context) {
	var request ReorderRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.templateService.Reorder(&request); err != nil {
		response.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	response.Success(ctx, nil, "Sort order updated")
}

// ToggleTemplate
// @Summary Toggle template visibility
// @Tags admin
// @Param id path string true "Template ID"
// @Success 200
// @Failure 400
// @Router /admin/templates/{id}/toggle [put]
func (c *TemplateController) ToggleTemplate(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid template ID")
		return
	}

	template, err := c.templateService.GetByID(id)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to load template")
		return
	}
	if template == nil {
		response.Error(ctx, http.StatusNotFound, "Template not found")
		return
	}

	if err := c.templateService.SetActive(id, !template.IsActive); err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to toggle template")
		return
	}

	response.Success(ctx, gin.H{"is_active": !template.IsActive}, "Template toggled")
}
