package biodatas

import (
	"errors"
	"log/slog"
	"net/http"

	"biodaat-backend/internal/features/users"
	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BiodataController struct {
	service *GeneratorService
	logger  *slog.Logger
}

func NewBiodataController(service *GeneratorService, logger *slog.Logger) *BiodataController {
	return &BiodataController{
		service: service,
		logger:  logger,
	}
}

// RegisterPublicRoutes mounts generation for guests and logged-in users
// alike; the group carries the optional-session middleware.
func (c *BiodataController) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/generate", c.Generate)
}

// RegisterUserRoutes mounts the endpoints that need a user session.
func (c *BiodataController) RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/my-biodatas", c.MyBiodatas)
	router.POST("/regenerate-token", c.RegenerateToken)
}

// Generate
// @Summary Generate a biodata document from a template and form data
// @Tags biodatas
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Template and form data"
// @Success 200 {object} response.Envelope{data=GenerateResult}
// @Failure 402 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /generate [post]
func (c *BiodataController) Generate(ctx *gin.Context) {
	var request GenerateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	templateID, err := uuid.Parse(request.TemplateID)
	if err != nil {
		response.ValidationError(ctx, "invalid template_id")
		return
	}

	// Guests generate with the nil user ID.
	userID := uuid.Nil
	if user, ok := users.GetUserFromContext(ctx); ok {
		userID = user.ID
	}

	result, err := c.service.Generate(userID, templateID, request.FormData)
	if err != nil {
		if errors.Is(err, ErrPaymentRequired) {
			response.ErrorWithDetails(ctx, http.StatusPaymentRequired,
				"This template requires purchase", gin.H{"requires_payment": true})
			return
		}
		c.logger.Error("biodata generation failed", "error", err, "templateId", templateID)
		response.Error(ctx, http.StatusInternalServerError, "Failed to generate biodata")
		return
	}

	response.Success(ctx, result, "Biodata generated")
}

// MyBiodatas
// @Summary List the authenticated user's generated biodatas
// @Tags biodatas
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.Envelope{data=[]BiodataListItem}
// @Failure 401 {object} response.Envelope
// @Router /my-biodatas [get]
func (c *BiodataController) MyBiodatas(ctx *gin.Context) {
	user, ok := users.GetUserFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Please login")
		return
	}

	var request MyBiodatasRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}
	request.Normalize()

	items, total, err := c.service.ListByUser(user.ID, request.Page, request.PerPage)
	if err != nil {
		c.logger.Error("failed to list biodatas", "error", err, "userId", user.ID)
		response.Error(ctx, http.StatusInternalServerError, "Failed to load biodatas")
		return
	}

	response.Paginated(ctx, items, request.Page, request.PerPage, total)
}

// RegenerateToken
// @Summary Issue a fresh download token for an owned biodata
// @Tags biodatas
// @Accept json
// @Produce json
// @Param request body RegenerateTokenRequest true "Biodata ID"
// @Success 200 {object} response.Envelope{data=RegenerateTokenResult}
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /regenerate-token [post]
func (c *BiodataController) RegenerateToken(ctx *gin.Context) {
	user, ok := users.GetUserFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Please login")
		return
	}

	var request RegenerateTokenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	biodataID, err := uuid.Parse(request.BiodataID)
	if err != nil {
		response.ValidationError(ctx, "invalid biodata_id")
		return
	}

	result, err := c.service.RegenerateToken(user.ID, biodataID)
	if err != nil {
		if errors.Is(err, ErrBiodataNotFound) {
			response.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		c.logger.Error("failed to regenerate token", "error", err, "biodataId", biodataID)
		response.Error(ctx, http.StatusInternalServerError, "Failed to regenerate token")
		return
	}

	response.Success(ctx, result, "Token regenerated")
}
