package users

import (
	"errors"
	"log/slog"
	"net/http"

	"biodaat-backend/internal/config"
	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthController struct {
	service *AuthService
	env     *config.Env
	logger  *slog.Logger
}

func NewAuthController(service *AuthService, env *config.Env, logger *slog.Logger) *AuthController {
	return &AuthController{
		service: service,
		env:     env,
		logger:  logger,
	}
}

// RegisterPublicRoutes mounts the endpoints that need no session.
func (c *AuthController) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/auth/send-otp", c.SendOTP)
	router.POST("/auth/verify-otp", c.VerifyOTP)
	router.POST("/admin/login", c.AdminLogin)
}

// RegisterUserRoutes mounts the endpoints behind the user session middleware.
func (c *AuthController) RegisterUserRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", c.Me)
	router.PUT("/auth/update", c.UpdateProfile)
	router.POST("/auth/logout", c.Logout)
}

// RegisterAdminRoutes mounts the endpoints behind the admin session middleware.
func (c *AuthController) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/admin/change-password", c.ChangeAdminPassword)
	router.PUT("/admin/users/:id/toggle", c.ToggleUser)
}

// SendOTP
// @Summary Send a login OTP to a phone number
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Phone number"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/send-otp [post]
func (c *AuthController) SendOTP(ctx *gin.Context) {
	var request SendOTPRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	code, err := c.service.SendOTP(request.Phone)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			response.ValidationError(ctx, err.Error())
		case errors.Is(err, ErrRateLimited):
			response.Error(ctx, http.StatusTooManyRequests, err.Error())
		default:
			c.logger.Error("failed to send OTP", "error", err)
			response.Error(ctx, http.StatusInternalServerError, "Failed to send OTP")
		}
		return
	}

	// Debug builds echo the code so the flow is testable without SMS.
	var data any
	if c.env.IsDebug {
		data = gin.H{"otp": code}
	}

	response.Success(ctx, data, "OTP sent")
}

// VerifyOTP
// @Summary Verify an OTP and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Phone and OTP"
// @Success 200 {object} response.Envelope{data=AuthResponse}
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /auth/verify-otp [post]
func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var request VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	user, err := c.service.VerifyOTP(request.Phone, request.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			response.ValidationError(ctx, err.Error())
		case errors.Is(err, ErrOTPNotFound),
			errors.Is(err, ErrOTPInvalid),
			errors.Is(err, ErrOTPMaxAttempts):
			response.Error(ctx, http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrAccountDisabled):
			response.Error(ctx, http.StatusForbidden, err.Error())
		default:
			c.logger.Error("failed to verify OTP", "error", err)
			response.Error(ctx, http.StatusInternalServerError, "Failed to verify OTP")
		}
		return
	}

	token, err := CreateToken(user.ID, RoleUser, c.env.JwtSecret, c.env.JwtExpiry)
	if err != nil {
		c.logger.Error("failed to create session token", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Failed to create session")
		return
	}

	response.Success(ctx, AuthResponse{Token: token, User: user}, "Login successful")
}

// Me
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope{data=User}
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Please login")
		return
	}

	response.Success(ctx, user, "")
}

// UpdateProfile
// @Summary Update the authenticated user's name and email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope{data=User}
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /auth/update [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Please login")
		return
	}

	var request UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	updated, err := c.service.UpdateProfile(user.ID, request.Name, request.Email)
	if err != nil {
		c.logger.Error("failed to update profile", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	response.Success(ctx, updated, "Profile updated")
}

// Logout
// @Summary End the session
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	// Sessions are stateless JWTs; the client discards the token.
	response.Success(ctx, nil, "Logged out")
}

// AdminLogin
// @Summary Authenticate an admin with username and password
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=AdminLoginResponse}
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var request AdminLoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	admin, err := c.service.AdminLogin(request.Username, request.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			response.Error(ctx, http.StatusUnauthorized, err.Error())
			return
		}
		c.logger.Error("admin login failed", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Login failed")
		return
	}

	token, err := CreateToken(admin.ID, RoleAdmin, c.env.JwtSecret, c.env.JwtExpiry)
	if err != nil {
		c.logger.Error("failed to create admin session token", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Failed to create session")
		return
	}

	response.Success(ctx, AdminLoginResponse{Token: token, Username: admin.Username}, "Login successful")
}

// ChangeAdminPassword
// @Summary Change the authenticated admin's password
// @Tags admin
// @Accept json
// @Produce json
// @Param request body ChangeAdminPasswordRequest true "Current and new password"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admin/change-password [post]
func (c *AuthController) ChangeAdminPassword(ctx *gin.Context) {
	adminID, ok := GetAdminIDFromContext(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Admin authentication required")
		return
	}

	var request ChangeAdminPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		response.ValidationError(ctx, err.Error())
		return
	}

	admin, err := c.service.GetAdmin(adminID)
	if err != nil || admin == nil {
		response.Error(ctx, http.StatusUnauthorized, "Admin authentication required")
		return
	}

	if err := c.service.ChangeAdminPassword(admin, request.CurrentPassword, request.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			response.Error(ctx, http.StatusUnauthorized, err.Error())
			return
		}
		c.logger.Error("failed to change admin password", "error", err)
		response.Error(ctx, http.StatusInternalServerError, "Failed to change password")
		return
	}

	response.Success(ctx, nil, "Password changed")
}

// ToggleUser
// @Summary Enable or disable a user account
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/toggle [put]
func (c *AuthController) ToggleUser(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	isActive, err := c.service.ToggleUserActive(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		c.logger.Error("failed to toggle user", "error", err, "userId", userID)
		response.Error(ctx, http.StatusInternalServerError, "Failed to update user")
		return
	}

	response.Success(ctx, gin.H{"isActive": isActive}, "User updated")
}
