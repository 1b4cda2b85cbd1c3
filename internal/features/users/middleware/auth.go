package users_middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"biodaat-backend/internal/features/users"
	"biodaat-backend/internal/util/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Authenticator struct {
	repository *users.UserRepository
	secret     string
	logger     *slog.Logger
}

func NewAuthenticator(repository *users.UserRepository, secret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		repository: repository,
		secret:     secret,
		logger:     logger,
	}
}

// RequireUser rejects requests without a valid user session.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := a.userFromRequest(ctx)
		if user == nil {
			response.Error(ctx, http.StatusUnauthorized, "Please login")
			ctx.Abort()
			return
		}

		ctx.Set(users.UserContextKey, user)
		ctx.Next()
	}
}

// OptionalUser attaches the user when a valid session is presented and
// lets guests through otherwise.
func (a *Authenticator) OptionalUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if user := a.userFromRequest(ctx); user != nil {
			ctx.Set(users.UserContextKey, user)
		}
		ctx.Next()
	}
}

// RequireAdmin rejects requests without a valid admin session.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims := a.parseClaims(ctx)
		if claims == nil || claims.Role != users.RoleAdmin {
			response.Error(ctx, http.StatusUnauthorized, "Admin authentication required")
			ctx.Abort()
			return
		}

		adminID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Error(ctx, http.StatusUnauthorized, "Admin authentication required")
			ctx.Abort()
			return
		}

		ctx.Set(users.AdminContextKey, adminID)
		ctx.Next()
	}
}

func (a *Authenticator) userFromRequest(ctx *gin.Context) *users.User {
	claims := a.parseClaims(ctx)
	if claims == nil || claims.Role != users.RoleUser {
		return nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}

	user, err := a.repository.FindByID(userID)
	if err != nil {
		a.logger.Warn("failed to load user for session", "error", err)
		return nil
	}
	if user == nil || !user.IsActive {
		return nil
	}

	return user
}

func (a *Authenticator) parseClaims(ctx *gin.Context) *users.Claims {
	header := ctx.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}

	raw := strings.TrimPrefix(header, "Bearer ")

	var claims users.Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	return &claims
}
