package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserContextKey  = "currentUser"
	AdminContextKey = "currentAdminID"
)

// GetUserFromContext returns the authenticated user attached by the
// auth middleware, or false for guest requests.
func GetUserFromContext(ctx *gin.Context) (*User, bool) {
	value, ok := ctx.Get(UserContextKey)
	if !ok {
		return nil, false
	}

	user, ok := value.(*User)
	return user, ok
}

func GetAdminIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	value, ok := ctx.Get(AdminContextKey)
	if !ok {
		return uuid.Nil, false
	}

	adminID, ok := value.(uuid.UUID)
	return adminID, ok
}
