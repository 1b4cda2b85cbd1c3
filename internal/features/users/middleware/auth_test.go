package users_middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"biodaat-backend/internal/features/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type middlewareFixture struct {
	db            *gorm.DB
	repository    *users.UserRepository
	authenticator *Authenticator
	router        *gin.Engine
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&users.User{}))

	repository := users.NewUserRepository(db)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authenticator := NewAuthenticator(repository, testSecret, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/protected", authenticator.RequireUser(), func(ctx *gin.Context) {
		user, _ := users.GetUserFromContext(ctx)
		ctx.JSON(http.StatusOK, gin.H{"phone": user.Phone})
	})
	router.GET("/optional", authenticator.OptionalUser(), func(ctx *gin.Context) {
		_, loggedIn := users.GetUserFromContext(ctx)
		ctx.JSON(http.StatusOK, gin.H{"loggedIn": loggedIn})
	})
	router.GET("/admin-only", authenticator.RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	return &middlewareFixture{
		db:            db,
		repository:    repository,
		authenticator: authenticator,
		router:        router,
	}
}

func (f *middlewareFixture) createUser(t *testing.T, active bool) *users.User {
	user := &users.User{Phone: "9876543210", IsActive: active}
	require.NoError(t, f.repository.Create(user))

	if !active {
		// Create defaults new users to active; flip explicitly.
		_, err := f.repository.SetActive(user.ID, false)
		require.NoError(t, err)
		user.IsActive = false
	}

	return user
}

func (f *middlewareFixture) do(t *testing.T, target, token string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func Test_RequireUser_ValidToken_PassesUserToHandler(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, true)

	token, err := users.CreateToken(user.ID, users.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/protected", token)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "9876543210")
}

func Test_RequireUser_NoToken_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)

	recorder := fixture.do(t, "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func Test_RequireUser_ExpiredToken_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, true)

	token, err := users.CreateToken(user.ID, users.RoleUser, testSecret, -time.Minute)
	require.NoError(t, err)

	recorder := fixture.do(t, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func Test_RequireUser_TokenSignedWithDifferentSecret_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, true)

	token, err := users.CreateToken(user.ID, users.RoleUser, "other-secret", time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func Test_RequireUser_AdminToken_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)

	token, err := users.CreateToken(uuid.New(), users.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func Test_RequireUser_DisabledUser_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, false)

	token, err := users.CreateToken(user.ID, users.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func Test_OptionalUser_NoToken_ContinuesAsGuest(t *testing.T) {
	fixture := newMiddlewareFixture(t)

	recorder := fixture.do(t, "/optional", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "false")
}

func Test_OptionalUser_ValidToken_AttachesUser(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, true)

	token, err := users.CreateToken(user.ID, users.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/optional", token)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "true")
}

func Test_OptionalUser_GarbageToken_ContinuesAsGuest(t *testing.T) {
	fixture := newMiddlewareFixture(t)

	recorder := fixture.do(t, "/optional", "garbage")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "false")
}

func Test_RequireAdmin_AdminToken_Passes(t *testing.T) {
	fixture := newMiddlewareFixture(t)

	token, err := users.CreateToken(uuid.New(), users.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/admin-only", token)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func Test_RequireAdmin_UserToken_Returns401(t *testing.T) {
	fixture := newMiddlewareFixture(t)
	user := fixture.createUser(t, true)

	token, err := users.CreateToken(user.ID, users.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	recorder := fixture.do(t, "/admin-only", token)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
