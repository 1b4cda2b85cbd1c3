package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biodaat-backend/internal/config"
	"biodaat-backend/internal/features/admin"
	"biodaat-backend/internal/features/biodatas"
	"biodaat-backend/internal/features/cms"
	"biodaat-backend/internal/features/downloads"
	system_healthcheck "biodaat-backend/internal/features/system/healthcheck"
	"biodaat-backend/internal/features/templates"
	"biodaat-backend/internal/features/tokens"
	"biodaat-backend/internal/features/users"
	users_middleware "biodaat-backend/internal/features/users/middleware"
	"biodaat-backend/internal/storage"
	cache "biodaat-backend/internal/util/cache"
	"biodaat-backend/internal/util/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(env.AppEnv)

	if env.IsUsingDefaultDownloadSecret() {
		log.Warn("DOWNLOAD_TOKEN_SECRET is the shipped default, degraded-mode tokens are forgeable")
	}

	db, err := storage.Open(env.MysqlDSN())
	if err != nil {
		log.Error("failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	if err := storage.Migrate(db,
		&users.User{},
		&users.AdminUser{},
		&templates.Template{},
		&biodatas.GeneratedBiodata{},
		&tokens.DownloadToken{},
		&cms.Setting{},
		&cms.Usp{},
		&cms.Faq{},
	); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Raw connection for the driver-level health probe.
	rawDB, err := sqlx.Open("mysql", env.MysqlDSN())
	if err != nil {
		log.Warn("failed to open raw MySQL connection, /health/db will report unavailable", "error", err)
		rawDB = nil
	} else {
		defer rawDB.Close()
	}

	valkeyClient, err := cache.NewValkeyClient(env.ValkeyHost, env.ValkeyPort, env.ValkeyUsername, env.ValkeyPassword)
	if err != nil {
		log.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Repositories and services, wired explicitly.
	userRepository := users.NewUserRepository(db)
	templateRepository := templates.NewTemplateRepository(db)
	biodataRepository := biodatas.NewBiodataRepository(db)
	tokenRepository := tokens.NewTokenRepository(db)

	codec := tokens.NewCodec(env.DownloadSecret)
	tokenService := tokens.NewTokenService(tokenRepository, codec, env, log)

	vault := downloads.NewFileVault(env.ArtifactRoot)
	downloadService := downloads.NewDownloadService(tokenService, vault, log)

	templateService := templates.NewTemplateService(templateRepository, log)

	renderer := biodatas.NewHTMLRenderer(env.TemplatesRoot)
	generatorService := biodatas.NewGeneratorService(
		biodataRepository, tokenService, templateService, vault, renderer, log)

	otpStore := users.NewValkeyOTPStore(valkeyClient)
	rateLimiter := cache.NewRateLimiter(valkeyClient)
	authService := users.NewAuthService(userRepository, otpStore, rateLimiter, env, log)

	cmsService := cms.NewCmsService(cms.NewCmsRepository(db), log)

	dashboardService := admin.NewDashboardService(
		userRepository, biodataRepository, templateRepository, tokenService, log)

	healthcheckService := system_healthcheck.NewHealthcheckService(db, rawDB, env.ArtifactRoot)

	// Controllers.
	authController := users.NewAuthController(authService, env, log)
	templateController := templates.NewTemplateController(templateService)
	biodataController := biodatas.NewBiodataController(generatorService, log)
	downloadController := downloads.NewDownloadController(downloadService, tokenService)
	cmsController := cms.NewCmsController(cmsService, log)
	dashboardController := admin.NewDashboardController(dashboardService)
	healthcheckController := system_healthcheck.NewHealthcheckController(healthcheckService)

	authenticator := users_middleware.NewAuthenticator(userRepository, env.JwtSecret, log)

	// Background jobs.
	sweeper := downloads.NewArtifactSweeper(env.ArtifactRoot, env.ArtifactRetentionDays, log)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() { sweeper.Sweep() }); err != nil {
		log.Error("failed to schedule artifact sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if env.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     env.CorsAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api/v1")

	healthcheckController.RegisterRoutes(api)

	public := api.Group("")
	authController.RegisterPublicRoutes(public)
	templateController.RegisterRoutes(public)
	downloadController.RegisterRoutes(public)
	cmsController.RegisterRoutes(public)

	// Generation is open to guests but picks up the session when present.
	optionalAuth := api.Group("", authenticator.OptionalUser())
	biodataController.RegisterPublicRoutes(optionalAuth)

	userRoutes := api.Group("", authenticator.RequireUser())
	authController.RegisterUserRoutes(userRoutes)
	biodataController.RegisterUserRoutes(userRoutes)

	adminRoutes := api.Group("", authenticator.RequireAdmin())
	authController.RegisterAdminRoutes(adminRoutes)
	templateController.RegisterAdminRoutes(adminRoutes)
	cmsController.RegisterAdminRoutes(adminRoutes)
	dashboardController.RegisterAdminRoutes(adminRoutes)

	server := &http.Server{
		Addr:    ":" + env.Port,
		Handler: router,
	}

	go func() {
		log.Info("starting server", "port", env.Port, "env", env.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
}
