package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/batiserv/batiserv-backend/api/routes"
	"github.com/batiserv/batiserv-backend/internal/auth"
	"github.com/batiserv/batiserv-backend/internal/customers"
	"github.com/batiserv/batiserv-backend/internal/files"
	"github.com/batiserv/batiserv-backend/internal/options"
	"github.com/batiserv/batiserv-backend/internal/orders"
	"github.com/batiserv/batiserv-backend/internal/sites"
	"github.com/batiserv/batiserv-backend/internal/users"
	"github.com/batiserv/batiserv-backend/internal/workspace"
	"github.com/batiserv/batiserv-backend/pkg/auth/session"
	"github.com/batiserv/batiserv-backend/pkg/config"
	"github.com/batiserv/batiserv-backend/pkg/db"
	"github.com/batiserv/batiserv-backend/pkg/logger"
	"github.com/batiserv/batiserv-backend/pkg/migrate"
	"github.com/batiserv/batiserv-backend/pkg/redis"
	"github.com/batiserv/batiserv-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	sitesRepo := sites.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	optionsRepo := options.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		ResetTokens:    redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	filesService, err := files.NewService(sitesRepo, optionsRepo, gcsClient, logg, cfg.Upload.MaxUploadMB)
	if err != nil {
		logg.Error(context.Background(), "failed to create files service", err)
		os.Exit(1)
	}

	ws, err := workspace.NewController(
		customersRepo, sitesRepo, ordersRepo, optionsRepo,
		usersRepo, dbClient, filesService, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create workspace controller", err)
		os.Exit(1)
	}
	if err := ws.Load(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to load workspace mirror", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg,
			dbClient, redisClient, gcsClient,
			sessionManager,
			authService, usersService, ws,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
