package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/yukikurage/todo-reminder-api/internal/config"
	"github.com/yukikurage/todo-reminder-api/internal/database"
	"github.com/yukikurage/todo-reminder-api/internal/handlers"
	"github.com/yukikurage/todo-reminder-api/internal/logger"
	"github.com/yukikurage/todo-reminder-api/internal/middleware"
	"github.com/yukikurage/todo-reminder-api/internal/notify"
	"github.com/yukikurage/todo-reminder-api/internal/reminder"
	"github.com/yukikurage/todo-reminder-api/internal/repository"
	"github.com/yukikurage/todo-reminder-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens, err := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		zlog.Fatal("Failed to configure tokens", zap.Error(err))
	}

	policies := services.DefaultScopePolicies()
	if cfg.Tasks.StrictOwnership {
		policies = services.StrictScopePolicies()
	}

	// Task drafting is optional
	var drafter services.Drafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewOpenAIDrafter(cfg.OpenAIAPIKey)
	} else {
		zlog.Info("OPENAI_API_KEY not set, task drafting disabled")
	}

	authService := services.NewAuthService(userRepo, tokens, zlog)
	userService := services.NewUserService(userRepo, zlog)
	taskService := services.NewTaskService(taskRepo, policies, drafter, zlog)
	queryService := services.NewTaskQueryService(taskRepo, policies)
	assignmentService := services.NewAssignmentService(taskRepo, userRepo, policies, zlog)

	var notifier notify.Notifier
	switch cfg.Notifier.Driver {
	case "push":
		notifier = notify.NewPushNotifier(cfg.Notifier.PushURL, cfg.Notifier.APIKey, cfg.Notifier.Timeout, zlog)
	default:
		notifier = notify.NewLogNotifier(zlog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var scheduler *reminder.Scheduler
	if cfg.Reminder.Enabled {
		scheduler = reminder.NewScheduler(taskRepo, userRepo, notifier, reminder.Options{
			Interval: cfg.Reminder.Interval,
			Cooldown: cfg.Reminder.Cooldown,
			Workers:  cfg.Reminder.Workers,
		}, zlog)
		scheduler.Start(ctx)
	}

	router := handlers.Router{
		Auth:         handlers.NewAuthHandler(authService, zlog),
		Users:        handlers.NewUserHandler(userService, zlog),
		Tasks:        handlers.NewTaskHandler(taskService, queryService, assignmentService, zlog),
		Authn:        authService,
		LoginLimiter: middleware.NewIPRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
		Logger:       zlog,
	}

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router.Engine(),
	}

	go func() {
		zlog.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	sqlDB, err := db.DB()
	if err != nil {
		zlog.Error("Failed to get database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		zlog.Error("Failed to close database", zap.Error(err))
	}
}
