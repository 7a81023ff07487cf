package main

import (
	"context"
	"fmt"
	"os"

	"github.com/NathanHodgkiss447/smart-tasks/config"
	"github.com/NathanHodgkiss447/smart-tasks/logging"
	"github.com/NathanHodgkiss447/smart-tasks/modules/activity"
	"github.com/NathanHodgkiss447/smart-tasks/modules/api"
	"github.com/NathanHodgkiss447/smart-tasks/modules/auth"
	"github.com/NathanHodgkiss447/smart-tasks/modules/ratelimit"
	"github.com/NathanHodgkiss447/smart-tasks/modules/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/modules/task"
	"github.com/NathanHodgkiss447/smart-tasks/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting smart-tasks",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
		zap.Int("port", cfg.Port))

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}

	backend, err := storage.Open(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(monoLogLevel(cfg.LogLevel)),
		mono.WithLogFormat(monoLogFormat(cfg.LogFormat)),
	)
	if err != nil {
		logger.Fatal("Failed to create application", zap.Error(err))
	}

	taskModule := task.NewModule(backend.Tasks, loc, backend.Ping, logger)
	apiModule := api.NewModule(api.Config{Port: cfg.Port, ClientOrigin: cfg.ClientOrigin}, logger).
		WithHealthCheck("task", taskModule.Health)

	// Order: independent modules first, then dependent modules.
	app.Register(auth.NewModule(backend.Users, auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		TTL:       cfg.JWTTTL,
		Issuer:    cfg.JWTIssuer,
	}, logger))
	app.Register(taskModule)
	app.Register(activity.NewModule(logger))
	app.Register(reminder.NewModule(loc, logger))

	if cfg.RateLimitEnabled() {
		limiter := ratelimit.NewModule(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, ratelimit.Config{
			RequestsPerWindow: cfg.AuthRateLimit,
			WindowSize:        cfg.AuthRateWindow,
			KeyPrefix:         ratelimit.DefaultConfig().KeyPrefix,
		}, logger)
		app.Register(limiter)
		apiModule.WithRateLimit(limiter.Handler()).WithHealthCheck(limiter.Name(), limiter.Health)
	} else {
		logger.Info("Auth rate limiting disabled (REDIS_ADDR is empty)")
	}

	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		_ = backend.Close(context.Background())
		logger.Fatal("Failed to start application", zap.Error(err))
	}
	logger.Info("Application started", zap.String("addr", fmt.Sprintf(":%d", cfg.Port)))

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return stopApp(ctx, app, backend)
			},
		},
	)

	exitCode := <-wait
	logger.Info("Application exited", zap.Int("code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}
