package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/app"
	"jobboard/internal/config"
	"jobboard/internal/server"
	"jobboard/internal/util"
	"jobboard/internal/validate"
	"jobboard/pkg/auth"
	"jobboard/pkg/events"
	"jobboard/pkg/storage"
	"jobboard/pkg/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel, "jobboard-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("failed to reach redis: %v", err)
		}
	}

	var dataStore store.Store
	if cfg.DatabaseURL != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init postgres store: %v", err)
		}
		defer gormStore.Close()
		dataStore = gormStore
	} else {
		logger.Warn("databaseURL not set, using in-memory store")
		dataStore = store.NewMemoryStore()
	}

	var revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
	if redisClient != nil {
		revoker = store.NewRedisTokenRevoker(redisClient)
	}
	sessions, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionDuration(), revoker, store.JWTOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   cfg.Leeway(),
	})
	if err != nil {
		log.Fatalf("failed to init session store: %v", err)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	} else {
		objects, err = storage.NewFileStore(cfg.UploadDir, cfg.UploadPublicURL)
	}
	if err != nil {
		log.Fatalf("failed to init object storage: %v", err)
	}

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()

	var demo *auth.DemoDirectory
	if cfg.DemoAuth {
		logger.Warn("demo accounts enabled")
		demo = auth.NewDemoDirectory()
	}

	appCore, err := app.New(app.Config{
		Store:             dataStore,
		Sessions:          sessions,
		Objects:           objects,
		Events:            publisher,
		Demo:              demo,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AllowedExtensions: cfg.AllowedExtensions,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("invalid trustedProxyCidrs: %v", err)
	}
	validator, err := validate.New()
	if err != nil {
		log.Fatalf("failed to init validator: %v", err)
	}
	serverCfg := server.Config{
		App:                        appCore,
		Validator:                  validator,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		TrustedProxies:             trusted,
		CORSAllowedOrigins:         cfg.CORSAllowedOrigins,
	}
	if redisClient != nil {
		serverCfg.Redis = redisClient
	} else {
		logger.Warn("redisAddr not set, register/login rate limiting disabled")
	}
	httpServer, err := server.New(serverCfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
		}
	}
}
