package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-site/internal/auth"
	"github.com/ayush/portfolio-site/internal/config"
	"github.com/ayush/portfolio-site/internal/logging"
	"github.com/ayush/portfolio-site/internal/projects"
	"github.com/ayush/portfolio-site/internal/server"
	"github.com/ayush/portfolio-site/internal/skills"
	"github.com/ayush/portfolio-site/internal/store"
)

// contentStore is what the skill and project services need from a backend.
type contentStore interface {
	skills.Store
	projects.Store
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := logger.WithContext(context.Background())

	// ── Content store (MongoDB or memory) ────────────────────
	var content contentStore
	var users auth.UserStore
	switch cfg.StoreBackend {
	case config.BackendMongo:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		content, users = mongoStore, mongoStore
	default:
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		mem := store.NewMemoryStore()
		content, users = mem, mem
	}

	// ── PostgreSQL (optional credential store) ──────────────
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		users = pgStore
	}

	// ── Redis (optional token revocation) ───────────────────
	var revoked auth.Revoker = auth.NewMemoryRevocations()
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		revoked = auth.NewRedisRevocations(rdb)
	}

	// ── MinIO (optional project images) ─────────────────────
	var files projects.FileStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		files = minioStore
	}

	// ── Services ─────────────────────────────────────────────
	authSvc := auth.NewService(users, auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL), revoked, auth.Options{
		AllowAdminRegistration: cfg.AllowAdminRegistration,
	})
	created, err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info().Str("username", cfg.AdminUsername).Msg("seeded admin account")
	}
	if exposed, err := authSvc.OpenAdminRegistration(ctx); err != nil {
		logger.Warn().Err(err).Msg("admin registration check failed")
	} else if exposed {
		logger.Warn().Msg("ALLOW_ADMIN_REGISTRATION is on and an admin exists: anyone can register as admin")
	}

	handler := server.NewRouter(server.Deps{
		Auth:        authSvc,
		Skills:      skills.NewService(content),
		Projects:    projects.NewService(content, files),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
