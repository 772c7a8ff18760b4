package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	myMongoRepo "github.com/Miraines/MindHaven/auth-service/internal/adapters/db/mongo"
	myPostgresRepo "github.com/Miraines/MindHaven/auth-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MindHaven/auth-service/internal/adapters/db/redis"
	transport "github.com/Miraines/MindHaven/auth-service/internal/adapters/transport/http"
	"github.com/Miraines/MindHaven/auth-service/internal/app/auth/jwt"
	"github.com/Miraines/MindHaven/auth-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MindHaven/auth-service/internal/app/auth/service"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/repo"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/config"
	lg "github.com/Miraines/MindHaven/auth-service/internal/infra/log"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/migrate"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/ratelimit"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	limiterCacheSize = 10_000
	limiterTTL       = time.Hour
	healthInterval   = 10 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// openUserStore connects the configured user store and prepares its schema.
// The returned func releases the connection.
func openUserStore(ctx context.Context, cfg *config.Config) (repo.UserRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		users := myMongoRepo.NewMongoUserRepo(client.Database(cfg.MongoDatabase).Collection(myMongoRepo.UsersCollection))
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return users, closeFn, nil

	default:
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("db handle: %w", err)
		}
		closeFn := func() { _ = sqlDB.Close() }

		if err := migrate.Up(sqlDB); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return myPostgresRepo.NewPostgresUserRepo(db), closeFn, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := lg.Must(cfg.LogLevel, cfg.Production())
	defer zapLog.Sync()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := openUserStore(rootCtx, cfg)
	if err != nil {
		zapLog.Fatal("failed to open user store", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}
	defer closeStore()

	// Without Redis tokens cannot be revoked early; logout only clears the cookie.
	var tokens repo.TokenRepo
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		tokenRepo := myRedisRepo.NewRedisTokenRepo(redisCli)
		if err := tokenRepo.Ping(rootCtx); err != nil {
			zapLog.Fatal("failed to reach redis", zap.Error(err))
		}
		tokens = tokenRepo
	} else {
		zapLog.Warn("REDIS_ADDRESS not set, token revocation disabled")
	}

	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		zapLog.Fatal("failed to init password hasher", zap.Error(err))
	}
	jwtUtil, err := jwt.NewJWTUtil([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}
	svc := appsvc.New(users, tokens, hasher, jwtUtil, appsvc.NewValidator(), zapLog)

	httpLimiter := ratelimit.NewPerKey(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterCacheSize, limiterTTL)
	grpcLimiter := ratelimit.NewPerKey(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterCacheSize, limiterTTL)

	handler := transport.NewHandler(svc, users, transport.CookieOptions{
		Domain: cfg.CookieDomain,
		Secure: cfg.Production(),
	}, zapLog)
	router := transport.NewRouter(handler, httpLimiter, transport.CORSOptions{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
	}, zapLog)

	hs := health.NewServer()
	grpcServer, err := server.NewGRPCServer(cfg, hs, grpcLimiter, zapLog)
	if err != nil {
		zapLog.Fatal("failed to init gRPC server", zap.Error(err))
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		zapLog.Fatal("failed to listen", zap.Error(err), zap.String("addr", cfg.GRPCAddress))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.ServeGRPC(ctx, grpcServer, grpcLis, zapLog)
	})

	g.Go(func() error {
		server.WatchHealth(ctx, hs, users, healthInterval, zapLog)
		return nil
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")

		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
