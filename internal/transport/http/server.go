package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/handler"
	"foodgram/internal/queue"
	"foodgram/internal/redis"
	"foodgram/internal/repository"
	"foodgram/internal/repository/memory"
	"foodgram/internal/repository/mongostore"
	"foodgram/internal/service"
	"foodgram/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	streamMaxLen    = 10000
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the store selected by STORE_DRIVER
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Optional Redis: engagement stream, ranking cache and its workers
	var (
		publisher    queue.Publisher
		rankingCache cache.RankingCache
	)
	if cfg.RedisURL != "" {
		rc, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()

		publisher = queue.NewPublisher(rc.Client, streamMaxLen)
		rankingCache = cache.NewRankingCache(rc.Client, cfg.RankingCacheTTL)

		manager := worker.NewManager(queue.NewConsumer(rc.Client), worker.NewHandler(rankingCache), worker.ManagerConfig{
			WorkerCount: cfg.WorkerCount,
		})
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	} else {
		log.Println("[Server] REDIS_URL not set, ranking is computed on every request")
	}

	// 4. Optional media storage
	var mediaService *service.MediaService
	if cfg.MediaEnabled() {
		mediaService, err = service.NewMediaService(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init media service: %w", err)
		}
	} else {
		log.Println("[Server] R2 not configured, media routes disabled")
	}

	// 5. Services and handlers
	userService := service.NewUserService(store, publisher).WithDefaultAvatar(cfg.DefaultAvatarURL, cfg.DefaultAvatarKey)
	authService := service.NewAuthService(store.RefreshTokens, cfg)
	followService := service.NewFollowService(store.Follows, store.Users)
	postService := service.NewPostService(store, publisher)
	commentService := service.NewCommentService(store.Comments, store.Posts, store.Users)
	rankingService := service.NewRankingService(store, rankingCache)

	routerCfg := RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService, rankingService, mediaService),
		FollowHandler:  handler.NewFollowHandler(followService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		JWTSecret:      cfg.JWTSecret,
		Users:          store.Users,
		RequestTimeout: cfg.RequestTimeout,
	}
	if mediaService != nil {
		routerCfg.MediaHandler = handler.NewMediaHandler(mediaService)
	}

	go purgeExpiredTokens(ctx, store.RefreshTokens)

	// 6. Serve until interrupted
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s (store=%s)", srv.Addr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and returns a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("[Server] Mongo disconnect: %v", err)
			}
		}
		return mongostore.NewStore(db), closeFn, nil

	case config.DriverMemory:
		log.Println("[Server] Using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		db, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return repository.NewPostgresStore(db), func() { db.Close() }, nil
	}
}

// purgeExpiredTokens drops refresh tokens a day past expiry, once an hour.
func purgeExpiredTokens(ctx context.Context, tokens repository.RefreshTokenRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, 24*time.Hour)
			if err != nil {
				log.Printf("[Server] Failed to purge expired tokens: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[Server] Purged %d expired refresh tokens", n)
			}
		}
	}
}
