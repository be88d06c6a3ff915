package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/database"
	"sociogram/internal/handler"
	"sociogram/internal/queue"
	"sociogram/internal/redis"
	"sociogram/internal/repository"
	"sociogram/internal/service"
	"sociogram/internal/storage"
	"sociogram/internal/worker"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (optional: feed cache and fan-out queue)
	var feedCache cache.FeedCache
	var publisher queue.Publisher
	var consumer queue.Consumer
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := redisClient.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		feedCache = cache.NewFeedCache(redisClient.Client)
		publisher = queue.NewPublisher(redisClient.Client)
		consumer = queue.NewConsumer(redisClient.Client)
		log.Println("[Server] Redis connected, feed cache and queue enabled")
	} else {
		log.Println("[Server] REDIS_URL not set, running without feed cache and queue")
	}

	// 4. Select object storage backend
	var store storage.ObjectStore
	var assetDir string
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		s3Store, err := storage.NewS3(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init s3 storage: %w", err)
		}
		store = s3Store
		log.Printf("[Server] Using S3 storage bucket=%s", cfg.S3Bucket)
	default:
		store = storage.NewLocal(cfg.AssetDir, cfg.AssetURLPrefix)
		assetDir = cfg.AssetDir
		log.Printf("[Server] Using local storage dir=%s", cfg.AssetDir)
	}

	// 5. Wire repositories, services, handlers
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokenService := service.NewTokenService(cfg)
	mediaService := service.NewMediaService(store)
	userService := service.NewUserService(userRepo, friendRepo)
	friendService := service.NewFriendService(friendRepo, userRepo, publisher)
	postService := service.NewPostService(postRepo, commentRepo, userRepo, publisher)
	feedService := service.NewFeedService(feedCache, postRepo, friendRepo, userRepo)

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, tokenService, mediaService, cfg),
		UserHandler:    handler.NewUserHandler(userService),
		FriendHandler:  handler.NewFriendHandler(friendService),
		FeedHandler:    handler.NewFeedHandler(feedService),
		PostHandler:    handler.NewPostHandler(postService, mediaService),
		TokenService:   tokenService,
		AssetDir:       assetDir,
		AssetURLPrefix: cfg.AssetURLPrefix,
	})

	// 6. Start feed fan-out workers when the queue is available
	var manager *worker.Manager
	if consumer != nil && feedCache != nil {
		wh := worker.NewHandler(feedCache, friendRepo, postRepo)
		manager = worker.NewManager(consumer, wh, worker.DefaultManagerConfig())
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
	}

	// 7. Run HTTP server with graceful shutdown
	srv := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Println("[Server] Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}

	if manager != nil {
		manager.Stop()
	}

	log.Println("[Server] Stopped")
	return nil
}
