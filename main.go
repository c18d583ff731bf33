package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menu-photo-services/internal/config"
	"menu-photo-services/internal/db"
	httpapi "menu-photo-services/internal/http"
	"menu-photo-services/internal/http/handlers"
	"menu-photo-services/internal/logger"
	"menu-photo-services/internal/mirror"
	"menu-photo-services/internal/photoset"
	"menu-photo-services/internal/queue"
	"menu-photo-services/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, "menu-photo-service")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		pool = p
		defer pool.Close()
	} else {
		log.Info("menu item database disabled (DATABASE_URL is empty)")
	}

	var photoMirror handlers.PhotoMirror
	var mirrorer *mirror.Mirrorer
	if cfg.ObjectStoreEnabled() {
		store, err := storage.NewObjectStore(ctx, cfg.StorageConfig())
		if err != nil {
			log.Fatal("object store init failed", zap.Error(err))
		}
		// Events and requests carry the photo set's template; this is the
		// fallback for events that omit it.
		sourceTemplate := ""
		if set, err := photoset.Load(cfg.PhotoSetPath); err == nil {
			sourceTemplate = set.URLTemplate
		} else {
			log.Warn("photo set not loaded; mirror falls back to the default origin", zap.String("path", cfg.PhotoSetPath), zap.Error(err))
		}
		mirrorer = mirror.New(store, mirror.Config{
			SourceTemplate: sourceTemplate,
			Prefix:         cfg.MirrorPrefix,
			MaxSide:        cfg.MirrorMaxSide,
			ThumbSize:      cfg.MirrorThumbSize,
			Quality:        cfg.MirrorQuality,
			MaxBytes:       cfg.MaxFileSizeBytes,
			Concurrency:    cfg.MirrorConcurrency,
			Timeout:        cfg.MirrorTimeout,
		}, log)
		photoMirror = mirrorer
		log.Info("photo mirror enabled", zap.String("prefix", mirrorer.Prefix()))
	} else {
		log.Info("photo mirror disabled (object store is not configured)")
	}

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without worker", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := queue.EnsurePhotoTopology(qc); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq photo topology failed", zap.Error(err))
				}
				log.Warn("rabbitmq photo topology failed; continuing without worker", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}

		queueClient = qc
		if qc != nil {
			defer qc.Close()
		}

		if queueClient != nil && mirrorer != nil && cfg.RabbitMQWorkerMode == "daemon" {
			log.Info("photo mirror worker enabled", zap.String("queue", queue.MirrorQueue))
			go func() {
				err := queueClient.ConsumeWithRetry(ctx, queue.MirrorQueue, func(ctx context.Context, body []byte) error {
					return queue.ProcessPhotoEvent(ctx, mirrorer, body)
				}, cfg.MirrorMaxRetries, cfg.MirrorRetryDelay)
				if err != nil && ctx.Err() == nil {
					log.Error("consumer stopped", zap.Error(err))
				}
			}()
		} else {
			log.Info("photo mirror worker disabled", zap.String("mode", cfg.RabbitMQWorkerMode), zap.Bool("mirror", mirrorer != nil))
		}
	} else {
		log.Info("photo mirror worker disabled (RABBITMQ_URL is empty)")
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(pool, log, cfg, queueClient, photoMirror),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("photo admin api ready", zap.String("base", "/api/admin"))
		log.Info("photo service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelWorkers()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
