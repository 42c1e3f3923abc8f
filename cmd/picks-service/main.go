package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	fadesrepo "github.com/radieske/sports-picks-pipeline/internal/fades/repository"
	gradingrepo "github.com/radieske/sports-picks-pipeline/internal/grading/repository"
	gradingservice "github.com/radieske/sports-picks-pipeline/internal/grading/service"
	"github.com/radieske/sports-picks-pipeline/internal/picks-service/cache"
	httpapi "github.com/radieske/sports-picks-pipeline/internal/picks-service/http"
	"github.com/radieske/sports-picks-pipeline/internal/picks-service/repo"
	sharedcache "github.com/radieske/sports-picks-pipeline/internal/shared/cache"
	"github.com/radieske/sports-picks-pipeline/internal/shared/config"
	"github.com/radieske/sports-picks-pipeline/internal/shared/db"
	"github.com/radieske/sports-picks-pipeline/internal/shared/logger"
	"github.com/radieske/sports-picks-pipeline/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	grading := gradingservice.NewService(log, gradingrepo.NewPostgresRepo(pg))

	api := &httpapi.API{
		ReadRepo: repo.NewReadRepo(pg),
		Cache:    cache.New(redisClient),
		Fades:    fadesrepo.NewPostgresRepo(pg),
		Grading:  grading,

		AdminToken: cfg.AdminToken,
		Defaults: httpapi.FadeDefaults{
			Days:            7,
			PublicThreshold: cfg.FadePublicThreshold,
			MinConfidence:   cfg.FadeMinConfidence,
		},
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("picks-service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("picks-service stopped")
}
