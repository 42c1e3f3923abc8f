package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/grading/repository"
	"github.com/radieske/sports-picks-pipeline/internal/grading/worker"
	"github.com/radieske/sports-picks-pipeline/internal/odds-ingest/provider"
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

	client := provider.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsRegions, log)
	repo := repository.NewPostgresRepo(pg)

	// Métricas Prometheus para monitoramento do grading
	graded := prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_predictions_settled_total", Help: "previsões liquidadas"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_games_skipped_total", Help: "jogos sem previsão correspondente"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "grading_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(graded, skipped, errorsBy)

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	w := &worker.Worker{
		Log:      log,
		Provider: client,
		Repo:     repo,

		Sports:   cfg.Sports,
		Interval: cfg.GradeInterval,
		DaysFrom: cfg.ScoresDaysFrom,

		OnGraded:  func() { graded.Inc() },
		OnSkipped: func() { skipped.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("grading-worker started",
		zap.Strings("sports", cfg.Sports),
		zap.Duration("interval", cfg.GradeInterval),
	)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("grading worker stopped with error", zap.Error(err))
	}
	log.Info("grading-worker stopped")
}
