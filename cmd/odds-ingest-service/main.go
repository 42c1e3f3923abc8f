package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/odds-ingest/provider"
	"github.com/radieske/sports-picks-pipeline/internal/odds-ingest/publisher"
	"github.com/radieske/sports-picks-pipeline/internal/odds-ingest/scheduler"
	"github.com/radieske/sports-picks-pipeline/internal/shared/config"
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

	// Publisher Kafka do tópico de odds brutas
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	pub := publisher.NewKafkaPublisher(brokers, cfg.TopicRawOdds, log)
	defer pub.Close()

	// Cliente do provider de odds
	client := provider.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsRegions, log)

	// Métricas Prometheus para monitoramento da ingestão
	fetched := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_ingest_events_fetched_total", Help: "eventos retornados pelo provider"}, []string{"sport"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_ingest_events_published_total", Help: "eventos publicados no Kafka"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_ingest_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(fetched, published, errorsBy)

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return nil // sem dependências síncronas de saúde além do processo
	})

	sched := &scheduler.Scheduler{
		Log:       log,
		Provider:  client,
		Publisher: pub,
		Sports:    cfg.Sports,
		Interval:  cfg.PollInterval,

		OnFetched:   func(sport string, n int) { fetched.WithLabelValues(sport).Add(float64(n)) },
		OnPublished: func() { published.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("odds-ingest started",
		zap.Strings("sports", cfg.Sports),
		zap.Duration("interval", cfg.PollInterval),
	)
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("scheduler stopped with error", zap.Error(err))
	}
	log.Info("odds-ingest stopped")
}
