package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/cache"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/consumer"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/pubsub"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/repository"
	sharedcache "github.com/radieske/sports-picks-pipeline/internal/shared/cache"
	"github.com/radieske/sports-picks-pipeline/internal/shared/config"
	"github.com/radieske/sports-picks-pipeline/internal/shared/db"
	sharedkafka "github.com/radieske/sports-picks-pipeline/internal/shared/kafka"
	"github.com/radieske/sports-picks-pipeline/internal/shared/logger"
	"github.com/radieske/sports-picks-pipeline/internal/shared/metrics"
)

const modelVersion = "baseline-v1"

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
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

	// Cache da previsão corrente por jogo e repositório de persistência
	rcache := cache.NewRedisCache(redisClient, 30*time.Minute)
	repo := repository.NewPostgresRepo(pg, cfg.UpsertBatch)

	// Consumer Kafka (consumer group picks-processor) e DLQ
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicRawOdds, "picks-processor")
	defer reader.Close()

	dlq := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRawOddsDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "picks_proc_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "picks_proc_rows_persisted_total", Help: "linhas enviadas ao upsert"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "picks_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, errorsBy)

	// Broadcaster das previsões atualizadas via Redis Pub/Sub
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	proc := &consumer.Processor{
		Log:    log,
		Reader: reader,
		Repo:   repo,
		Cache:  rcache,
		DLQ:    dlq,

		ModelVersion:     modelVersion,
		TotalDefaultSide: cfg.TotalDefaultSide,

		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func(rows int) { persisted.Add(float64(rows)) },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após a persistência, envia a previsão atualizada para o Pub/Sub
		OnAfterPersist: func(cur consumer.CurrentPrediction) {
			msg := pubsub.Update{Sport: cur.Sport, ExternalID: cur.ExternalID, Payload: cur}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("prediction broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("picks-processor started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("picks-processor stopped")
}
