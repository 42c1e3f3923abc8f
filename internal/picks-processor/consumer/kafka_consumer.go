package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/cache"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/model"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/repository"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/snapshot"
	"github.com/radieske/sports-picks-pipeline/pkg/contracts/events"
)

// CurrentPrediction é o payload cacheado e difundido após a persistência
type CurrentPrediction struct {
	Sport        string            `json:"sport"`
	ExternalID   string            `json:"external_id"`
	HomeTeam     string            `json:"home_team"`
	AwayTeam     string            `json:"away_team"`
	CommenceTime time.Time         `json:"commence_time"`
	Snapshot     snapshot.Snapshot `json:"snapshot"`
	Picks        model.Picks       `json:"picks"`
	ModelVersion string            `json:"model_version"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Processor consome eventos brutos de odds do Kafka, reduz ao snapshot
// canônico, gera os picks e persiste em lotes no Postgres.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional; recebe mensagens indecodificáveis

	ModelVersion     string
	TotalDefaultSide string
	FlushInterval    time.Duration // idade máxima do lote antes do flush

	OnConsumed     func()                  // métricas (counter++)
	OnPersist      func(rows int)          // métricas
	OnError        func(string)            // métricas por fase
	OnAfterPersist func(CurrentPrediction) // broadcast pós-persistência
}

// Run inicia o loop principal de consumo. Mensagens são acumuladas em um
// buffer e persistidas quando o lote enche ou o FlushInterval expira.
func (p *Processor) Run(ctx context.Context) error {
	flushEvery := p.FlushInterval
	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}

	buf := make([]repository.Row, 0, p.Repo.BatchSize)

	for {
		readCtx, cancel := context.WithTimeout(ctx, flushEvery)
		m, err := p.Reader.ReadMessage(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				p.flush(context.Background(), &buf) // drena o lote antes de encerrar
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				p.flush(ctx, &buf)
				continue
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.RawOddsEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.sendToDLQ(ctx, m)
			continue
		}

		buf = append(buf, p.buildRow(ev))
		if len(buf) >= p.Repo.BatchSize {
			p.flush(ctx, &buf)
		}
	}
}

// buildRow transforma um evento bruto na linha canônica de persistência
func (p *Processor) buildRow(ev events.RawOddsEvent) repository.Row {
	snap := snapshot.Build(ev)
	picks := model.Generate(snap, ev.HomeTeam, ev.AwayTeam, model.Options{
		TotalDefaultSide: p.TotalDefaultSide,
	})

	commence := ev.CommenceTime.UTC()
	return repository.Row{
		ExternalID:   ev.ExternalID,
		Sport:        ev.Sport,
		Season:       seasonFor(ev.Sport, commence),
		Week:         weekFor(ev.Sport, commence),
		GameDate:     commence.Truncate(24 * time.Hour),
		CommenceTime: commence,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		Snap:         snap,
		Picks:        picks,
		ModelVersion: p.ModelVersion,
		FetchedAt:    ev.FetchedAt,
	}
}

// flush persiste o lote acumulado e atualiza cache/broadcast por jogo.
// Falha de cache não bloqueia: o Postgres é a fonte de verdade.
func (p *Processor) flush(ctx context.Context, buf *[]repository.Row) {
	rows := *buf
	if len(rows) == 0 {
		return
	}
	*buf = (*buf)[:0]

	failed, err := p.Repo.UpsertBatch(ctx, rows)
	if err != nil {
		p.Log.Warn("db upsert batch failed",
			zap.Ints("failed_batches", failed),
			zap.Int("rows", len(rows)),
			zap.Error(err),
		)
		if p.OnError != nil {
			p.OnError("db_upsert")
		}
	}
	if p.OnPersist != nil {
		p.OnPersist(len(rows))
	}

	for _, row := range rows {
		cur := CurrentPrediction{
			Sport:        row.Sport,
			ExternalID:   row.ExternalID,
			HomeTeam:     row.HomeTeam,
			AwayTeam:     row.AwayTeam,
			CommenceTime: row.CommenceTime,
			Snapshot:     row.Snap,
			Picks:        row.Picks,
			ModelVersion: row.ModelVersion,
			UpdatedAt:    time.Now().UTC(),
		}
		if p.Cache != nil {
			if err := p.Cache.SetCurrent(ctx, row.Sport, row.ExternalID, cur); err != nil {
				p.Log.Warn("redis set failed", zap.Error(err))
				if p.OnError != nil {
					p.OnError("cache")
				}
			}
		}
		if p.OnAfterPersist != nil {
			p.OnAfterPersist(cur)
		}
	}
}

// sendToDLQ encaminha a mensagem original para a fila de descarte
func (p *Processor) sendToDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	dlqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.DLQ.WriteMessages(dlqCtx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq publish failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
