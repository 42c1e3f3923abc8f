package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/pkg/contracts/events"
)

// OddsProvider abstrai a busca de odds no provider externo
type OddsProvider interface {
	GetOdds(ctx context.Context, sport string) ([]events.RawOddsEvent, error)
}

// EventPublisher abstrai a publicação dos eventos brutos no broker
type EventPublisher interface {
	Publish(ctx context.Context, e events.RawOddsEvent) error
}

// Scheduler executa ciclos periódicos de ingestão de odds.
// As ligas são processadas em sequência (o rate limit do provider torna
// chamadas seriais o padrão seguro); entre uma liga e outra há um
// checkpoint de cancelamento cooperativo.
type Scheduler struct {
	Log       *zap.Logger
	Provider  OddsProvider
	Publisher EventPublisher
	Sports    []string
	Interval  time.Duration

	OnFetched   func(sport string, n int) // métricas (eventos retornados por liga)
	OnPublished func()                    // métricas
	OnError     func(stage string)        // métricas por fase
}

// Run dispara um ciclo imediatamente e depois a cada Interval, até o
// contexto ser cancelado.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle busca e publica as odds de todas as ligas configuradas.
// A falha de uma liga não bloqueia as demais: loga, conta e segue.
func (s *Scheduler) runCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	started := time.Now()

	for _, sport := range s.Sports {
		// Checkpoint de cancelamento entre ligas
		if ctx.Err() != nil {
			return
		}

		evs, err := s.Provider.GetOdds(ctx, sport)
		if err != nil {
			s.Log.Warn("fetch odds failed",
				zap.String("sport", sport),
				zap.String("cycle_id", cycleID),
				zap.Error(err),
			)
			if s.OnError != nil {
				s.OnError("fetch")
			}
			continue
		}
		if s.OnFetched != nil {
			s.OnFetched(sport, len(evs))
		}

		for _, ev := range evs {
			ev.CycleID = cycleID
			if err := s.Publisher.Publish(ctx, ev); err != nil {
				if s.OnError != nil {
					s.OnError("publish")
				}
				continue
			}
			if s.OnPublished != nil {
				s.OnPublished()
			}
		}

		s.Log.Info("sport ingested",
			zap.String("sport", sport),
			zap.Int("events", len(evs)),
			zap.String("cycle_id", cycleID),
		)
	}

	s.Log.Info("ingestion cycle finished",
		zap.String("cycle_id", cycleID),
		zap.Duration("elapsed", time.Since(started)),
	)
}
