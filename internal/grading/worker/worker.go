package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/grading/repository"
	"github.com/radieske/sports-picks-pipeline/internal/grading/service"
	"github.com/radieske/sports-picks-pipeline/internal/odds-ingest/provider"
)

// ScoresProvider abstrai a busca de placares no provider externo
type ScoresProvider interface {
	GetScores(ctx context.Context, sport string, daysFrom int) ([]provider.ScoreEvent, error)
}

// Worker executa ciclos periódicos de grading: busca placares finais no
// provider e liquida as previsões correspondentes por external_id.
// Callbacks de métricas podem ser usadas para monitoramento
type Worker struct {
	Log      *zap.Logger
	Provider ScoresProvider
	Repo     *repository.PostgresRepo

	Sports   []string
	Interval time.Duration
	DaysFrom int

	OnGraded  func()       // métricas (counter++)
	OnSkipped func()       // jogos sem previsão correspondente
	OnError   func(string) // métricas por fase
}

// Run inicia o loop de grading. O primeiro ciclo roda imediatamente; os
// demais seguem o intervalo configurado até o contexto ser cancelado
func (w *Worker) Run(ctx context.Context) error {
	w.runCycle(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("grading worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle processa todas as ligas sequencialmente. Falha em uma liga não
// bloqueia as demais; o ciclo é cancelável entre ligas
func (w *Worker) runCycle(ctx context.Context) {
	start := time.Now()
	graded, skipped := 0, 0

	for _, sport := range w.Sports {
		if ctx.Err() != nil {
			return
		}
		g, s := w.gradeSport(ctx, sport)
		graded += g
		skipped += s
	}

	w.Log.Info("grading cycle finished",
		zap.Int("graded", graded),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (w *Worker) gradeSport(ctx context.Context, sport string) (graded, skipped int) {
	scores, err := w.Provider.GetScores(ctx, sport, w.DaysFrom)
	if err != nil {
		w.Log.Warn("scores fetch failed", zap.String("sport", sport), zap.Error(err))
		if w.OnError != nil {
			w.OnError("provider")
		}
		return 0, 0
	}

	for _, sc := range scores {
		if !sc.Completed {
			continue
		}

		pred, err := w.Repo.FindByExternalID(ctx, sport, sc.ExternalID)
		if errors.Is(err, repository.ErrNotFound) {
			// jogo sem previsão armazenada: ignorado, nunca erro
			skipped++
			if w.OnSkipped != nil {
				w.OnSkipped()
			}
			continue
		}
		if err != nil {
			w.Log.Warn("prediction lookup failed",
				zap.String("sport", sport),
				zap.String("external_id", sc.ExternalID),
				zap.Error(err),
			)
			if w.OnError != nil {
				w.OnError("db_lookup")
			}
			continue
		}

		result := service.Settle(pred, sc.HomeScore, sc.AwayScore, nil, nil)
		if err := w.Repo.SaveResult(ctx, result); err != nil {
			w.Log.Warn("result save failed", zap.Int64("prediction_id", pred.ID), zap.Error(err))
			if w.OnError != nil {
				w.OnError("db_save")
			}
			continue
		}

		graded++
		if w.OnGraded != nil {
			w.OnGraded()
		}
	}
	return graded, skipped
}
