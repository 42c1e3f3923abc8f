package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/sports-picks-pipeline/internal/fades/detector"
	"github.com/radieske/sports-picks-pipeline/internal/grading/engine"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/probability"
)

// SplitInput é um split de público submetido via endpoint administrativo.
// Percent aceita fração (0..1) ou percentual (0..100); é normalizado na
// persistência para fração
type SplitInput struct {
	Sport      string  `json:"sport"`
	ExternalID string  `json:"external_id"`
	Market     string  `json:"market"` // "moneyline" | "spread" | "total"
	Side       string  `json:"side"`   // "HOME" | "AWAY" | "Over" | "Under"
	Percent    float64 `json:"percent"`
}

// PostgresRepo lê picks confiantes e splits do público para o detector
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo cria o repositório de fades
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// FindPicks retorna os picks por mercado dos jogos da janela (days para
// trás e para frente da data atual), com a probabilidade de-vig do lado
// escolhido recomputada a partir do snapshot de odds
func (r *PostgresRepo) FindPicks(ctx context.Context, league string, days int, minConfidence int) ([]detector.GamePick, error) {
	query := `
		SELECT g.id, g.sport, g.game_date, g.commence_time, g.home_team, g.away_team,
		       p.pick_moneyline, p.pick_spread, p.pick_total,
		       p.conf_moneyline, p.conf_spread, p.conf_total,
		       s.moneyline_home, s.moneyline_away,
		       s.spread_price_home, s.spread_price_away,
		       s.total_over_price, s.total_under_price
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		LEFT JOIN odds_snapshots s ON s.game_id = g.id
		WHERE p.model_confidence >= $1
		  AND g.game_date BETWEEN $2 AND $3`
	args := []any{minConfidence, dateOnly(time.Now().UTC().AddDate(0, 0, -days)), dateOnly(time.Now().UTC().AddDate(0, 0, days))}
	if league != "" && league != "all" {
		query += ` AND g.sport = $4`
		args = append(args, league)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fade picks: %w", err)
	}
	defer rows.Close()

	var out []detector.GamePick
	for rows.Next() {
		var (
			gameID                 int64
			sport                  string
			gameDate, commence     time.Time
			homeTeam, awayTeam     string
			pickML                 string
			pickSpread, pickTotal  *string
			confML                 int
			confSpread, confTotal  *int
			mlHome, mlAway         *int
			spHome, spAway         *int
			totOver, totUnder      *int
		)
		if err := rows.Scan(
			&gameID, &sport, &gameDate, &commence, &homeTeam, &awayTeam,
			&pickML, &pickSpread, &pickTotal,
			&confML, &confSpread, &confTotal,
			&mlHome, &mlAway, &spHome, &spAway, &totOver, &totUnder,
		); err != nil {
			return nil, fmt.Errorf("scan fade pick: %w", err)
		}

		base := detector.GamePick{
			GameID:       gameID,
			Sport:        sport,
			GameDate:     gameDate,
			CommenceTime: commence,
			HomeTeam:     homeTeam,
			AwayTeam:     awayTeam,
		}

		ml := base
		ml.Market = "moneyline"
		ml.Side = pickML
		ml.Confidence = confML
		ml.ModelProb = sideProb(pickML, "HOME", mlHome, mlAway)
		out = append(out, ml)

		if pickSpread != nil && confSpread != nil {
			side, _, _ := engine.ParsePick(*pickSpread)
			sp := base
			sp.Market = "spread"
			sp.Side = side
			sp.Confidence = *confSpread
			sp.ModelProb = sideProb(side, "HOME", spHome, spAway)
			out = append(out, sp)
		}

		if pickTotal != nil && confTotal != nil {
			side, _, _ := engine.ParsePick(*pickTotal)
			tot := base
			tot.Market = "total"
			tot.Side = side
			tot.Confidence = *confTotal
			tot.ModelProb = sideProb(side, "Over", totOver, totUnder)
			out = append(out, tot)
		}
	}
	return out, rows.Err()
}

// FindSplits retorna os splits do público da mesma janela, com percentual
// escalado para 0..100 (unidade usada pelos thresholds do detector)
func (r *PostgresRepo) FindSplits(ctx context.Context, league string, days int) ([]detector.Split, error) {
	query := `
		SELECT ps.game_id, ps.market, ps.side, ps.percent
		FROM public_splits ps
		JOIN games g ON g.id = ps.game_id
		WHERE g.game_date BETWEEN $1 AND $2`
	args := []any{dateOnly(time.Now().UTC().AddDate(0, 0, -days)), dateOnly(time.Now().UTC().AddDate(0, 0, days))}
	if league != "" && league != "all" {
		query += ` AND g.sport = $3`
		args = append(args, league)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	var out []detector.Split
	for rows.Next() {
		var s detector.Split
		if err := rows.Scan(&s.GameID, &s.Market, &s.Side, &s.Percent); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		s.Percent *= 100
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertSplits grava splits do público por jogo. Itens cujo jogo não existe
// são reportados individualmente sem abortar o lote
func (r *PostgresRepo) UpsertSplits(ctx context.Context, items []SplitInput) (failed []int, err error) {
	var lastErr error
	for i, item := range items {
		pct := item.Percent
		if pct > 1 {
			pct /= 100
		}

		var gameID int64
		err := r.DB.QueryRowContext(ctx,
			`SELECT id FROM games WHERE external_id = $1 AND sport = $2`,
			item.ExternalID, item.Sport,
		).Scan(&gameID)
		if err != nil {
			failed = append(failed, i)
			lastErr = fmt.Errorf("game %s/%s: %w", item.Sport, item.ExternalID, err)
			continue
		}

		_, err = r.DB.ExecContext(ctx, `
			INSERT INTO public_splits (game_id, market, side, percent, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (game_id, market, side)
			DO UPDATE SET percent = EXCLUDED.percent, updated_at = now()`,
			gameID, item.Market, item.Side, pct,
		)
		if err != nil {
			failed = append(failed, i)
			lastErr = fmt.Errorf("upsert split %s/%s: %w", item.Sport, item.ExternalID, err)
		}
	}
	return failed, lastErr
}

// sideProb recomputa a probabilidade de-vig do lado escolhido a partir do
// par de preços do mercado; 0.5 quando o par não está disponível
func sideProb(side, firstSide string, priceFirst, priceSecond *int) float64 {
	pFirst := probability.ImpliedPtr(priceFirst)
	pSecond := probability.ImpliedPtr(priceSecond)
	dFirst, dSecond := probability.DeVig(pFirst, pSecond)
	if dFirst == nil || dSecond == nil {
		return 0.5
	}
	if side == firstSide {
		return *dFirst
	}
	return *dSecond
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
