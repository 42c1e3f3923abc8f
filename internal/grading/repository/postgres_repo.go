package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/snapshot"
)

// ErrNotFound indica que nenhuma previsão corresponde às chaves do jogo
var ErrNotFound = errors.New("prediction not found")

// Prediction é a projeção mínima de uma previsão necessária para o grading
type Prediction struct {
	ID            int64
	GameID        int64
	Sport         string
	GameDate      time.Time
	HomeTeam      string
	AwayTeam      string
	PickMoneyline string
	PickSpread    *string
	PickTotal     *string
	Settled       bool
}

// Result é o resultado liquidado a ser gravado na previsão
type Result struct {
	PredictionID    int64
	HomeScore       int
	AwayScore       int
	ResultMoneyline string
	ResultSpread    *string
	ResultTotal     *string
	Grade           float64
}

// PostgresRepo lê previsões pendentes e grava resultados de grading
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo cria o repositório de grading
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

const predictionColumns = `
	p.id, p.game_id, g.sport, g.game_date, g.home_team, g.away_team,
	p.pick_moneyline, p.pick_spread, p.pick_total, p.settled_at IS NOT NULL`

// FindByKeys localiza a previsão de um jogo por esporte, data e times.
// Nomes de times são comparados de forma normalizada para tolerar
// divergências de caixa e pontuação entre o feed e o armazenado
func (r *PostgresRepo) FindByKeys(ctx context.Context, sport string, gameDate time.Time, homeTeam, awayTeam string) (*Prediction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		WHERE g.sport = $1 AND g.game_date = $2`,
		sport, gameDate,
	)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	wantHome := snapshot.NormalizeTeam(homeTeam)
	wantAway := snapshot.NormalizeTeam(awayTeam)

	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		if snapshot.NormalizeTeam(p.HomeTeam) == wantHome && snapshot.NormalizeTeam(p.AwayTeam) == wantAway {
			return p, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// FindByExternalID localiza a previsão pelo id do jogo no provider
func (r *PostgresRepo) FindByExternalID(ctx context.Context, sport, externalID string) (*Prediction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		WHERE g.sport = $1 AND g.external_id = $2`,
		sport, externalID,
	)
	if err != nil {
		return nil, fmt.Errorf("query prediction by external id: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return scanPrediction(rows)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// SaveResult grava o resultado liquidado. Re-grading sobrescreve de forma
// determinística: mesmos placares produzem o mesmo registro final
func (r *PostgresRepo) SaveResult(ctx context.Context, res Result) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE predictions SET
			home_score       = $2,
			away_score       = $3,
			result_moneyline = $4,
			result_spread    = $5,
			result_total     = $6,
			grade            = $7,
			settled_at       = now(),
			updated_at       = now()
		WHERE id = $1`,
		res.PredictionID,
		res.HomeScore,
		res.AwayScore,
		res.ResultMoneyline,
		res.ResultSpread,
		res.ResultTotal,
		res.Grade,
	)
	if err != nil {
		return fmt.Errorf("update prediction result: %w", err)
	}
	return nil
}

func scanPrediction(rows *sql.Rows) (*Prediction, error) {
	var p Prediction
	if err := rows.Scan(
		&p.ID, &p.GameID, &p.Sport, &p.GameDate, &p.HomeTeam, &p.AwayTeam,
		&p.PickMoneyline, &p.PickSpread, &p.PickTotal, &p.Settled,
	); err != nil {
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return &p, nil
}
