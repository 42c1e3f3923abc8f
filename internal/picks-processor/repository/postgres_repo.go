package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/model"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/snapshot"
)

// Row é a unidade de persistência de um ciclo: jogo, snapshot e previsão
type Row struct {
	ExternalID   string
	Sport        string
	Season       int
	Week         int
	GameDate     time.Time
	CommenceTime time.Time
	HomeTeam     string
	AwayTeam     string

	Snap         snapshot.Snapshot
	Picks        model.Picks
	ModelVersion string
	FetchedAt    time.Time
}

// PostgresRepo implementa a persistência idempotente de jogos, snapshots e
// previsões. Toda escrita é upsert pela chave natural; um ciclo com falha
// nunca apaga dados já armazenados.
type PostgresRepo struct {
	DB        *sql.DB
	BatchSize int
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB, batchSize int) *PostgresRepo {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &PostgresRepo{DB: db, BatchSize: batchSize}
}

// UpsertBatch grava as linhas em lotes de BatchSize. Cada lote é uma
// transação independente: a falha do lote N não desfaz os lotes 1..N-1.
// Retorna os índices dos lotes que falharam e o último erro observado.
func (r *PostgresRepo) UpsertBatch(ctx context.Context, rows []Row) (failed []int, err error) {
	var lastErr error
	for bi := 0; bi*r.BatchSize < len(rows); bi++ {
		lo := bi * r.BatchSize
		hi := lo + r.BatchSize
		if hi > len(rows) {
			hi = len(rows)
		}
		if cerr := r.upsertChunk(ctx, rows[lo:hi]); cerr != nil {
			failed = append(failed, bi)
			lastErr = cerr
		}
	}
	if len(failed) > 0 {
		return failed, fmt.Errorf("%d batch(es) failed, last: %w", len(failed), lastErr)
	}
	return nil, nil
}

// upsertChunk executa um lote dentro de uma única transação
func (r *PostgresRepo) upsertChunk(ctx context.Context, rows []Row) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		gameID, err := upsertGame(ctx, tx, row)
		if err != nil {
			return fmt.Errorf("upsert game %s/%s: %w", row.Sport, row.ExternalID, err)
		}
		if row.Snap.Sportsbook != "" {
			if err := upsertSnapshot(ctx, tx, gameID, row); err != nil {
				return fmt.Errorf("upsert snapshot %s/%s: %w", row.Sport, row.ExternalID, err)
			}
		}
		if err := upsertPrediction(ctx, tx, gameID, row); err != nil {
			return fmt.Errorf("upsert prediction %s/%s: %w", row.Sport, row.ExternalID, err)
		}
	}

	return tx.Commit()
}

// upsertGame insere ou atualiza o jogo pela chave natural (external_id, sport)
func upsertGame(ctx context.Context, tx *sql.Tx, row Row) (int64, error) {
	const q = `
		INSERT INTO games
		  (external_id, sport, season, week, game_date, commence_time, home_team, away_team, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (external_id, sport) DO UPDATE SET
		  season        = EXCLUDED.season,
		  week          = EXCLUDED.week,
		  game_date     = EXCLUDED.game_date,
		  commence_time = EXCLUDED.commence_time,
		  home_team     = EXCLUDED.home_team,
		  away_team     = EXCLUDED.away_team,
		  updated_at    = now()
		RETURNING id
	`
	var id int64
	err := tx.QueryRowContext(ctx, q,
		row.ExternalID, row.Sport, row.Season, row.Week,
		row.GameDate, row.CommenceTime, row.HomeTeam, row.AwayTeam,
	).Scan(&id)
	return id, err
}

// upsertSnapshot insere ou atualiza o snapshot canônico por (game_id, sportsbook)
func upsertSnapshot(ctx context.Context, tx *sql.Tx, gameID int64, row Row) error {
	const q = `
		INSERT INTO odds_snapshots
		  (game_id, sportsbook, moneyline_home, moneyline_away,
		   spread_line, spread_price_home, spread_price_away,
		   total_line, total_over_price, total_under_price, captured_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (game_id, sportsbook) DO UPDATE SET
		  moneyline_home    = EXCLUDED.moneyline_home,
		  moneyline_away    = EXCLUDED.moneyline_away,
		  spread_line       = EXCLUDED.spread_line,
		  spread_price_home = EXCLUDED.spread_price_home,
		  spread_price_away = EXCLUDED.spread_price_away,
		  total_line        = EXCLUDED.total_line,
		  total_over_price  = EXCLUDED.total_over_price,
		  total_under_price = EXCLUDED.total_under_price,
		  captured_at       = EXCLUDED.captured_at
	`
	s := row.Snap
	_, err := tx.ExecContext(ctx, q,
		gameID, s.Sportsbook,
		s.MoneylineHome, s.MoneylineAway,
		s.SpreadLine, s.SpreadPriceHome, s.SpreadPriceAway,
		s.TotalLine, s.TotalOverPrice, s.TotalUnderPrice,
		row.FetchedAt,
	)
	return err
}

// upsertPrediction insere ou atualiza a previsão por (game_id, model_version).
// Previsões já liquidadas são imutáveis: o DO UPDATE só aplica enquanto
// settled_at for nulo, preservando os campos de grading.
func upsertPrediction(ctx context.Context, tx *sql.Tx, gameID int64, row Row) error {
	const q = `
		INSERT INTO predictions
		  (game_id, model_version, pick_moneyline, pick_spread, pick_total,
		   conf_moneyline, conf_spread, conf_total, model_confidence,
		   predicted_winner, source_tag, rationale, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		ON CONFLICT (game_id, model_version) DO UPDATE SET
		  pick_moneyline   = EXCLUDED.pick_moneyline,
		  pick_spread      = EXCLUDED.pick_spread,
		  pick_total       = EXCLUDED.pick_total,
		  conf_moneyline   = EXCLUDED.conf_moneyline,
		  conf_spread      = EXCLUDED.conf_spread,
		  conf_total       = EXCLUDED.conf_total,
		  model_confidence = EXCLUDED.model_confidence,
		  predicted_winner = EXCLUDED.predicted_winner,
		  source_tag       = EXCLUDED.source_tag,
		  rationale        = EXCLUDED.rationale,
		  updated_at       = now()
		WHERE predictions.settled_at IS NULL
	`
	p := row.Picks
	_, err := tx.ExecContext(ctx, q,
		gameID, row.ModelVersion,
		p.PickMoneyline, p.PickSpread, p.PickTotal,
		p.ConfMoneyline, p.ConfSpread, p.ConfTotal, p.ModelConfidence,
		p.PredictedWinner, p.SourceTag, p.Rationale,
	)
	return err
}
