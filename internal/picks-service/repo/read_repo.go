package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PredictionView é a projeção de leitura de uma previsão: identidade do
// jogo, snapshot de odds, picks do modelo e resultado (quando liquidado)
type PredictionView struct {
	ExternalID   string    `json:"external_id"`
	Sport        string    `json:"sport"`
	Season       int       `json:"season"`
	Week         int       `json:"week"`
	GameDate     time.Time `json:"game_date"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`

	Sportsbook      *string  `json:"sportsbook,omitempty"`
	MoneylineHome   *int     `json:"moneyline_home,omitempty"`
	MoneylineAway   *int     `json:"moneyline_away,omitempty"`
	SpreadLine      *float64 `json:"spread_line,omitempty"`
	SpreadPriceHome *int     `json:"spread_price_home,omitempty"`
	SpreadPriceAway *int     `json:"spread_price_away,omitempty"`
	TotalLine       *float64 `json:"total_line,omitempty"`
	TotalOverPrice  *int     `json:"total_over_price,omitempty"`
	TotalUnderPrice *int     `json:"total_under_price,omitempty"`

	PickMoneyline   string  `json:"pick_moneyline"`
	PickSpread      *string `json:"pick_spread,omitempty"`
	PickTotal       *string `json:"pick_total,omitempty"`
	ConfMoneyline   int     `json:"conf_moneyline"`
	ConfSpread      *int    `json:"conf_spread,omitempty"`
	ConfTotal       *int    `json:"conf_total,omitempty"`
	ModelConfidence int     `json:"model_confidence"`
	PredictedWinner string  `json:"predicted_winner"`
	SourceTag       string  `json:"source_tag"`
	Rationale       *string `json:"rationale,omitempty"`

	HomeScore       *int       `json:"home_score,omitempty"`
	AwayScore       *int       `json:"away_score,omitempty"`
	ResultMoneyline *string    `json:"result_moneyline,omitempty"`
	ResultSpread    *string    `json:"result_spread,omitempty"`
	ResultTotal     *string    `json:"result_total,omitempty"`
	Grade           *float64   `json:"grade,omitempty"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

// ReadRepo acessa o Postgres em modo somente leitura
type ReadRepo struct {
	DB *sql.DB
}

// NewReadRepo cria o repositório de leitura
func NewReadRepo(db *sql.DB) *ReadRepo {
	return &ReadRepo{DB: db}
}

// ListPredictions retorna as previsões de uma liga a partir de ontem (UTC),
// ordenadas por horário de início. Jogos liquidados trazem o resultado
func (r *ReadRepo) ListPredictions(ctx context.Context, sport string) ([]PredictionView, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT g.external_id, g.sport, g.season, g.week, g.game_date, g.commence_time,
		       g.home_team, g.away_team,
		       s.sportsbook, s.moneyline_home, s.moneyline_away,
		       s.spread_line, s.spread_price_home, s.spread_price_away,
		       s.total_line, s.total_over_price, s.total_under_price,
		       p.pick_moneyline, p.pick_spread, p.pick_total,
		       p.conf_moneyline, p.conf_spread, p.conf_total,
		       p.model_confidence, p.predicted_winner, p.source_tag, p.rationale,
		       p.home_score, p.away_score,
		       p.result_moneyline, p.result_spread, p.result_total,
		       p.grade, p.settled_at
		FROM predictions p
		JOIN games g ON g.id = p.game_id
		LEFT JOIN odds_snapshots s ON s.game_id = g.id
		WHERE g.sport = $1 AND g.game_date >= current_date - 1
		ORDER BY g.commence_time`,
		sport,
	)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionView
	for rows.Next() {
		var v PredictionView
		if err := rows.Scan(
			&v.ExternalID, &v.Sport, &v.Season, &v.Week, &v.GameDate, &v.CommenceTime,
			&v.HomeTeam, &v.AwayTeam,
			&v.Sportsbook, &v.MoneylineHome, &v.MoneylineAway,
			&v.SpreadLine, &v.SpreadPriceHome, &v.SpreadPriceAway,
			&v.TotalLine, &v.TotalOverPrice, &v.TotalUnderPrice,
			&v.PickMoneyline, &v.PickSpread, &v.PickTotal,
			&v.ConfMoneyline, &v.ConfSpread, &v.ConfTotal,
			&v.ModelConfidence, &v.PredictedWinner, &v.SourceTag, &v.Rationale,
			&v.HomeScore, &v.AwayScore,
			&v.ResultMoneyline, &v.ResultSpread, &v.ResultTotal,
			&v.Grade, &v.SettledAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
