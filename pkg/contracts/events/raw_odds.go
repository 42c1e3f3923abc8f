package events

import (
	"encoding/json"
	"math"
	"time"
)

// Evento publicado no tópico "raw_odds_events": um jogo com todas as
// cotações de bookmakers retornadas pelo provider em um ciclo de ingestão.
type RawOddsEvent struct {
	ExternalID   string      `json:"external_id"`
	Sport        string      `json:"sport"`     // liga interna: "nfl", "nba", ...
	SportKey     string      `json:"sport_key"` // chave do provider: "americanfootball_nfl"
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
	FetchedAt    time.Time   `json:"fetched_at"`
	Source       string      `json:"source"`   // "theoddsapi"
	CycleID      string      `json:"cycle_id"` // id do ciclo de ingestão
}

// Bookmaker agrupa os mercados publicados por uma casa de apostas
type Bookmaker struct {
	Key     string   `json:"key"`
	Markets []Market `json:"markets"`
}

// Market é um mercado de um bookmaker ("h2h", "spreads", "totals")
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome é uma seleção dentro de um mercado. Price é sempre inteiro no
// formato americano; Point só existe para spreads/totals.
type Outcome struct {
	Name  string
	Price int
	Point *float64
}

// Integrações divergem no nome dos campos numéricos (ex: "point" vs
// "spread" vs "line"). A normalização acontece uma única vez aqui, na
// fronteira de decodificação: cada campo lógico tem uma lista ordenada de
// candidatos e o primeiro presente vence.
var (
	priceKeys = []string{"price", "odds"}
	pointKeys = []string{"point", "spread", "line", "handicap"}
)

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &o.Name); err != nil {
			return err
		}
	}
	for _, k := range priceKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			o.Price = int(math.Round(f))
			break
		}
	}
	for _, k := range pointKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			o.Point = &f
			break
		}
	}
	return nil
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name  string   `json:"name"`
		Price int      `json:"price"`
		Point *float64 `json:"point,omitempty"`
	}
	return json.Marshal(wire{Name: o.Name, Price: o.Price, Point: o.Point})
}
