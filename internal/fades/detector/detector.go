package detector

import (
	"math"
	"sort"
	"time"
)

// GamePick é um pick de mercado elegível para análise de fade, já com a
// probabilidade de-vig do lado escolhido (0.5 quando o mercado não cotou)
type GamePick struct {
	GameID       int64
	Sport        string
	GameDate     time.Time
	CommenceTime time.Time
	HomeTeam     string
	AwayTeam     string
	Market       string // "moneyline" | "spread" | "total"
	Side         string // "HOME" | "AWAY" | "Over" | "Under"
	Confidence   int
	ModelProb    float64
}

// Split é o percentual do público em um lado de um mercado (0..100)
type Split struct {
	GameID  int64
	Market  string
	Side    string
	Percent float64
}

// Fade é um candidato ranqueado: público pesado em um lado, modelo no oposto
type Fade struct {
	GameID        int64     `json:"game_id"`
	Sport         string    `json:"sport"`
	GameDate      time.Time `json:"game_date"`
	CommenceTime  time.Time `json:"commence_time"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	Market        string    `json:"market"`
	PublicSide    string    `json:"public_side"`
	PublicPercent float64   `json:"public_percent"`
	ModelSide     string    `json:"model_side"`
	ModelProb     float64   `json:"model_prob"`
	Confidence    int       `json:"confidence"`
}

// oppositeSide mapeia cada lado para seu oposto no mesmo mercado
func oppositeSide(side string) string {
	switch side {
	case "HOME":
		return "AWAY"
	case "AWAY":
		return "HOME"
	case "Over":
		return "Under"
	case "Under":
		return "Over"
	}
	return ""
}

// Detect cruza picks do modelo com splits do público e emite os fades:
// jogos em que o lado pesado do público (>= publicThreshold) é o oposto do
// pick do modelo. Dados ausentes excluem o jogo silenciosamente.
// Puro: mesma entrada, mesma saída
func Detect(picks []GamePick, splits []Split, publicThreshold float64, minConfidence int) []Fade {
	type splitKey struct {
		gameID int64
		market string
		side   string
	}
	bySide := make(map[splitKey]float64, len(splits))
	for _, s := range splits {
		bySide[splitKey{s.GameID, s.Market, s.Side}] = s.Percent
	}

	out := make([]Fade, 0)
	for _, p := range picks {
		if p.Confidence < minConfidence {
			continue
		}
		opp := oppositeSide(p.Side)
		if opp == "" {
			continue
		}
		pct, ok := bySide[splitKey{p.GameID, p.Market, opp}]
		if !ok || pct < publicThreshold {
			continue
		}
		out = append(out, Fade{
			GameID:        p.GameID,
			Sport:         p.Sport,
			GameDate:      p.GameDate,
			CommenceTime:  p.CommenceTime,
			HomeTeam:      p.HomeTeam,
			AwayTeam:      p.AwayTeam,
			Market:        p.Market,
			PublicSide:    opp,
			PublicPercent: pct,
			ModelSide:     p.Side,
			ModelProb:     p.ModelProb,
			Confidence:    p.Confidence,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublicPercent != out[j].PublicPercent {
			return out[i].PublicPercent > out[j].PublicPercent
		}
		return math.Abs(out[i].ModelProb-0.5) > math.Abs(out[j].ModelProb-0.5)
	})
	return out
}
