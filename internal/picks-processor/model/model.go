package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/probability"
	"github.com/radieske/sports-picks-pipeline/internal/picks-processor/snapshot"
)

// Tags de origem do dado de mercado que sustentou a previsão
const (
	SourceFull    = "full"     // moneyline, spread e total presentes
	SourcePartial = "partial"  // pelo menos um mercado ausente
	SourceNoLines = "no_lines" // nenhum mercado cotado
)

const (
	SideHome  = "HOME"
	SideAway  = "AWAY"
	SideOver  = "Over"
	SideUnder = "Under"
)

// Picks é a saída do modelo baseline para um jogo: um palpite e uma
// confiança por mercado, degradando de forma independente por mercado.
type Picks struct {
	PickMoneyline   string  // "HOME" | "AWAY" (sempre presente, com fallback documentado)
	PickSpread      *string // ex: "HOME -3.5"; nil sem linha de spread
	PickTotal       *string // ex: "Under 44.5"; nil sem linha de total
	ConfMoneyline   int
	ConfSpread      *int
	ConfTotal       *int
	ModelConfidence int // máximo das confianças por mercado, piso 55
	PredictedWinner string
	SourceTag       string
	Rationale       string
}

// Options parametriza o modelo; o lado padrão do total sem preços é uma
// escolha de produto configurável, não uma exigência do algoritmo.
type Options struct {
	TotalDefaultSide string // "Under" (conservador) ou "Over"
}

// Generate produz os picks de um jogo a partir do snapshot canônico.
// Puro: mesma entrada, mesma saída; não acessa I/O.
func Generate(snap snapshot.Snapshot, homeTeam, awayTeam string, opts Options) Picks {
	var p Picks

	mlConf, mlSide, mlNote := moneylinePick(snap)
	p.PickMoneyline = mlSide
	p.ConfMoneyline = mlConf

	if mlSide == SideHome {
		p.PredictedWinner = homeTeam
	} else {
		p.PredictedWinner = awayTeam
	}

	spNote := "no spread line"
	if snap.SpreadLine != nil {
		pick, conf := spreadPick(snap)
		p.PickSpread = &pick
		p.ConfSpread = &conf
		spNote = fmt.Sprintf("spread line %s", formatSigned(*snap.SpreadLine))
	}

	totNote := "no total line"
	if snap.TotalLine != nil {
		pick, conf := totalPick(snap, opts)
		p.PickTotal = &pick
		p.ConfTotal = &conf
		totNote = fmt.Sprintf("total %s", formatLine(*snap.TotalLine))
	}

	p.SourceTag = sourceTag(snap)
	p.ModelConfidence = modelConfidence(p)
	p.Rationale = fmt.Sprintf("Market-implied baseline (%s book). Moneyline: %s. Spread: %s. Total: %s.",
		bookLabel(snap.Sportsbook), mlNote, spNote, totNote)
	return p
}

// moneylinePick decide o lado do moneyline em ordem de prioridade de dado:
// par de preços → de-vig; só linha de spread → sinal da linha; nada →
// mandante com confiança 55 (fallback documentado de baixa informação).
func moneylinePick(snap snapshot.Snapshot) (conf int, side, note string) {
	pHome := probability.ImpliedPtr(snap.MoneylineHome)
	pAway := probability.ImpliedPtr(snap.MoneylineAway)

	if dHome, dAway := probability.DeVig(pHome, pAway); dHome != nil && dAway != nil && pHome != nil && pAway != nil {
		side = SideHome
		maxProb := *dHome
		if *dAway > *dHome {
			side = SideAway
			maxProb = *dAway
		}
		edge := math.Abs(*dHome - *dAway)
		conf = clamp(50+12*(maxProb-0.5)+10*edge, 52, 68)
		note = fmt.Sprintf("de-vig favors %s (%.1f%%)", side, maxProb*100)
		return conf, side, note
	}

	if snap.SpreadLine != nil {
		line := *snap.SpreadLine
		side = SideAway
		if line <= 0 {
			side = SideHome
		}
		conf = clamp(52+1.2*math.Min(10, math.Abs(line)), 52, 64)
		note = fmt.Sprintf("spread sign favors %s", side)
		return conf, side, note
	}

	return 55, SideHome, "no prices; home fallback"
}

// spreadPick escolhe o lado do spread: sinal da linha por padrão, preço
// com maior probabilidade implícita quando ambos os lados estão cotados.
func spreadPick(snap snapshot.Snapshot) (pick string, conf int) {
	line := *snap.SpreadLine
	side := SideAway
	if line <= 0 {
		side = SideHome
	}

	pHome := probability.ImpliedPtr(snap.SpreadPriceHome)
	pAway := probability.ImpliedPtr(snap.SpreadPriceAway)
	maxPriceProb := 0.5
	if pHome != nil && pAway != nil {
		if *pHome >= *pAway {
			side = SideHome
			maxPriceProb = *pHome
		} else {
			side = SideAway
			maxPriceProb = *pAway
		}
	} else if side == SideHome && pHome != nil {
		maxPriceProb = *pHome
	} else if side == SideAway && pAway != nil {
		maxPriceProb = *pAway
	}

	chosenLine := line
	if side == SideAway {
		chosenLine = -line
	}
	pick = fmt.Sprintf("%s %s", side, formatSigned(chosenLine))
	conf = clamp(52+1.4*math.Min(10, math.Abs(line))+8*(maxPriceProb-0.5), 52, 65)
	return pick, conf
}

// totalPick compara as probabilidades implícitas de over/under; sem nenhum
// preço aplica o lado padrão configurado.
func totalPick(snap snapshot.Snapshot, opts Options) (pick string, conf int) {
	line := *snap.TotalLine
	pOver := probability.ImpliedPtr(snap.TotalOverPrice)
	pUnder := probability.ImpliedPtr(snap.TotalUnderPrice)

	side := opts.TotalDefaultSide
	if side != SideOver {
		side = SideUnder
	}
	edge := 0.0

	switch {
	case pOver != nil && pUnder != nil:
		dOver, dUnder := probability.DeVig(pOver, pUnder)
		if dOver != nil && dUnder != nil {
			if *dOver >= *dUnder {
				side = SideOver
			} else {
				side = SideUnder
			}
			edge = math.Abs(*dOver - *dUnder)
		}
	case pOver != nil:
		if *pOver >= 0.5 {
			side = SideOver
		} else {
			side = SideUnder
		}
		edge = math.Abs(2*(*pOver) - 1)
	case pUnder != nil:
		if *pUnder >= 0.5 {
			side = SideUnder
		} else {
			side = SideOver
		}
		edge = math.Abs(2*(*pUnder) - 1)
	}

	pick = fmt.Sprintf("%s %s", side, formatLine(line))
	conf = clamp(52+10*edge+4, 52, 64)
	return pick, conf
}

// sourceTag classifica a cobertura de mercado que alimentou o modelo
func sourceTag(snap snapshot.Snapshot) string {
	mlFull := snap.MoneylineHome != nil && snap.MoneylineAway != nil
	empty := snap.MoneylineHome == nil && snap.MoneylineAway == nil &&
		snap.SpreadLine == nil && snap.TotalLine == nil
	switch {
	case empty:
		return SourceNoLines
	case mlFull && snap.SpreadLine != nil && snap.TotalLine != nil:
		return SourceFull
	default:
		return SourcePartial
	}
}

// modelConfidence agrega: máximo das confianças por mercado, piso 55
func modelConfidence(p Picks) int {
	max := p.ConfMoneyline
	if p.ConfSpread != nil && *p.ConfSpread > max {
		max = *p.ConfSpread
	}
	if p.ConfTotal != nil && *p.ConfTotal > max {
		max = *p.ConfTotal
	}
	if max < 55 {
		max = 55
	}
	return max
}

// clamp arredonda e limita ao intervalo documentado; lixo numérico na
// entrada nunca produz confiança fora dos limites.
func clamp(v float64, lo, hi int) int {
	if math.IsNaN(v) {
		return lo
	}
	n := int(math.Round(v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// formatSigned formata uma linha com sinal explícito ("+3.5" / "-3.5")
func formatSigned(line float64) string {
	s := formatLine(line)
	if line > 0 {
		return "+" + s
	}
	return s
}

// formatLine formata a linha sem zeros à direita ("44.5", "3")
func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}

func bookLabel(key string) string {
	if strings.TrimSpace(key) == "" {
		return "no"
	}
	return key
}
