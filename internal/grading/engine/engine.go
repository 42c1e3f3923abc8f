package engine

import (
	"strconv"
	"strings"
)

// Resultados possíveis de um pick liquidado
const (
	ResultWin  = "win"
	ResultLose = "lose"
	ResultPush = "push"
)

// GradeMoneyline liquida um pick de moneyline ("HOME" | "AWAY") contra o
// placar final. Empate no placar é push independente do lado previsto
func GradeMoneyline(pick string, homeScore, awayScore int) string {
	if homeScore == awayScore {
		return ResultPush
	}
	actual := "AWAY"
	if homeScore > awayScore {
		actual = "HOME"
	}
	if strings.EqualFold(pick, actual) {
		return ResultWin
	}
	return ResultLose
}

// GradeSpread liquida um pick de spread. A linha é sempre interpretada na
// perspectiva do time escolhido: ajustado = pontos do time + linha, comparado
// aos pontos do oponente. Igualdade exata é push
func GradeSpread(side string, line float64, homeScore, awayScore int) string {
	margin := float64(homeScore - awayScore)
	adjusted := margin + line
	if !strings.EqualFold(side, "HOME") {
		adjusted = -margin + line
	}
	switch {
	case adjusted == 0:
		return ResultPush
	case adjusted > 0:
		return ResultWin
	default:
		return ResultLose
	}
}

// GradeTotal liquida um pick de total ("Over" | "Under") contra a soma dos
// placares. Soma exatamente igual à linha é push
func GradeTotal(side string, line float64, homeScore, awayScore int) string {
	sum := float64(homeScore + awayScore)
	if sum == line {
		return ResultPush
	}
	over := sum > line
	if strings.EqualFold(side, "Over") == over {
		return ResultWin
	}
	return ResultLose
}

// Score calcula a nota numérica do jogo: moneyline vale 1.0 e cada mercado
// secundário 0.5. Apenas vitórias pontuam; push e derrota valem zero
func Score(ml string, sp, tot *string) float64 {
	score := 0.0
	if ml == ResultWin {
		score += 1.0
	}
	if sp != nil && *sp == ResultWin {
		score += 0.5
	}
	if tot != nil && *tot == ResultWin {
		score += 0.5
	}
	return score
}

// ParsePick separa um pick persistido ("HOME -3.5", "Under 44.5") em lado e
// linha. hasLine indica se a linha veio embutida no texto do pick
func ParsePick(pick string) (side string, line float64, hasLine bool) {
	fields := strings.Fields(strings.TrimSpace(pick))
	if len(fields) == 0 {
		return "", 0, false
	}
	side = fields[0]
	if len(fields) < 2 {
		return side, 0, false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return side, 0, false
	}
	return side, v, true
}
