package snapshot

import (
	"strings"

	"github.com/radieske/sports-picks-pipeline/pkg/contracts/events"
)

// Snapshot é o registro canônico de mercado de um jogo após a redução das
// cotações de múltiplos bookmakers. Campos nulos indicam mercado não
// cotado; o builder nunca fabrica um mercado ausente.
type Snapshot struct {
	Sportsbook      string
	MoneylineHome   *int
	MoneylineAway   *int
	SpreadLine      *float64 // perspectiva do mandante (negativo = mandante favorito)
	SpreadPriceHome *int
	SpreadPriceAway *int
	TotalLine       *float64
	TotalOverPrice  *int
	TotalUnderPrice *int
}

// bookPriority desempata a seleção de bookmaker; fora da lista vale o
// índice máximo e o desempate final é lexicográfico pela chave.
var bookPriority = []string{"draftkings", "fanduel", "betmgm", "caesars", "pointsbetus"}

var knownMarkets = map[string]struct{}{"h2h": {}, "spreads": {}, "totals": {}}

// Build reduz as cotações de um evento a um único Snapshot.
// A saída é determinística para o mesmo conjunto de entrada: a escolha do
// bookmaker nunca depende de ordem de iteração de mapa.
func Build(ev events.RawOddsEvent) Snapshot {
	book, ok := selectBook(ev.Bookmakers)
	if !ok {
		return Snapshot{}
	}

	snap := Snapshot{Sportsbook: book.Key}
	for _, m := range book.Markets {
		switch m.Key {
		case "h2h":
			fillMoneyline(&snap, m.Outcomes, ev.HomeTeam, ev.AwayTeam)
		case "spreads":
			fillSpread(&snap, m.Outcomes, ev.HomeTeam, ev.AwayTeam)
		case "totals":
			fillTotal(&snap, m.Outcomes)
		}
	}
	return snap
}

// selectBook escolhe o melhor bookmaker: mais mercados conhecidos cotados,
// desempate pela lista fixa de prioridade e por fim pela chave.
func selectBook(books []events.Bookmaker) (events.Bookmaker, bool) {
	if len(books) == 0 {
		return events.Bookmaker{}, false
	}
	best := 0
	for i := 1; i < len(books); i++ {
		if bookLess(books[i], books[best]) {
			best = i
		}
	}
	return books[best], true
}

// bookLess define a ordem total de preferência entre dois bookmakers
func bookLess(a, b events.Bookmaker) bool {
	ma, mb := marketCount(a), marketCount(b)
	if ma != mb {
		return ma > mb
	}
	pa, pb := priorityIndex(a.Key), priorityIndex(b.Key)
	if pa != pb {
		return pa < pb
	}
	return a.Key < b.Key
}

func marketCount(b events.Bookmaker) int {
	seen := map[string]struct{}{}
	for _, m := range b.Markets {
		if _, ok := knownMarkets[m.Key]; ok {
			seen[m.Key] = struct{}{}
		}
	}
	return len(seen)
}

func priorityIndex(key string) int {
	for i, k := range bookPriority {
		if k == key {
			return i
		}
	}
	return len(bookPriority)
}

func fillMoneyline(snap *Snapshot, outcomes []events.Outcome, home, away string) {
	hi, ai := matchSides(outcomes, home, away)
	if hi >= 0 && outcomes[hi].Price != 0 {
		p := outcomes[hi].Price
		snap.MoneylineHome = &p
	}
	if ai >= 0 && outcomes[ai].Price != 0 {
		p := outcomes[ai].Price
		snap.MoneylineAway = &p
	}
}

// fillSpread extrai a linha na perspectiva do mandante. Quando o outcome
// do mandante não publica a linha, deriva a partir da linha do visitante
// negada.
func fillSpread(snap *Snapshot, outcomes []events.Outcome, home, away string) {
	hi, ai := matchSides(outcomes, home, away)
	if hi >= 0 {
		if outcomes[hi].Point != nil {
			line := *outcomes[hi].Point
			snap.SpreadLine = &line
		}
		if outcomes[hi].Price != 0 {
			p := outcomes[hi].Price
			snap.SpreadPriceHome = &p
		}
	}
	if ai >= 0 {
		if snap.SpreadLine == nil && outcomes[ai].Point != nil {
			line := -*outcomes[ai].Point
			snap.SpreadLine = &line
		}
		if outcomes[ai].Price != 0 {
			p := outcomes[ai].Price
			snap.SpreadPriceAway = &p
		}
	}
}

func fillTotal(snap *Snapshot, outcomes []events.Outcome) {
	for _, o := range outcomes {
		switch strings.ToUpper(strings.TrimSpace(o.Name)) {
		case "OVER":
			if o.Point != nil && snap.TotalLine == nil {
				line := *o.Point
				snap.TotalLine = &line
			}
			if o.Price != 0 {
				p := o.Price
				snap.TotalOverPrice = &p
			}
		case "UNDER":
			if o.Point != nil && snap.TotalLine == nil {
				line := *o.Point
				snap.TotalLine = &line
			}
			if o.Price != 0 {
				p := o.Price
				snap.TotalUnderPrice = &p
			}
		}
	}
}

// matchSides resolve qual outcome corresponde ao mandante e ao visitante.
// Ordem de tentativa: igualdade após normalização, depois substring em
// qualquer direção, por fim ordem posicional (primeiro = mandante).
func matchSides(outcomes []events.Outcome, home, away string) (homeIdx, awayIdx int) {
	homeIdx, awayIdx = -1, -1
	nh, na := NormalizeTeam(home), NormalizeTeam(away)

	for i, o := range outcomes {
		switch NormalizeTeam(o.Name) {
		case nh:
			if homeIdx < 0 {
				homeIdx = i
			}
		case na:
			if awayIdx < 0 {
				awayIdx = i
			}
		}
	}

	if homeIdx < 0 || awayIdx < 0 {
		for i, o := range outcomes {
			no := NormalizeTeam(o.Name)
			if no == "" {
				continue
			}
			if homeIdx < 0 && i != awayIdx && contains(no, nh) {
				homeIdx = i
				continue
			}
			if awayIdx < 0 && i != homeIdx && contains(no, na) {
				awayIdx = i
			}
		}
	}

	// Último recurso: ordem posicional
	if homeIdx < 0 && awayIdx < 0 {
		if len(outcomes) > 0 {
			homeIdx = 0
		}
		if len(outcomes) > 1 {
			awayIdx = 1
		}
	}
	return homeIdx, awayIdx
}

// contains verifica continência em qualquer direção entre nomes normalizados
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// NormalizeTeam rebaixa para minúsculas e remove tudo que não for
// alfanumérico, tolerando divergências de caixa e espaçamento entre feeds.
func NormalizeTeam(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
