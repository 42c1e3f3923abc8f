package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/pkg/contracts/events"
)

const (
	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
	sourceName  = "theoddsapi"
)

// sportKeys mapeia a liga interna para a chave de esporte do provider
var sportKeys = map[string]string{
	"nfl":   "americanfootball_nfl",
	"nba":   "basketball_nba",
	"mlb":   "baseball_mlb",
	"nhl":   "icehockey_nhl",
	"ncaaf": "americanfootball_ncaaf",
	"ncaab": "basketball_ncaab",
	"wnba":  "basketball_wnba",
}

// SportKey resolve a chave do provider para uma liga interna
func SportKey(sport string) (string, bool) {
	k, ok := sportKeys[sport]
	return k, ok
}

// Client consome a The Odds API v4 (odds e scores) com retry limitado
// Chamadas são bloqueantes e respeitam o contexto do chamador
type Client struct {
	baseURL string
	apiKey  string
	regions string
	log     *zap.Logger
	httpc   *http.Client
}

// NewClient cria um cliente do provider com timeout padrão de 30s
func NewClient(baseURL, apiKey, regions string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		regions: regions,
		log:     log,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// oddsEvent é o formato bruto de um evento no endpoint de odds
type oddsEvent struct {
	ID           string             `json:"id"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []events.Bookmaker `json:"bookmakers"`
}

// GetOdds busca os eventos com mercados h2h/spreads/totals de uma liga
// Retorna um RawOddsEvent por jogo; CycleID é preenchido pelo scheduler
func (c *Client) GetOdds(ctx context.Context, sport string) ([]events.RawOddsEvent, error) {
	sportKey, ok := sportKeys[sport]
	if !ok {
		return nil, fmt.Errorf("unknown sport %q", sport)
	}

	params := url.Values{}
	params.Set("regions", c.regions)
	params.Set("markets", "h2h,spreads,totals")
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")
	params.Set("apiKey", c.apiKey)

	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, sportKey, params.Encode())

	var raw []oddsEvent
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch odds %s: %w", sport, err)
	}

	now := time.Now().UTC()
	out := make([]events.RawOddsEvent, 0, len(raw))
	for _, e := range raw {
		if e.ID == "" || e.CommenceTime.IsZero() {
			continue
		}
		out = append(out, events.RawOddsEvent{
			ExternalID:   e.ID,
			Sport:        sport,
			SportKey:     sportKey,
			CommenceTime: e.CommenceTime.UTC(),
			HomeTeam:     e.HomeTeam,
			AwayTeam:     e.AwayTeam,
			Bookmakers:   e.Bookmakers,
			FetchedAt:    now,
			Source:       sourceName,
		})
	}
	return out, nil
}

// ScoreEvent é um jogo no endpoint de scores, já com placar resolvido
type ScoreEvent struct {
	ExternalID string
	Sport      string
	HomeTeam   string
	AwayTeam   string
	Completed  bool
	HomeScore  int
	AwayScore  int
}

// scoreEvent é o formato bruto do endpoint de scores
type scoreEvent struct {
	ID           string `json:"id"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	Completed    bool   `json:"completed"`
	Scores       []struct {
		Name  string `json:"name"`
		Score string `json:"score"`
	} `json:"scores"`
}

// GetScores busca os placares (finais e em andamento) de uma liga na
// janela de daysFrom dias. Jogos sem placar resolvível são descartados.
func (c *Client) GetScores(ctx context.Context, sport string, daysFrom int) ([]ScoreEvent, error) {
	sportKey, ok := sportKeys[sport]
	if !ok {
		return nil, fmt.Errorf("unknown sport %q", sport)
	}

	params := url.Values{}
	params.Set("daysFrom", strconv.Itoa(daysFrom))
	params.Set("dateFormat", "iso")
	params.Set("apiKey", c.apiKey)

	endpoint := fmt.Sprintf("%s/sports/%s/scores?%s", c.baseURL, sportKey, params.Encode())

	var raw []scoreEvent
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch scores %s: %w", sport, err)
	}

	out := make([]ScoreEvent, 0, len(raw))
	for _, e := range raw {
		home, away, ok := finalScores(e)
		if !ok {
			continue
		}
		out = append(out, ScoreEvent{
			ExternalID: e.ID,
			Sport:      sport,
			HomeTeam:   e.HomeTeam,
			AwayTeam:   e.AwayTeam,
			Completed:  e.Completed,
			HomeScore:  home,
			AwayScore:  away,
		})
	}
	return out, nil
}

// finalScores resolve o placar casa/visitante pelo nome dos times
func finalScores(e scoreEvent) (home, away int, ok bool) {
	foundHome, foundAway := false, false
	for _, s := range e.Scores {
		n, err := strconv.Atoi(s.Score)
		if err != nil {
			continue
		}
		switch s.Name {
		case e.HomeTeam:
			home, foundHome = n, true
		case e.AwayTeam:
			away, foundAway = n, true
		}
	}
	return home, away, foundHome && foundAway
}

// getJSON executa um GET com retry limitado e backoff exponencial com jitter
// Repete apenas em falha de rede, 429 e 5xx; demais status abortam direto
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			jitter := time.Duration(rand.Int63n(int64(baseBackoff / 2)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			lastErr = fmt.Errorf("provider status %d: %s", resp.StatusCode, string(body))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return lastErr
		}

		// Cota de requisições do provider, útil para acompanhar o rate limit
		if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
			c.log.Debug("provider quota",
				zap.String("remaining", remaining),
				zap.String("used", resp.Header.Get("X-Requests-Used")),
			)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
		return nil
	}
	return lastErr
}
