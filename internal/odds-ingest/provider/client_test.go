package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

const oddsBody = `[
	{
		"id": "abc123",
		"commence_time": "2026-09-10T17:00:00Z",
		"home_team": "Kansas City Chiefs",
		"away_team": "Buffalo Bills",
		"bookmakers": [
			{
				"key": "draftkings",
				"markets": [
					{"key": "h2h", "outcomes": [
						{"name": "Kansas City Chiefs", "price": -150},
						{"name": "Buffalo Bills", "price": 130}
					]}
				]
			}
		]
	},
	{"id": "", "commence_time": "2026-09-10T17:00:00Z", "home_team": "x", "away_team": "y"}
]`

const scoresBody = `[
	{
		"id": "abc123",
		"completed": true,
		"home_team": "Kansas City Chiefs",
		"away_team": "Buffalo Bills",
		"scores": [
			{"name": "Kansas City Chiefs", "score": "24"},
			{"name": "Buffalo Bills", "score": "20"}
		]
	},
	{
		"id": "def456",
		"completed": false,
		"home_team": "Dallas Cowboys",
		"away_team": "New York Giants",
		"scores": null
	}
]`

func TestGetOdds(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("X-Requests-Remaining", "499")
		_, _ = w.Write([]byte(oddsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "us", zap.NewNop())
	events, err := c.GetOdds(context.Background(), "nfl")
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}

	if gotPath != "/sports/americanfootball_nfl/odds" {
		t.Errorf("path = %q, want provider sport key path", gotPath)
	}
	for _, frag := range []string{"regions=us", "markets=h2h%2Cspreads%2Ctotals", "oddsFormat=american", "apiKey=test-key"} {
		if !strings.Contains(gotQuery, frag) {
			t.Errorf("query %q missing %q", gotQuery, frag)
		}
	}

	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1 (empty id discarded)", len(events))
	}
	ev := events[0]
	if ev.ExternalID != "abc123" || ev.Sport != "nfl" || ev.SportKey != "americanfootball_nfl" {
		t.Errorf("event identity = %q/%q/%q", ev.ExternalID, ev.Sport, ev.SportKey)
	}
	if ev.HomeTeam != "Kansas City Chiefs" || len(ev.Bookmakers) != 1 {
		t.Errorf("event payload: home=%q books=%d", ev.HomeTeam, len(ev.Bookmakers))
	}
	if ev.FetchedAt.IsZero() || ev.Source != "theoddsapi" {
		t.Errorf("event provenance: fetched_at=%v source=%q", ev.FetchedAt, ev.Source)
	}
}

func TestGetOddsUnknownSport(t *testing.T) {
	c := NewClient("http://unused", "k", "us", zap.NewNop())
	if _, err := c.GetOdds(context.Background(), "cricket"); err == nil {
		t.Error("unknown sport did not error")
	}
}

func TestGetScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "daysFrom=2") {
			t.Errorf("query %q missing daysFrom", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(scoresBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "us", zap.NewNop())
	scores, err := c.GetScores(context.Background(), "nfl", 2)
	if err != nil {
		t.Fatalf("GetScores: %v", err)
	}

	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want 1 (unresolvable score discarded)", len(scores))
	}
	sc := scores[0]
	if sc.ExternalID != "abc123" || !sc.Completed {
		t.Errorf("score identity = %q completed=%v", sc.ExternalID, sc.Completed)
	}
	if sc.HomeScore != 24 || sc.AwayScore != 20 {
		t.Errorf("score = %d x %d, want 24 x 20", sc.HomeScore, sc.AwayScore)
	}
}

func TestGetJSONRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "us", zap.NewNop())
	if _, err := c.GetOdds(context.Background(), "nba"); err != nil {
		t.Fatalf("GetOdds after transient 5xx: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (two retries)", calls.Load())
	}
}

func TestGetJSONDoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key", "us", zap.NewNop())
	if _, err := c.GetOdds(context.Background(), "nba"); err == nil {
		t.Fatal("unauthorized response did not error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (4xx is terminal)", calls.Load())
	}
}

func TestGetJSONGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "us", zap.NewNop())
	if _, err := c.GetOdds(context.Background(), "nba"); err == nil {
		t.Fatal("persistent 5xx did not error")
	}
	if calls.Load() != maxAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), maxAttempts)
	}
}
