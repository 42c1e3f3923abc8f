package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/pkg/contracts/events"
)

type fakeProvider struct {
	bySport map[string][]events.RawOddsEvent
	errFor  map[string]error
	calls   []string
}

func (f *fakeProvider) GetOdds(ctx context.Context, sport string) ([]events.RawOddsEvent, error) {
	f.calls = append(f.calls, sport)
	if err := f.errFor[sport]; err != nil {
		return nil, err
	}
	return f.bySport[sport], nil
}

type fakePublisher struct {
	published []events.RawOddsEvent
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, e events.RawOddsEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func ev(id string) events.RawOddsEvent {
	return events.RawOddsEvent{ExternalID: id, Sport: "nfl", CommenceTime: time.Now()}
}

func TestRunCyclePublishesAllSports(t *testing.T) {
	prov := &fakeProvider{bySport: map[string][]events.RawOddsEvent{
		"nfl": {ev("a"), ev("b")},
		"nba": {ev("c")},
	}}
	pub := &fakePublisher{}

	var fetched, published int
	s := &Scheduler{
		Log:         zap.NewNop(),
		Provider:    prov,
		Publisher:   pub,
		Sports:      []string{"nfl", "nba"},
		OnFetched:   func(sport string, n int) { fetched += n },
		OnPublished: func() { published++ },
	}
	s.runCycle(context.Background())

	if len(prov.calls) != 2 {
		t.Errorf("provider calls = %v, want nfl then nba", prov.calls)
	}
	if len(pub.published) != 3 || fetched != 3 || published != 3 {
		t.Errorf("published = %d, fetched = %d, callbacks = %d; want 3 each", len(pub.published), fetched, published)
	}
}

func TestRunCycleStampsCycleID(t *testing.T) {
	prov := &fakeProvider{bySport: map[string][]events.RawOddsEvent{"nfl": {ev("a"), ev("b")}}}
	pub := &fakePublisher{}

	s := &Scheduler{Log: zap.NewNop(), Provider: prov, Publisher: pub, Sports: []string{"nfl"}}
	s.runCycle(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2", len(pub.published))
	}
	if pub.published[0].CycleID == "" {
		t.Error("CycleID not stamped on published event")
	}
	if pub.published[0].CycleID != pub.published[1].CycleID {
		t.Error("events of the same cycle carry different cycle ids")
	}
}

// A falha de uma liga não pode bloquear as demais
func TestRunCycleContinuesAfterSportFailure(t *testing.T) {
	prov := &fakeProvider{
		bySport: map[string][]events.RawOddsEvent{"nba": {ev("c")}},
		errFor:  map[string]error{"nfl": errors.New("provider down")},
	}
	pub := &fakePublisher{}

	var stages []string
	s := &Scheduler{
		Log:       zap.NewNop(),
		Provider:  prov,
		Publisher: pub,
		Sports:    []string{"nfl", "nba"},
		OnError:   func(stage string) { stages = append(stages, stage) },
	}
	s.runCycle(context.Background())

	if len(prov.calls) != 2 {
		t.Errorf("provider calls = %v, want both sports attempted", prov.calls)
	}
	if len(pub.published) != 1 {
		t.Errorf("published = %d, want 1 from the healthy sport", len(pub.published))
	}
	if len(stages) != 1 || stages[0] != "fetch" {
		t.Errorf("error stages = %v, want [fetch]", stages)
	}
}

func TestRunCycleStopsBetweenSportsOnCancel(t *testing.T) {
	prov := &fakeProvider{bySport: map[string][]events.RawOddsEvent{}}
	pub := &fakePublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scheduler{Log: zap.NewNop(), Provider: prov, Publisher: pub, Sports: []string{"nfl", "nba"}}
	s.runCycle(ctx)

	if len(prov.calls) != 0 {
		t.Errorf("provider calls = %v, want none after cancellation", prov.calls)
	}
}

func TestRunCycleCountsPublishErrors(t *testing.T) {
	prov := &fakeProvider{bySport: map[string][]events.RawOddsEvent{"nfl": {ev("a")}}}
	pub := &fakePublisher{err: errors.New("broker down")}

	var stages []string
	s := &Scheduler{
		Log:       zap.NewNop(),
		Provider:  prov,
		Publisher: pub,
		Sports:    []string{"nfl"},
		OnError:   func(stage string) { stages = append(stages, stage) },
	}
	s.runCycle(context.Background())

	if len(stages) != 1 || stages[0] != "publish" {
		t.Errorf("error stages = %v, want [publish]", stages)
	}
}
