package topics

const (
	// Odds
	RawOddsEvents = "raw_odds_events"

	// DLQs
	RawOddsEventsDLQ = "raw_odds_events_dlq"
)
