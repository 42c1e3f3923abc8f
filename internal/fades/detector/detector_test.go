package detector

import "testing"

func pick(gameID int64, market, side string, conf int, prob float64) GamePick {
	return GamePick{
		GameID:     gameID,
		Sport:      "nfl",
		HomeTeam:   "Chiefs",
		AwayTeam:   "Bills",
		Market:     market,
		Side:       side,
		Confidence: conf,
		ModelProb:  prob,
	}
}

func split(gameID int64, market, side string, pct float64) Split {
	return Split{GameID: gameID, Market: market, Side: side, Percent: pct}
}

func TestDetectPublicAgainstModel(t *testing.T) {
	picks := []GamePick{pick(1, "moneyline", "AWAY", 60, 0.55)}
	splits := []Split{split(1, "moneyline", "HOME", 70)}

	fades := Detect(picks, splits, 60, 55)
	if len(fades) != 1 {
		t.Fatalf("Detect returned %d fades, want 1", len(fades))
	}
	f := fades[0]
	if f.PublicSide != "HOME" || f.PublicPercent != 70 {
		t.Errorf("public side/pct = %q/%v, want HOME/70", f.PublicSide, f.PublicPercent)
	}
	if f.ModelSide != "AWAY" || f.Confidence != 60 {
		t.Errorf("model side/conf = %q/%d, want AWAY/60", f.ModelSide, f.Confidence)
	}
}

func TestDetectBelowPublicThresholdExcluded(t *testing.T) {
	picks := []GamePick{pick(1, "moneyline", "AWAY", 60, 0.55)}
	splits := []Split{split(1, "moneyline", "HOME", 55)}

	if fades := Detect(picks, splits, 60, 55); len(fades) != 0 {
		t.Errorf("public below threshold included: %+v", fades)
	}
}

func TestDetectBelowConfidenceExcluded(t *testing.T) {
	picks := []GamePick{pick(1, "moneyline", "AWAY", 53, 0.55)}
	splits := []Split{split(1, "moneyline", "HOME", 70)}

	if fades := Detect(picks, splits, 60, 55); len(fades) != 0 {
		t.Errorf("low-confidence pick included: %+v", fades)
	}
}

func TestDetectSameSideIsNotAFade(t *testing.T) {
	picks := []GamePick{pick(1, "moneyline", "HOME", 60, 0.6)}
	splits := []Split{split(1, "moneyline", "HOME", 70)}

	if fades := Detect(picks, splits, 60, 55); len(fades) != 0 {
		t.Errorf("public and model on the same side flagged as fade: %+v", fades)
	}
}

func TestDetectMissingSplitExcludedSilently(t *testing.T) {
	picks := []GamePick{pick(1, "moneyline", "AWAY", 60, 0.55)}

	if fades := Detect(picks, nil, 60, 55); len(fades) != 0 {
		t.Errorf("pick without split included: %+v", fades)
	}
}

func TestDetectTotalsUseOverUnderOpposition(t *testing.T) {
	picks := []GamePick{pick(1, "total", "Under", 58, 0.56)}
	splits := []Split{split(1, "total", "Over", 65)}

	fades := Detect(picks, splits, 60, 55)
	if len(fades) != 1 {
		t.Fatalf("Detect returned %d fades, want 1", len(fades))
	}
	if fades[0].PublicSide != "Over" || fades[0].ModelSide != "Under" {
		t.Errorf("sides = public %q / model %q, want Over / Under", fades[0].PublicSide, fades[0].ModelSide)
	}
}

func TestDetectMarketsDoNotCrossMatch(t *testing.T) {
	// split de spread nao conta para o pick de moneyline
	picks := []GamePick{pick(1, "moneyline", "AWAY", 60, 0.55)}
	splits := []Split{split(1, "spread", "HOME", 80)}

	if fades := Detect(picks, splits, 60, 55); len(fades) != 0 {
		t.Errorf("split of another market matched: %+v", fades)
	}
}

func TestDetectRanking(t *testing.T) {
	picks := []GamePick{
		pick(1, "moneyline", "AWAY", 60, 0.52),
		pick(2, "moneyline", "AWAY", 60, 0.60),
		pick(3, "moneyline", "AWAY", 60, 0.55),
	}
	splits := []Split{
		split(1, "moneyline", "HOME", 65),
		split(2, "moneyline", "HOME", 72),
		split(3, "moneyline", "HOME", 65),
	}

	fades := Detect(picks, splits, 60, 55)
	if len(fades) != 3 {
		t.Fatalf("Detect returned %d fades, want 3", len(fades))
	}
	if fades[0].GameID != 2 {
		t.Errorf("first fade GameID = %d, want 2 (highest public pct)", fades[0].GameID)
	}
	// empate no percentual: maior distanciamento do modelo de 0.5 primeiro
	if fades[1].GameID != 3 || fades[2].GameID != 1 {
		t.Errorf("tie ranking = [%d, %d], want [3, 1]", fades[1].GameID, fades[2].GameID)
	}
}

func TestOppositeSide(t *testing.T) {
	tests := []struct{ in, want string }{
		{"HOME", "AWAY"},
		{"AWAY", "HOME"},
		{"Over", "Under"},
		{"Under", "Over"},
		{"weird", ""},
	}
	for _, tt := range tests {
		if got := oppositeSide(tt.in); got != tt.want {
			t.Errorf("oppositeSide(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
