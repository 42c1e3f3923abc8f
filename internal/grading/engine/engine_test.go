package engine

import "testing"

func TestGradeMoneyline(t *testing.T) {
	tests := []struct {
		name       string
		pick       string
		home, away int
		want       string
	}{
		{"mandante previsto e vence", "HOME", 24, 20, ResultWin},
		{"mandante previsto e perde", "HOME", 17, 20, ResultLose},
		{"visitante previsto e vence", "AWAY", 17, 20, ResultWin},
		{"visitante previsto e perde", "AWAY", 24, 20, ResultLose},
		{"empate e push para qualquer lado", "HOME", 21, 21, ResultPush},
		{"empate e push para o visitante", "AWAY", 21, 21, ResultPush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeMoneyline(tt.pick, tt.home, tt.away); got != tt.want {
				t.Errorf("GradeMoneyline(%q, %d, %d) = %q, want %q", tt.pick, tt.home, tt.away, got, tt.want)
			}
		})
	}
}

func TestGradeSpread(t *testing.T) {
	tests := []struct {
		name       string
		side       string
		line       float64
		home, away int
		want       string
	}{
		// mandante -3.5, placar 24x20: 24 - 3.5 = 20.5 > 20
		{"mandante cobre", "HOME", -3.5, 24, 20, ResultWin},
		{"mandante nao cobre", "HOME", -3.5, 22, 20, ResultLose},
		{"visitante com handicap positivo cobre", "AWAY", 3.5, 22, 20, ResultWin},
		{"visitante nao cobre", "AWAY", 3.5, 24, 20, ResultLose},
		{"linha inteira empata em push", "HOME", -4, 24, 20, ResultPush},
		{"push do visitante", "AWAY", 4, 24, 20, ResultPush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeSpread(tt.side, tt.line, tt.home, tt.away); got != tt.want {
				t.Errorf("GradeSpread(%q, %v, %d, %d) = %q, want %q", tt.side, tt.line, tt.home, tt.away, got, tt.want)
			}
		})
	}
}

// Lados opostos do mesmo spread nunca podem vencer ou perder juntos
func TestGradeSpreadSymmetry(t *testing.T) {
	scores := [][2]int{{24, 20}, {20, 24}, {24, 21}, {21, 21}, {30, 10}}
	lines := []float64{-3.5, -3, 0, 2.5, 7}
	for _, sc := range scores {
		for _, line := range lines {
			home := GradeSpread("HOME", line, sc[0], sc[1])
			away := GradeSpread("AWAY", -line, sc[0], sc[1])

			if home == ResultPush || away == ResultPush {
				if home != away {
					t.Errorf("line %v score %v: push must be mutual, got home=%q away=%q", line, sc, home, away)
				}
				continue
			}
			if home == away {
				t.Errorf("line %v score %v: both sides graded %q", line, sc, home)
			}
		}
	}
}

func TestGradeTotal(t *testing.T) {
	tests := []struct {
		name       string
		side       string
		line       float64
		home, away int
		want       string
	}{
		{"over com 45 contra 44.5", "Over", 44.5, 24, 21, ResultWin},
		{"over com 44 contra 44.5", "Over", 44.5, 24, 20, ResultLose},
		{"under com 44 contra 44.5", "Under", 44.5, 24, 20, ResultWin},
		{"under com 45 contra 44.5", "Under", 44.5, 24, 21, ResultLose},
		{"soma igual a linha inteira e push", "Over", 44, 24, 20, ResultPush},
		{"push tambem para under", "Under", 44, 24, 20, ResultPush},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeTotal(tt.side, tt.line, tt.home, tt.away); got != tt.want {
				t.Errorf("GradeTotal(%q, %v, %d, %d) = %q, want %q", tt.side, tt.line, tt.home, tt.away, got, tt.want)
			}
		})
	}
}

// Mesmos placares produzem sempre o mesmo resultado
func TestGradingIsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := GradeMoneyline("HOME", 24, 20); got != ResultWin {
			t.Fatalf("run %d: GradeMoneyline changed to %q", i, got)
		}
		if got := GradeSpread("HOME", -3.5, 24, 20); got != ResultWin {
			t.Fatalf("run %d: GradeSpread changed to %q", i, got)
		}
		if got := GradeTotal("Under", 44.5, 24, 20); got != ResultWin {
			t.Fatalf("run %d: GradeTotal changed to %q", i, got)
		}
	}
}

func TestScore(t *testing.T) {
	win, lose, push := ResultWin, ResultLose, ResultPush
	tests := []struct {
		name    string
		ml      string
		sp, tot *string
		want    float64
	}{
		{"tudo vence", win, &win, &win, 2.0},
		{"so moneyline", win, &lose, &push, 1.0},
		{"so mercados secundarios", lose, &win, &win, 1.0},
		{"push nao pontua", push, &push, &push, 0.0},
		{"sem mercados secundarios", win, nil, nil, 1.0},
		{"tudo perde", lose, &lose, &lose, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.ml, tt.sp, tt.tot); got != tt.want {
				t.Errorf("Score(%q, %v, %v) = %v, want %v", tt.ml, tt.sp, tt.tot, got, tt.want)
			}
		})
	}
}

func TestParsePick(t *testing.T) {
	tests := []struct {
		in       string
		side     string
		line     float64
		hasLine  bool
	}{
		{"HOME -3.5", "HOME", -3.5, true},
		{"AWAY +3.5", "AWAY", 3.5, true},
		{"Under 44.5", "Under", 44.5, true},
		{"Over 8", "Over", 8, true},
		{"HOME", "HOME", 0, false},
		{"  AWAY  ", "AWAY", 0, false},
		{"", "", 0, false},
		{"HOME abc", "HOME", 0, false},
	}
	for _, tt := range tests {
		side, line, hasLine := ParsePick(tt.in)
		if side != tt.side || line != tt.line || hasLine != tt.hasLine {
			t.Errorf("ParsePick(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.in, side, line, hasLine, tt.side, tt.line, tt.hasLine)
		}
	}
}
