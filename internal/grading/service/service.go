package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-picks-pipeline/internal/grading/engine"
	"github.com/radieske/sports-picks-pipeline/internal/grading/repository"
)

// Item é um jogo encerrado submetido para grading, identificado por
// esporte + data + times. Linhas de fechamento são usadas como fallback
// quando o pick persistido não trouxe a própria linha
type Item struct {
	Sport       string   `json:"sport"`
	GameDate    string   `json:"game_date"` // YYYY-MM-DD (UTC)
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	HomeScore   int      `json:"home_score"`
	AwayScore   int      `json:"away_score"`
	SpreadClose *float64 `json:"spread_close,omitempty"` // perspectiva do mandante
	TotalClose  *float64 `json:"total_close,omitempty"`
}

// ItemResult é o desfecho individual de um item do lote
type ItemResult struct {
	Sport    string   `json:"sport"`
	GameDate string   `json:"game_date"`
	HomeTeam string   `json:"home_team"`
	AwayTeam string   `json:"away_team"`
	OK       bool     `json:"ok"`
	Reason   string   `json:"reason,omitempty"`
	Grade    *float64 `json:"grade,omitempty"`
}

// Service liquida previsões contra placares finais.
// Callbacks de métricas podem ser usadas para monitoramento
type Service struct {
	Log  *zap.Logger
	Repo *repository.PostgresRepo

	OnGraded func()       // métricas (counter++)
	OnError  func(string) // métricas por fase
}

// NewService cria o serviço de grading
func NewService(log *zap.Logger, repo *repository.PostgresRepo) *Service {
	return &Service{Log: log, Repo: repo}
}

// GradeBatch processa um lote de jogos encerrados. Cada item é resolvido de
// forma independente: falha de um não impede os demais
func (s *Service) GradeBatch(ctx context.Context, items []Item) []ItemResult {
	out := make([]ItemResult, 0, len(items))
	for _, item := range items {
		res := ItemResult{
			Sport:    item.Sport,
			GameDate: item.GameDate,
			HomeTeam: item.HomeTeam,
			AwayTeam: item.AwayTeam,
		}

		gameDate, err := time.Parse("2006-01-02", item.GameDate)
		if err != nil {
			res.Reason = fmt.Sprintf("invalid game_date %q", item.GameDate)
			out = append(out, res)
			continue
		}

		pred, err := s.Repo.FindByKeys(ctx, strings.ToLower(item.Sport), gameDate, item.HomeTeam, item.AwayTeam)
		if errors.Is(err, repository.ErrNotFound) {
			res.Reason = "prediction not found for keys"
			out = append(out, res)
			continue
		}
		if err != nil {
			s.Log.Warn("grading lookup failed", zap.String("sport", item.Sport), zap.Error(err))
			if s.OnError != nil {
				s.OnError("db_lookup")
			}
			res.Reason = "storage lookup failed"
			out = append(out, res)
			continue
		}

		result := Settle(pred, item.HomeScore, item.AwayScore, item.SpreadClose, item.TotalClose)
		if err := s.Repo.SaveResult(ctx, result); err != nil {
			s.Log.Warn("grading save failed", zap.Int64("prediction_id", pred.ID), zap.Error(err))
			if s.OnError != nil {
				s.OnError("db_save")
			}
			res.Reason = "storage update failed"
			out = append(out, res)
			continue
		}

		if s.OnGraded != nil {
			s.OnGraded()
		}
		grade := result.Grade
		res.OK = true
		res.Grade = &grade
		out = append(out, res)
	}
	return out
}

// Settle liquida uma previsão contra o placar final. Puro: não acessa I/O.
// A linha de fechamento do spread chega na perspectiva do mandante e é
// negada quando o pick é do visitante; picks sem linha própria e sem
// fechamento ficam sem resultado naquele mercado
func Settle(pred *repository.Prediction, homeScore, awayScore int, spreadClose, totalClose *float64) repository.Result {
	ml := engine.GradeMoneyline(pred.PickMoneyline, homeScore, awayScore)

	var sp *string
	if pred.PickSpread != nil {
		if side, line, hasLine := pickLine(*pred.PickSpread, spreadClose, true); side != "" {
			if hasLine {
				v := engine.GradeSpread(side, line, homeScore, awayScore)
				sp = &v
			}
		}
	}

	var tot *string
	if pred.PickTotal != nil {
		if side, line, hasLine := pickLine(*pred.PickTotal, totalClose, false); side != "" {
			if hasLine {
				v := engine.GradeTotal(side, line, homeScore, awayScore)
				tot = &v
			}
		}
	}

	return repository.Result{
		PredictionID:    pred.ID,
		HomeScore:       homeScore,
		AwayScore:       awayScore,
		ResultMoneyline: ml,
		ResultSpread:    sp,
		ResultTotal:     tot,
		Grade:           engine.Score(ml, sp, tot),
	}
}

// pickLine resolve a linha efetiva de um pick: a embutida no texto tem
// prioridade; na ausência usa a linha de fechamento (negada para o lado
// visitante em spreads, que é cotado na perspectiva do mandante)
func pickLine(pick string, close *float64, flipForAway bool) (side string, line float64, ok bool) {
	side, line, ok = engine.ParsePick(pick)
	if ok || side == "" {
		return side, line, ok
	}
	if close == nil {
		return side, 0, false
	}
	line = *close
	if flipForAway && strings.EqualFold(side, "AWAY") {
		line = -line
	}
	return side, line, true
}
