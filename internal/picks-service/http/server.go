package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/sports-picks-pipeline/internal/fades/detector"
	fadesrepo "github.com/radieske/sports-picks-pipeline/internal/fades/repository"
	gradingservice "github.com/radieske/sports-picks-pipeline/internal/grading/service"
	"github.com/radieske/sports-picks-pipeline/internal/picks-service/cache"
	"github.com/radieske/sports-picks-pipeline/internal/picks-service/repo"
	"github.com/radieske/sports-picks-pipeline/internal/shared/auth"
)

// FadeDefaults são os parâmetros padrão do endpoint de fades
type FadeDefaults struct {
	Days            int
	PublicThreshold float64
	MinConfidence   int
}

// API expõe os endpoints REST de previsões, fades e administração
// Consulta de previsões usa cache de resposta (Redis) com TTL curto
type API struct {
	ReadRepo *repo.ReadRepo  // acesso ao banco de dados
	Cache    *cache.Cache    // cache das respostas por liga
	Fades    *fadesrepo.PostgresRepo
	Grading  *gradingservice.Service

	AdminToken string // segredo dos endpoints de mutação
	Defaults   FadeDefaults
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/predictions/{league}", a.listPredictions) // Previsões correntes de uma liga
	r.Get("/v1/fades", a.listFades)                      // Candidatos a fade ranqueados

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(a.AdminToken))
		r.Post("/v1/admin/grade", a.gradeGames)    // Liquida jogos encerrados
		r.Post("/v1/admin/splits", a.upsertSplits) // Grava splits do público
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listPredictions retorna as previsões de uma liga, preferencialmente do cache
func (a *API) listPredictions(w http.ResponseWriter, r *http.Request) {
	league := strings.ToLower(chi.URLParam(r, "league"))

	var fromCache []repo.PredictionView
	if a.Cache != nil {
		if ok, _ := a.Cache.GetPredictions(r.Context(), league, &fromCache); ok {
			writeJSON(w, http.StatusOK, map[string]any{"data": fromCache})
			return
		}
	}

	preds, err := a.ReadRepo.ListPredictions(r.Context(), league)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if preds == nil {
		preds = []repo.PredictionView{}
	}

	if a.Cache != nil {
		_ = a.Cache.SetPredictions(r.Context(), league, preds, 30*time.Second) // salva no cache por 30s
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": preds})
}

// listFades cruza picks confiantes com splits do público e retorna os
// candidatos a fade ranqueados
func (a *API) listFades(w http.ResponseWriter, r *http.Request) {
	league := strings.ToLower(r.URL.Query().Get("league"))
	if league == "" {
		league = "all"
	}
	days := queryInt(r, "days", a.Defaults.Days)
	threshold := queryFloat(r, "publicThreshold", a.Defaults.PublicThreshold)
	minConf := queryInt(r, "minConfidence", a.Defaults.MinConfidence)

	picks, err := a.Fades.FindPicks(r.Context(), league, days, minConf)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	splits, err := a.Fades.FindSplits(r.Context(), league, days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	fades := detector.Detect(picks, splits, threshold, minConf)
	if fades == nil {
		fades = []detector.Fade{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(fades), "data": fades})
}

// gradeGames liquida um ou mais jogos encerrados. Aceita um objeto único
// ou um array; o retorno traz o desfecho individual de cada item
func (a *API) gradeGames(w http.ResponseWriter, r *http.Request) {
	items, err := decodeOneOrMany[gradingservice.Item](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty payload"})
		return
	}

	results := a.Grading.GradeBatch(r.Context(), items)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// upsertSplits grava splits de público submetidos pela administração
func (a *API) upsertSplits(w http.ResponseWriter, r *http.Request) {
	items, err := decodeOneOrMany[fadesrepo.SplitInput](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty payload"})
		return
	}

	failed, err := a.Fades.UpsertSplits(r.Context(), items)
	resp := map[string]any{"upserted": len(items) - len(failed), "failed": failed}
	if err != nil {
		resp["error"] = err.Error()
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeOneOrMany aceita tanto um objeto único quanto um array de objetos
func decodeOneOrMany[T any](r *http.Request) ([]T, error) {
	body := json.NewDecoder(r.Body)

	var raw json.RawMessage
	if err := body.Decode(&raw); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var many []T
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	}

	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryFloat(r *http.Request, name string, def float64) float64 {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
