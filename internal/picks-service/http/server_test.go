package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gradingservice "github.com/radieske/sports-picks-pipeline/internal/grading/service"
)

func TestAdminEndpointsRejectWithoutToken(t *testing.T) {
	api := &API{AdminToken: "s3cret"}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	for _, path := range []string{"/v1/admin/grade", "/v1/admin/splits"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("POST %s without token: status = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestAdminEndpointsRejectWrongToken(t *testing.T) {
	api := &API{AdminToken: "s3cret"}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/admin/grade", strings.NewReader(`{}`))
	req.Header.Set("X-Admin-Token", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminEndpointsRejectWhenSecretUnset(t *testing.T) {
	api := &API{AdminToken: ""}
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/admin/grade", strings.NewReader(`{}`))
	req.Header.Set("X-Admin-Token", "anything")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unset secret: status = %d, want 401 for any token", resp.StatusCode)
	}
}

func TestDecodeOneOrMany(t *testing.T) {
	single := `{"sport":"nfl","game_date":"2026-09-06","home_team":"Chiefs","away_team":"Bills","home_score":24,"away_score":20}`
	array := `[` + single + `,` + single + `]`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(single))
	items, err := decodeOneOrMany[gradingservice.Item](req)
	if err != nil {
		t.Fatalf("single object: %v", err)
	}
	if len(items) != 1 || items[0].Sport != "nfl" || items[0].HomeScore != 24 {
		t.Errorf("single object decoded as %+v", items)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(array))
	items, err = decodeOneOrMany[gradingservice.Item](req)
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("array decoded to %d items, want 2", len(items))
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
	if _, err := decodeOneOrMany[gradingservice.Item](req); err == nil {
		t.Error("malformed payload did not error")
	}
}

func TestQueryParamHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/fades?days=3&publicThreshold=65.5&minConfidence=bogus", nil)

	if got := queryInt(req, "days", 7); got != 3 {
		t.Errorf("queryInt(days) = %d, want 3", got)
	}
	if got := queryInt(req, "minConfidence", 55); got != 55 {
		t.Errorf("queryInt(bogus) = %d, want default 55", got)
	}
	if got := queryInt(req, "missing", 9); got != 9 {
		t.Errorf("queryInt(missing) = %d, want default 9", got)
	}
	if got := queryFloat(req, "publicThreshold", 60); got != 65.5 {
		t.Errorf("queryFloat(publicThreshold) = %v, want 65.5", got)
	}
	if got := queryFloat(req, "missing", 60); got != 60 {
		t.Errorf("queryFloat(missing) = %v, want default 60", got)
	}
}
