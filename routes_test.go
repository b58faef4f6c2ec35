package ephdash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ghiac/ephdash/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Dashboard) {
	t.Helper()
	d, _, _ := newTestDashboard(t)
	router := gin.New()
	d.RegisterRoutes(router)
	return router, d
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRoutes_IndexWithoutEnv(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/", "/index.html", "/?repo=tilt-dev%2Ftilt-example-html"} {
		w := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `id="repo"`) {
			t.Errorf("GET %s should render the repo selector", path)
		}
	}
}

func TestRoutes_IndexAcceptsPost(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, postForm("/?repo=tilt-dev%2Ftilt-example-html", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("POST / status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `<option value="tilt-dev/tilt-example-html" selected>`) {
		t.Error("POST / should render the page for the query selection")
	}
}

func TestRoutes_CreateThenIndex(t *testing.T) {
	router, d := newTestRouter(t)

	w := serve(router, postForm("/create", url.Values{
		"repo":   {"tilt-dev/tilt-avatars"},
		"branch": {"main"},
		"path":   {"Tiltfile"},
	}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /create status = %d, want 303: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect Location = %q, want /", loc)
	}

	env, err := d.GetEnv(context.Background(), "alice")
	if err != nil || env == nil {
		t.Fatalf("env not created: %v", err)
	}
	if err := d.AppendLogs(context.Background(), "alice", "", []string{"hello from tilt"}); err != nil {
		t.Fatal(err)
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()
	for _, want := range []string{`class="logpane"`, "hello from tilt", `class="expirationCountdown"`, "(15 minutes left)", "https://alice.envs.example.com/"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestRoutes_CreateErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"missing path", url.Values{"repo": {"tilt-dev/tilt-avatars"}, "branch": {"main"}}, http.StatusBadRequest},
		{"unknown repo", url.Values{"repo": {"evil/repo"}, "branch": {"main"}, "path": {"Tiltfile"}}, http.StatusForbidden},
		{"bad path", url.Values{"repo": {"tilt-dev/tilt-avatars"}, "branch": {"main"}, "path": {"../etc/passwd"}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, postForm("/create", tt.form))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRoutes_Delete(t *testing.T) {
	router, d := newTestRouter(t)
	if _, err := d.SetEnvSpec(context.Background(), "alice", avatars); err != nil {
		t.Fatal(err)
	}

	w := serve(router, postForm("/delete", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST /delete status = %d, want 303", w.Code)
	}
	if env, _ := d.GetEnv(context.Background(), "alice"); env != nil {
		t.Error("env should be deleted")
	}
}

func TestRoutes_EnvsAndChart(t *testing.T) {
	router, d := newTestRouter(t)
	if _, err := d.SetEnvSpec(context.Background(), "bob", avatars); err != nil {
		t.Fatal(err)
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/envs", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "bob") {
		t.Errorf("GET /envs = %d, body missing bob", w.Code)
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/envs/chart", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Env Expirations") {
		t.Errorf("GET /envs/chart = %d", w.Code)
	}

	d.chartEnabled = false
	w = serve(router, httptest.NewRequest(http.MethodGet, "/envs/chart", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("disabled chart status = %d, want 503", w.Code)
	}
}

func TestRoutes_API(t *testing.T) {
	router, d := newTestRouter(t)
	env, err := d.SetEnvSpec(context.Background(), "alice", avatars)
	if err != nil {
		t.Fatal(err)
	}

	post := func(name, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/envs/"+name+"/logs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(router, req)
	}

	if w := post("alice", `{"lines":["a","b"]}`); w.Code != http.StatusOK {
		t.Errorf("append logs status = %d: %s", w.Code, w.Body.String())
	}
	if w := post("alice", `{"id":"`+env.ID+`","lines":["c"]}`); w.Code != http.StatusOK {
		t.Errorf("append logs with id status = %d", w.Code)
	}
	if w := post("alice", `{"id":"stale","lines":["d"]}`); w.Code != http.StatusConflict {
		t.Errorf("stale id status = %d, want 409", w.Code)
	}
	if w := post("nobody", `{"lines":["x"]}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown env status = %d, want 404", w.Code)
	}
	if w := post("alice", `{`); w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", w.Code)
	}

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/envs/alice", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET env status = %d", w.Code)
	}
	var got model.Env
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode env: %v", err)
	}
	if got.Name != "alice" || strings.Join(got.Logs, ",") != "a,b,c" {
		t.Errorf("env = %+v", got)
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/envs/nobody", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET missing env status = %d, want 404", w.Code)
	}
}

func TestRoutes_StaticAndHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/static/load.js", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "onBranchChange") {
		t.Errorf("GET /static/load.js = %d", w.Code)
	}

	w = serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	var health map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["version"] != Version() {
		t.Errorf("health = %v", health)
	}
}

func TestRoutes_UsernameFailure(t *testing.T) {
	d, err := New(testAllowlist, &Options{Auth: AuthSettings{Proxy: "http://127.0.0.1:1"}})
	if err != nil {
		t.Fatal(err)
	}
	router := gin.New()
	d.RegisterRoutes(router)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Reading username") {
		t.Errorf("body = %s", w.Body.String())
	}
}
