package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netforce/internal/metrics"
	"github.com/matzehuels/netforce/pkg/cache"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/graph"
	"github.com/matzehuels/netforce/pkg/pipeline"
	"github.com/matzehuels/netforce/pkg/store"
)

const triangle = `<network><graph>
  <node Id="a" like_count="1" talking_about_count="0"/>
  <node Id="b" like_count="1" talking_about_count="0"/>
  <node Id="c" like_count="1" talking_about_count="0"/>
  <edge Id="ab" Source="a" Target="b"/>
  <edge Id="bc" Source="b" Target="c"/>
  <edge Id="ca" Source="c" Target="a"/>
  <edge Id="cx" Source="c" Target="x"/>
</graph></network>`

type fixture struct {
	srv     *httptest.Server
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, server pipeline.ServerConfig) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New()
	s, err := New(Config{
		Runner:   pipeline.NewRunner(cache.NewNullCache(), nil, logger),
		Store:    st,
		Metrics:  m,
		Logger:   logger,
		Defaults: pipeline.Options{Ticks: 50},
		Server:   server,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &fixture{srv: ts, metrics: m}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{})
	resp := f.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestLayoutLifecycle(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{})

	resp := f.do(t, http.MethodPost, "/v1/layouts?ticks=20&locked=2&seed=3", triangle)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Netforce-Warnings") != "1" || resp.Header.Get("X-Netforce-Cache") != "miss" {
		t.Errorf("headers = %v", resp.Header)
	}
	created := decode[graph.Snapshot](t, resp)
	if created.ID == "" || len(created.EdgeStart) != 3 || len(created.Locked) != 2 {
		t.Fatalf("created snapshot = %+v", created)
	}
	if created.Stats == nil || created.Stats.Ticks != 20 {
		t.Errorf("ticks override not applied: %+v", created.Stats)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/layouts/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	resp = f.do(t, http.MethodGet, "/v1/layouts/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if got := decode[graph.Snapshot](t, resp); got.ID != created.ID {
		t.Errorf("get returned %s", got.ID)
	}

	resp = f.do(t, http.MethodGet, "/v1/layouts", "")
	list := decode[struct {
		Layouts []graph.Summary `json:"layouts"`
	}](t, resp)
	if len(list.Layouts) != 1 || list.Layouts[0].Edges != 3 {
		t.Errorf("list = %+v", list)
	}

	resp = f.do(t, http.MethodDelete, "/v1/layouts/"+created.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodGet, "/v1/layouts/"+created.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", resp.StatusCode)
	}
	if body := decode[errorBody](t, resp); body.Error.Code != errors.ErrCodeNotFound {
		t.Errorf("error code = %s", body.Error.Code)
	}

	resp = f.do(t, http.MethodDelete, "/v1/layouts/"+created.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}
}

func TestCreateLayoutErrors(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{})
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   errors.Code
	}{
		{"bad ticks", "?ticks=many", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"zero ticks", "?ticks=0", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too many ticks", "?ticks=100001", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad seed", "?seed=-1", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad placement", "?placement=spiral", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty body", "", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed xml", "", "<network><graph>", http.StatusBadRequest, errors.ErrCodeParse},
		{"bad attribute", "", `<network><graph><node Id="a" like_count="x" talking_about_count="0"/></graph></network>`,
			http.StatusBadRequest, errors.ErrCodeParse},
		{"graph out of range", "?graph=4", triangle, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/v1/layouts"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorBody](t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (message %q)", body.Error.Code, tt.code, body.Error.Message)
			}
			if body.Error.Message == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestCreateLayoutTooLarge(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{MaxBodyBytes: 32})
	resp := f.do(t, http.MethodPost, "/v1/layouts", triangle)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestGetLayoutInvalidID(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{})
	resp := f.do(t, http.MethodGet, "/v1/layouts/not-a-uuid", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, pipeline.ServerConfig{})
	f.do(t, http.MethodGet, "/healthz", "")

	resp := f.do(t, http.MethodGet, "/metrics", "")
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `netforce_http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Errorf("metrics output missing health request:\n%s", raw)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New without runner and store should fail")
	}
}
