package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/netforce/pkg/observability"
)

func TestHooksUpdateCollectors(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.OnParseComplete(ctx, 10, 12, 2, time.Millisecond, nil)
	m.OnParseComplete(ctx, 0, 0, 0, time.Millisecond, errors.New("bad"))
	m.OnRelaxStart(ctx, 10, 12)
	if got := testutil.ToFloat64(m.ActiveRelax); got != 1 {
		t.Errorf("active relaxations = %v, want 1", got)
	}
	m.OnBatch(ctx, 0, 0.5)
	m.OnRelaxComplete(ctx, 300, time.Second, nil)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheSet(ctx, "layout", 128)
	m.OnStoreOp(ctx, "file", "put", time.Millisecond, nil)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"warnings", testutil.ToFloat64(m.ParseWarnings), 2},
		{"ticks", testutil.ToFloat64(m.RelaxTicks), 300},
		{"active", testutil.ToFloat64(m.ActiveRelax), 0},
		{"cache hit", testutil.ToFloat64(m.CacheRequests.WithLabelValues("layout", "hit")), 1},
		{"cache miss", testutil.ToFloat64(m.CacheRequests.WithLabelValues("layout", "miss")), 1},
		{"cache bytes", testutil.ToFloat64(m.CacheBytes.WithLabelValues("layout")), 128},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if n := testutil.CollectAndCount(m.ParseDuration); n != 2 {
		t.Errorf("parse duration series = %d, want ok and error", n)
	}
}

func TestInstall(t *testing.T) {
	m := New()
	m.Install()
	t.Cleanup(observability.Reset)

	observability.Cache().OnCacheMiss(context.Background(), "snapshot")
	if got := testutil.ToFloat64(m.CacheRequests.WithLabelValues("snapshot", "miss")); got != 1 {
		t.Errorf("installed hooks did not reach collectors: %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), `netforce_http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Errorf("exposition missing request counter:\n%s", body)
	}
}
