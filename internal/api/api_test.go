package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/algiz/internal/sdncache"
	"github.com/starford/algiz/internal/sdnservice"
	"github.com/starford/algiz/internal/upstream"
)

const sampleCSV = "id,name\n1,Jane Roe\n2,John Roe\n"

type fakeUpstream struct {
	srv   *httptest.Server
	hits  atomic.Int64
	body  atomic.Value // string
	fail  atomic.Bool
	state atomic.Int32 // HTTP status when fail is set
}

func newFakeUpstream(t *testing.T, body string) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{}
	u.body.Store(body)
	u.state.Store(http.StatusBadGateway)
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		u.hits.Add(1)
		if u.fail.Load() {
			w.WriteHeader(int(u.state.Load()))
			return
		}
		_, _ = w.Write([]byte(u.body.Load().(string)))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

// testEnv wires a fake upstream, cache, service, and router, mirroring the
// production composition in internal.Run.
func testEnv(t *testing.T, csv string, ttl time.Duration, limit int) (*fakeUpstream, http.Handler) {
	t.Helper()
	up := newFakeUpstream(t, csv)
	fetcher := upstream.NewClient(up.srv.URL, "algiz-test/1.0", 5*time.Second, nil)
	cache := sdncache.New(fetcher, ttl)
	svc := sdnservice.NewService(cache, limit)
	return up, NewRouter(svc, nil)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSDNScenario(t *testing.T) {
	_, router := testEnv(t, sampleCSV, time.Hour, 200)

	w := get(t, router, "/getsdn?name=roe")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("count = %d, results = %d, want 2/2", resp.Count, len(resp.Results))
	}
	if resp.Results[0].Name != "Jane Roe" || resp.Results[1].Name != "John Roe" {
		t.Errorf("results out of file order: %v", resp.Results)
	}

	w = get(t, router, "/getsdn?name=jane")
	var resp2 QueryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp2)
	if resp2.Count != 1 {
		t.Errorf("jane count = %d, want 1", resp2.Count)
	}
}

func TestGetSDNShortNameRejectedWithoutUpstream(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Hour, 200)

	for _, target := range []string{"/getsdn?name=a", "/getsdn"} {
		w := get(t, router, target)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, w.Code)
		}
	}
	if up.hits.Load() != 0 {
		t.Errorf("upstream hits = %d, want 0", up.hits.Load())
	}
}

func TestGetSDNCacheHitWithinTTL(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Hour, 200)

	for range 3 {
		if w := get(t, router, "/getsdn?name=roe"); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	if up.hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1 within TTL", up.hits.Load())
	}
}

func TestGetSDNUpstreamDownColdCache(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Hour, 200)
	up.fail.Store(true)

	w := get(t, router, "/getsdn?name=roe")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestGetSDNDecodeFailureColdCache(t *testing.T) {
	_, router := testEnv(t, "id,name\n1,\"broken\n", time.Hour, 200)

	w := get(t, router, "/getsdn?name=roe")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestGetSDNServesStaleAfterUpstreamDies(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Nanosecond, 200)

	if w := get(t, router, "/getsdn?name=roe"); w.Code != http.StatusOK {
		t.Fatalf("warm-up status = %d", w.Code)
	}

	up.fail.Store(true)
	time.Sleep(time.Millisecond)

	w := get(t, router, "/getsdn?name=roe")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 from the stale snapshot", w.Code)
	}
	var resp QueryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestHealthzOK(t *testing.T) {
	_, router := testEnv(t, sampleCSV, time.Hour, 200)

	w := get(t, router, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "ok" || st.Rows != 2 {
		t.Errorf("health = %+v", st)
	}
	if st.Source == "" || st.Snapshot == "" {
		t.Errorf("health missing source/snapshot: %+v", st)
	}
}

func TestHealthzDegradedNever5xx(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Hour, 200)
	up.fail.Store(true)

	w := get(t, router, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when degraded", w.Code)
	}
	var st HealthResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Status != "degraded" {
		t.Errorf("status = %q, want degraded", st.Status)
	}
	if st.Detail == "" {
		t.Error("degraded response should carry a detail")
	}
}

func TestLivenessProbe(t *testing.T) {
	up, router := testEnv(t, sampleCSV, time.Hour, 200)

	w := get(t, router, "/health/live")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if up.hits.Load() != 0 {
		t.Errorf("liveness probe must not touch the cache, hits = %d", up.hits.Load())
	}
}

func TestResultLimitTruncation(t *testing.T) {
	csv := "id,name\n"
	for range 5 {
		csv += "x,Jane Roe\n"
	}
	_, router := testEnv(t, csv, time.Hour, 2)

	w := get(t, router, "/getsdn?name=roe")
	var resp QueryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 5 {
		t.Errorf("count = %d, want 5", resp.Count)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2 (limit)", len(resp.Results))
	}
}
