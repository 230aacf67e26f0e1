package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sanonone/beams/pkg/graph"
	"github.com/sanonone/beams/pkg/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestRunner(t *testing.T, entities int) *Runner {
	t.Helper()
	nodes := []graph.Node{
		{Pos: r3.Vec{X: -100}}, {Pos: r3.Vec{X: 100}},
		{Pos: r3.Vec{Y: 100}}, {Pos: r3.Vec{Z: 100}},
	}
	store, err := graph.Build(nodes, []graph.EdgeKey{
		{Src: 0, Dest: 1}, {Src: 1, Dest: 2}, {Src: 2, Dest: 3}, {Src: 3, Dest: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	cfg.Entities = entities
	s, err := sim.New(store, cfg, sim.NewRand(42))
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(s, 60)
}

func TestHealthzEndpoint(t *testing.T) {
	s := NewServer(newTestRunner(t, 1), ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("healthz expected 200, got %d", resp.StatusCode)
	}
}

func TestFrameAndStatsEndpoints(t *testing.T) {
	runner := newTestRunner(t, 3)
	for range 5 {
		runner.Step()
	}
	s := NewServer(runner, ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/frame")
	if err != nil {
		t.Fatal(err)
	}
	var f sim.Frame
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if f.Tick != 5 || len(f.Nodes) != 4 || len(f.Entities) != 3 {
		t.Errorf("unexpected frame: tick=%d nodes=%d entities=%d", f.Tick, len(f.Nodes), len(f.Entities))
	}

	resp, err = http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	var st sim.Stats
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if st.NeighborEntries != 2*st.Edges {
		t.Errorf("neighbor entries %d, want %d", st.NeighborEntries, 2*st.Edges)
	}
	if st.Modes[sim.KindRails]+st.Modes[sim.KindFree]+st.Modes[sim.KindCore] != 3 {
		t.Errorf("mode counts do not add up: %v", st.Modes)
	}
}

func TestNodeEndpoint(t *testing.T) {
	s := NewServer(newTestRunner(t, 0), ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	cases := map[string]int{
		"/nodes/1":   http.StatusOK,
		"/nodes/99":  http.StatusNotFound,
		"/nodes/abc": http.StatusBadRequest,
	}
	for path, want := range cases {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestOrientationEndpoint(t *testing.T) {
	runner := newTestRunner(t, 0)
	s := NewServer(runner, ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	put := func(body string) *http.Response {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/orientation", bytes.NewBufferString(body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// 1. Set both angles.
	resp := put(`{"roll": 0.5, "yaw": -0.25}`)
	var a sim.Angles
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || a.Roll != 0.5 || a.Yaw != -0.25 {
		t.Fatalf("PUT /orientation: status %d, angles %+v", resp.StatusCode, a)
	}

	// 2. A partial update keeps the other angle.
	resp = put(`{"yaw": 1}`)
	resp.Body.Close()
	if got := runner.Angles(); got.Roll != 0.5 || got.Yaw != 1 {
		t.Errorf("partial update: got %+v", got)
	}

	// 3. Pitch is not writable and unknown fields are rejected.
	resp = put(`{"pitch": 3}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", resp.StatusCode)
	}

	// 4. The new angles drive the next tick; pitch keeps accumulating.
	runner.Step()
	resp, err := http.Get(ts.URL + "/orientation")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if a.Roll != 0.5 || a.Yaw != 1 || a.Pitch == 0 {
		t.Errorf("after tick: %+v", a)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s := NewServer(newTestRunner(t, 0), ":0")
	h := s.RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestMetricsAndUI(t *testing.T) {
	runner := newTestRunner(t, 2)
	runner.Step()
	s := NewServer(runner, ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	resp.Body.Close()
	if !bytes.Contains(body.Bytes(), []byte("beams_ticks_total")) {
		t.Error("metrics output is missing beams_ticks_total")
	}

	resp, err = http.Get(ts.URL + "/ui/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ui expected 200, got %d", resp.StatusCode)
	}
}
