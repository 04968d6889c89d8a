package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"planbench/bench"
	"planbench/environment"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newServer(zaptest.NewLogger(t).Sugar()).routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSolveWithDescription(t *testing.T) {
	ts := newTestServer(t)
	req := SolveRequest{
		Environment: &environment.Description{Type: environment.KindGrid, Width: 10, Height: 10},
		Planner:     "dijkstra",
		Start:       [2]float64{0, 0},
		Goal:        [2]float64{9, 9},
	}
	resp := post(t, ts.URL+"/solve", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var viz bench.Visualization
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&viz))
	assert.Equal(t, bench.VisualizationType, viz.Type)
	assert.Equal(t, "dijkstra", viz.Planner)
	assert.True(t, viz.Path.Success)
	assert.Len(t, viz.Path.States, 10)
	assert.Equal(t, 10, viz.Environment.Width)
}

func TestSolveUsesGeneratedMap(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/solve", SolveRequest{Planner: "astar", Goal: [2]float64{3, 3}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/generateMap", map[string]interface{}{"width": 12, "height": 12, "obstacle_density": 0.0, "seed": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var desc environment.Description
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&desc))
	assert.Equal(t, environment.KindGrid, desc.Type)
	assert.Len(t, desc.Occupancy, 12)

	resp = post(t, ts.URL+"/solve", SolveRequest{
		Planner:       "rrt",
		PlannerParams: map[string]interface{}{"max_iter": 3000},
		Start:         [2]float64{0.5, 0.5},
		Goal:          [2]float64{11.5, 11.5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var viz bench.Visualization
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&viz))
	assert.True(t, viz.Path.Success)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(health.Body).Decode(&status))
	assert.Equal(t, true, status["hasMap"])
	assert.Equal(t, 1.0, status["solves"])
}

func TestSolveRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)
	grid := &environment.Description{Type: environment.KindGrid, Width: 5, Height: 5}

	cases := []SolveRequest{
		{Environment: grid, Planner: "teleport"},
		{Environment: grid, Planner: "prm", PlannerParams: map[string]interface{}{"num_samples": 0}},
		{Environment: &environment.Description{Type: "hex"}, Planner: "astar"},
	}
	for _, req := range cases {
		resp := post(t, ts.URL+"/solve", req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%+v", req)
	}

	resp, err := http.Get(ts.URL + "/solve")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = post(t, ts.URL+"/generateMap", map[string]interface{}{"width": -1, "height": 5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestLimits(t *testing.T) {
	srv := newServer(zaptest.NewLogger(t).Sugar())
	handler := srv.routes()

	huge := `{"planner":"` + strings.Repeat("a", maxRequestBytes) + `"}`
	for _, path := range []string{"/solve", "/generateMap"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(huge)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, path)
	}

	ts := newTestServer(t)
	oversized := []map[string]interface{}{
		{"width": 1 << 40, "height": 1 << 40},
		{"width": maxGridCells, "height": 2},
		{"width": 2000, "height": 2000, "kind": "maze"},
	}
	for _, params := range oversized {
		resp := post(t, ts.URL+"/generateMap", params)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%v", params)
	}

	resp := post(t, ts.URL+"/solve", SolveRequest{
		Environment: &environment.Description{Type: environment.KindGrid, Width: 1 << 30, Height: 1 << 30},
		Planner:     "astar",
		Goal:        [2]float64{1, 1},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// a large map under the limit is still generated
	resp = post(t, ts.URL+"/generateMap", map[string]interface{}{"width": 512, "height": 512, "seed": 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPlannersAndPreflight(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/planners")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Planners []string `json:"planners"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Planners, 9)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/solve", nil)
	require.NoError(t, err)
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pre.Body.Close()
	assert.Equal(t, http.StatusOK, pre.StatusCode)
	assert.Equal(t, "POST, GET, OPTIONS", pre.Header.Get("Access-Control-Allow-Methods"))
}
