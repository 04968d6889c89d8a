package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"planbench/bench"
	"planbench/environment"
	"planbench/geometry"
	"planbench/mapgen"
	"planbench/registry"
)

const (
	maxRequestBytes = 8 << 20
	// maxGridCells bounds any grid a request can make the server allocate
	maxGridCells = 4 << 20
)

// SolveRequest asks for one solve. Environment may be omitted to use the map of
// the last /generateMap call. Start and Goal are [x, y].
type SolveRequest struct {
	Environment   *environment.Description `json:"environment,omitempty"`
	Planner       string                   `json:"planner"`
	PlannerParams map[string]interface{}   `json:"planner_params,omitempty"`
	Start         [2]float64               `json:"start"`
	Goal          [2]float64               `json:"goal"`
}

// server keeps the most recently generated map so clients can generate once and
// then compare planners on it
type server struct {
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	current environment.Environment
	solves  int
}

func newServer(logger *zap.SugaredLogger) *server {
	return &server{logger: logger}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/solve", corsMiddleware(s.solveHandler))
	mux.HandleFunc("/generateMap", corsMiddleware(s.generateMapHandler))
	mux.HandleFunc("/planners", corsMiddleware(s.plannersHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

// decode reads a JSON body of at most maxRequestBytes into v and writes the
// error response itself when that fails
func (s *server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	s.logger.Warnw("invalid request body", "path", r.URL.Path, "error", err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// checkGridSize rejects grids over maxGridCells. Non-positive sizes are left to
// the grid constructors, which report them.
func checkGridSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if width > maxGridCells || height > maxGridCells/width {
		return errors.Errorf("grid of %d x %d cells exceeds the limit of %d cells", width, height, maxGridCells)
	}
	return nil
}

// POST /solve - run one planner and return the visualization document
func (s *server) solveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.logger.Warnw("method not allowed", "path", r.URL.Path, "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SolveRequest
	if !s.decode(w, r, &req) {
		return
	}

	var env environment.Environment
	if req.Environment != nil {
		if req.Environment.Type == environment.KindGrid {
			if err := checkGridSize(req.Environment.Width, req.Environment.Height); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		built, err := environment.FromDescription(*req.Environment)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		env = built
	} else {
		s.mu.RLock()
		env = s.current
		s.mu.RUnlock()
		if env == nil {
			writeError(w, http.StatusBadRequest, "no environment given and no map generated. Call /generateMap first")
			return
		}
	}

	// Planners are not safe for concurrent use, every request builds its own
	p, err := registry.New(req.Planner, req.PlannerParams, s.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, goal := geometry.FromXY(req.Start), geometry.FromXY(req.Goal)
	s.logger.Infow("solve request", "planner", req.Planner, "environment", env.Kind(), "start", start, "goal", goal)
	viz, err := bench.Solve(p, env, start, goal)
	if err != nil {
		s.logger.Errorw("solve failed", "planner", req.Planner, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.solves++
	s.mu.Unlock()

	s.logger.Infow("solve finished", "planner", req.Planner, "success", viz.Path.Success,
		"length", viz.Path.Length, "nodes_expanded", viz.NodesExpanded, "time_ms", viz.TimeMs)
	writeJSON(w, http.StatusOK, viz)
}

// POST /generateMap - generate a grid and keep it as the current map
func (s *server) generateMapHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := mapgen.Params{ObstacleDensity: 0.2, Seed: 42, Kind: mapgen.RandomUniform}
	if !s.decode(w, r, &params) {
		return
	}
	err := checkGridSize(params.Width, params.Height)
	if err == nil && params.Kind == mapgen.Maze {
		err = checkGridSize(2*params.Width+1, 2*params.Height+1)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	grid, err := mapgen.Generate(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.current = grid
	s.mu.Unlock()

	s.logger.Infow("map generated", "kind", params.Kind, "width", grid.Width(), "height", grid.Height(),
		"obstacles", grid.ObstacleCount(), "seed", params.Seed)
	writeJSON(w, http.StatusOK, grid.Describe())
}

// GET /planners - list planner names
func (s *server) plannersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"planners": registry.Names()})
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hasMap := s.current != nil
	solves := s.solves
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"hasMap": hasMap,
		"solves": solves,
	})
}
