package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/nanoparticle"
	"github.com/kmcsim/kmc-core/internal/kmc/network"
	"github.com/kmcsim/kmc-core/internal/kmc/solver"
	"github.com/kmcsim/kmc-core/internal/notify"
	"github.com/kmcsim/kmc-core/internal/notify/notifiers"
	"github.com/kmcsim/kmc-core/internal/store"
	"github.com/kmcsim/kmc-core/internal/store/sqlite"
)

// extractRunID extracts the run ID from a path like "/runs/{runID}/..."
// and returns it along with the remaining path suffix.
func extractRunID(path string) (RunID, string) {
	if !strings.HasPrefix(path, "/runs/") {
		return "", ""
	}
	rest := path[len("/runs/"):]
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return RunID(rest), ""
	}
	return RunID(rest[:idx]), rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// createRunRequest is the body for POST /runs/{runID}.
type createRunRequest struct {
	Model               string  `json:"model"`
	ModelDB             string  `json:"model_db"`
	Seed                uint64  `json:"seed"`
	StepCutoff          int     `json:"step_cutoff"`
	TimeCutoff          float64 `json:"time_cutoff"`
	DependencyThreshold int     `json:"dependency_threshold"`
}

// POST /runs/{runID}
// Loads a model from model_db and creates a new, not-yet-started run.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	if id == "" {
		http.Error(w, "run ID is required in path: /runs/{runID}", http.StatusBadRequest)
		return
	}
	s.createRun(w, r, id)
}

// POST /runs
// Same as handleCreateRun but assigns a generated run ID, for callers that
// don't care to name their own.
func (s *Server) handleCreateRunAuto(w http.ResponseWriter, r *http.Request) {
	s.createRun(w, r, RunID(uuid.NewString()))
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request, id RunID) {
	defer r.Body.Close()

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.StepCutoff <= 0 {
		req.StepCutoff = s.defaultStepCutoff
	}
	if req.TimeCutoff <= 0 {
		req.TimeCutoff = s.defaultTimeCutoff
	}

	var newRun run
	var err error
	switch req.Model {
	case "network":
		newRun, err = s.buildNetworkRun(id, req)
	case "nanoparticle":
		newRun, err = s.buildNanoparticleRun(id, req)
	default:
		http.Error(w, "model must be \"network\" or \"nanoparticle\", got "+req.Model, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Errorf("failed to create run: run_id=%s error=%v", id, err)
		http.Error(w, "cannot create run: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.runs.Add(id, newRun); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	s.log.Infof("run created: run_id=%s model=%s seed=%d", id, req.Model, req.Seed)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": string(id)})
}

func (s *Server) buildNetworkRun(id RunID, req createRunRequest) (run, error) {
	db, err := sqlite.OpenReadOnly(req.ModelDB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	metadata, err := sqlite.NetworkMetadataReader(db)
	if err != nil {
		return nil, err
	}
	factors, err := sqlite.NetworkFactorsReader(db)
	if err != nil {
		return nil, err
	}
	initialState, err := sqlite.NetworkInitialStateReader(db)
	if err != nil {
		return nil, err
	}
	reactions, err := sqlite.NetworkReactionsReader(db)
	if err != nil {
		return nil, err
	}

	net, err := store.LoadNetwork(metadata, factors, initialState, reactions, req.DependencyThreshold, s.log)
	if err != nil {
		return nil, err
	}

	sim := kmc.NewSimulation[network.HistoryElement](
		kmc.Model[network.HistoryElement](net), req.Seed, req.StepCutoff, req.TimeCutoff, solver.NewDirect)

	toEvent := func(seed uint64, step int, h network.HistoryElement) notify.Event {
		return notify.NewNetworkEvent(string(id), seed, step, h.ReactionID, h.Time)
	}
	return newSimRun(id, "network", sim, toEvent, s.notify, s.notify.List, s.log), nil
}

func (s *Server) buildNanoparticleRun(id RunID, req createRunRequest) (run, error) {
	db, err := sqlite.OpenReadOnly(req.ModelDB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	metadata, err := sqlite.NanoparticleMetadataReader(db)
	if err != nil {
		return nil, err
	}
	factors, err := sqlite.NanoparticleFactorsReader(db)
	if err != nil {
		return nil, err
	}
	species, err := sqlite.NanoparticleSpeciesReader(db)
	if err != nil {
		return nil, err
	}
	sites, err := sqlite.NanoparticleSitesReader(db)
	if err != nil {
		return nil, err
	}
	initialState, err := sqlite.NanoparticleInitialStateReader(db)
	if err != nil {
		return nil, err
	}
	interactions, err := sqlite.NanoparticleInteractionsReader(db)
	if err != nil {
		return nil, err
	}

	model, err := store.LoadNanoparticle(metadata, factors, species, sites, initialState, interactions, s.log)
	if err != nil {
		return nil, err
	}

	traj := model.NewTrajectory()
	sim := kmc.NewSimulation[nanoparticle.HistoryElement](
		kmc.Model[nanoparticle.HistoryElement](traj), req.Seed, req.StepCutoff, req.TimeCutoff, solver.NewDirect)

	toEvent := func(seed uint64, step int, h nanoparticle.HistoryElement) notify.Event {
		return notify.NewNanoparticleEvent(string(id), seed, step, h.InteractionID, h.SiteID, h.Time)
	}
	return newSimRun(id, "nanoparticle", sim, toEvent, s.notify, s.notify.List, s.log), nil
}

// POST /runs/{runID}/start?interval_ms=1000
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	rn, exists := s.runs.Get(id)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	interval := 100 * time.Millisecond
	if v := r.URL.Query().Get("interval_ms"); v != "" {
		interval = time.Duration(atoiOrDefault(v, 100)) * time.Millisecond
	}

	rn.Start(interval)
	s.log.Infof("run started: run_id=%s interval=%v", id, interval)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run started"))
}

// POST /runs/{runID}/stop
func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	rn, exists := s.runs.Get(id)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	rn.Stop()
	s.log.Infof("run stopped: run_id=%s", id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run stopped"))
}

// POST /runs/{runID}/tick
func (s *Server) handleTickRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	rn, exists := s.runs.Get(id)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	rn.Tick()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ticked"))
}

// GET /runs/{runID}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	rn, exists := s.runs.Get(id)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rn.Status()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// handleRunsRoot dispatches bare /runs requests by method: GET lists runs,
// POST creates one with a generated ID.
func (s *Server) handleRunsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListRuns(w, r)
	case http.MethodPost:
		s.handleCreateRunAuto(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ids := s.runs.List()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"runs": out}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// DELETE /runs/{runID}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, _ := extractRunID(r.URL.Path)
	if err := s.runs.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.Infof("run deleted: run_id=%s", id)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run deleted"))
}

// handleRunRoutes dispatches /runs/{runID}/... requests to the handler for
// the method and path suffix.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	id, remaining := extractRunID(r.URL.Path)
	if id == "" {
		http.Error(w, "run ID is required in path: /runs/{runID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remaining == "" && r.Method == http.MethodPost:
		s.handleCreateRun(w, r)
	case remaining == "" && r.Method == http.MethodGet:
		s.handleGetRun(w, r)
	case remaining == "" && r.Method == http.MethodDelete:
		s.handleDeleteRun(w, r)
	case remaining == "/start" && r.Method == http.MethodPost:
		s.handleStartRun(w, r)
	case remaining == "/stop" && r.Method == http.MethodPost:
		s.handleStopRun(w, r)
	case remaining == "/tick" && r.Method == http.MethodPost:
		s.handleTickRun(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// registerNotifierRequest is the body for POST /notifiers.
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, r *http.Request) {
	ids := s.notify.List()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"notifiers": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)
		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}
		if err := s.notify.Register(wh); err != nil {
			http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if id == "" || id == "ws" {
		http.Error(w, "cannot unregister the built-in websocket notifier", http.StatusBadRequest)
		return
	}
	if err := s.notify.Unregister(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

func (s *Server) handleNotifierRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /ws/live
// Upgrades to a WebSocket connection and subscribes it to every run's
// firings through the built-in "ws" notifier.
func (s *Server) handleWebSocketLive(w http.ResponseWriter, r *http.Request) {
	upgrader := s.ws.GetUpgrader()
	upgrader.CheckOrigin = func(*http.Request) bool { return true }
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	s.ws.RegisterClient(conn)
}
