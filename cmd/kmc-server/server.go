package main

import (
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
	"github.com/kmcsim/kmc-core/internal/notify"
	"github.com/kmcsim/kmc-core/internal/notify/notifiers"
)

// Server is the HTTP control plane for kmc-sim: it manages a set of live
// simulation runs, each independently startable/stoppable/observable, and
// a shared notification manager fanning firings out to subscribers.
type Server struct {
	runs   *runManager
	notify *notify.Manager
	ws     *notifiers.WebSocketNotifier
	log    klog.Logger

	defaultStepCutoff int
	defaultTimeCutoff float64
}

// NewServer creates a Server with a live websocket notifier pre-registered
// under id "ws" so /ws/live always has somewhere to hook into.
func NewServer(log klog.Logger, defaultStepCutoff int, defaultTimeCutoff float64) *Server {
	mgr := notify.NewManager()
	ws := notifiers.NewWebSocketNotifier("ws")
	_ = mgr.Register(ws)

	return &Server{
		runs: newRunManager(), notify: mgr, ws: ws, log: log,
		defaultStepCutoff: defaultStepCutoff, defaultTimeCutoff: defaultTimeCutoff,
	}
}

// Close stops every run and shuts down the notification manager.
func (s *Server) Close() error {
	for _, id := range s.runs.List() {
		_ = s.runs.Delete(id)
	}
	return s.notify.Close()
}
