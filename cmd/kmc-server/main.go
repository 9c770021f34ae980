// Command kmc-server is the HTTP control plane for kinetic Monte Carlo
// runs: create, start, stop, and observe one or more independent
// simulations, each loaded from its own model database, and subscribe to
// their firings over webhooks or a WebSocket feed.
package main

import (
	"log"
	"net/http"

	"github.com/kmcsim/kmc-core/internal/kmc/klog"
)

func main() {
	cfg := loadServerConfig()
	logger := klog.NewStdLogger(cfg.LogLevel)

	srv := NewServer(logger, cfg.DefaultStepCutoff, cfg.DefaultTimeCutoff)
	defer srv.Close()

	http.HandleFunc("/healthz", srv.handleHealth)
	http.HandleFunc("/runs", srv.handleRunsRoot)
	http.HandleFunc("/runs/", srv.handleRunRoutes)
	http.HandleFunc("/notifiers", srv.handleNotifierRoutes)
	http.HandleFunc("/notifiers/", srv.handleNotifierRoutes)
	http.HandleFunc("/ws/live", srv.handleWebSocketLive)

	logger.Infof("kmc-server listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
