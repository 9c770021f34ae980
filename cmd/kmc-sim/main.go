// Command kmc-sim is the batch trajectory dispatcher: it loads a model
// from a SQLite input database, runs N independent trajectories across a
// worker pool, and writes every trajectory's history to a SQLite sink
// database.
//
// Grounded on the reference Dispatcher (original_source/core/dispatcher.h):
// a seed queue feeds worker goroutines, the calling goroutine drains
// completed trajectories into batched transactions, and a final pass
// removes any duplicate (seed, step) rows left by a writer retry.
package main

import (
	"fmt"
	"os"

	"github.com/kmcsim/kmc-core/internal/kmc"
	"github.com/kmcsim/kmc-core/internal/kmc/klog"
	"github.com/kmcsim/kmc-core/internal/kmc/nanoparticle"
	"github.com/kmcsim/kmc-core/internal/kmc/network"
	"github.com/kmcsim/kmc-core/internal/kmc/solver"
	"github.com/kmcsim/kmc-core/internal/notify"
	"github.com/kmcsim/kmc-core/internal/notify/notifiers"
	"github.com/kmcsim/kmc-core/internal/store"
	"github.com/kmcsim/kmc-core/internal/store/sqlite"
)

func main() {
	cfg := loadRunConfig()
	log := klog.NewStdLogger(cfg.LogLevel)

	mgr := notify.NewManager()
	defer mgr.Close()
	var notifierIDs []string
	if cfg.WebhookURL != "" {
		wh := notifiers.NewWebhookNotifier("cli-webhook", cfg.WebhookURL)
		if err := mgr.Register(wh); err != nil {
			log.Warnf("could not register notification webhook: %v", err)
		} else {
			notifierIDs = append(notifierIDs, "cli-webhook")
		}
	}

	var err error
	switch cfg.Model {
	case "network":
		err = runNetwork(cfg, log, mgr, notifierIDs)
	case "nanoparticle":
		err = runNanoparticle(cfg, log, mgr, notifierIDs)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runNetwork(cfg runConfig, log klog.Logger, mgr *notify.Manager, notifierIDs []string) error {
	modelDB, err := sqlite.OpenReadOnly(cfg.ModelDB)
	if err != nil {
		return fmt.Errorf("opening model database: %w", err)
	}
	defer modelDB.Close()

	metadata, err := sqlite.NetworkMetadataReader(modelDB)
	if err != nil {
		return err
	}
	factors, err := sqlite.NetworkFactorsReader(modelDB)
	if err != nil {
		return err
	}
	initialState, err := sqlite.NetworkInitialStateReader(modelDB)
	if err != nil {
		return err
	}
	reactions, err := sqlite.NetworkReactionsReader(modelDB)
	if err != nil {
		return err
	}

	net, err := store.LoadNetwork(metadata, factors, initialState, reactions, cfg.DependencyThreshold, log)
	if err != nil {
		return fmt.Errorf("loading network model: %w", err)
	}
	log.Infof("network model loaded: reactions=%d", len(net.Reactions))

	trajDB, err := sqlite.OpenWritable(cfg.TrajectoriesDB)
	if err != nil {
		return fmt.Errorf("opening trajectories database: %w", err)
	}
	defer trajDB.Close()
	if err := sqlite.EnsureNetworkTrajectorySchema(trajDB); err != nil {
		return fmt.Errorf("ensuring trajectory schema: %w", err)
	}
	writer := sqlite.NetworkTrajectoryWriter(trajDB)

	newModel := func() kmc.Model[network.HistoryElement] { return net }

	toRow := func(seed uint64, step int, h network.HistoryElement) store.NetworkHistoryRow {
		return store.NetworkHistoryRow{Seed: seed, Step: step, ReactionID: h.ReactionID, Time: h.Time}
	}
	toEvent := func(seed uint64, step int, h network.HistoryElement) notify.Event {
		return notify.NewNetworkEvent(cfg.RunID, seed, step, h.ReactionID, h.Time)
	}

	if err := dispatch(cfg, log, mgr, notifierIDs, newModel, solver.NewDirect, writer, toRow, toEvent); err != nil {
		return err
	}
	return sqlite.DedupeNetworkTrajectories(trajDB)
}

func runNanoparticle(cfg runConfig, log klog.Logger, mgr *notify.Manager, notifierIDs []string) error {
	modelDB, err := sqlite.OpenReadOnly(cfg.ModelDB)
	if err != nil {
		return fmt.Errorf("opening model database: %w", err)
	}
	defer modelDB.Close()

	metadata, err := sqlite.NanoparticleMetadataReader(modelDB)
	if err != nil {
		return err
	}
	factors, err := sqlite.NanoparticleFactorsReader(modelDB)
	if err != nil {
		return err
	}
	species, err := sqlite.NanoparticleSpeciesReader(modelDB)
	if err != nil {
		return err
	}
	sites, err := sqlite.NanoparticleSitesReader(modelDB)
	if err != nil {
		return err
	}
	initialState, err := sqlite.NanoparticleInitialStateReader(modelDB)
	if err != nil {
		return err
	}
	interactions, err := sqlite.NanoparticleInteractionsReader(modelDB)
	if err != nil {
		return err
	}

	model, err := store.LoadNanoparticle(metadata, factors, species, sites, initialState, interactions, log)
	if err != nil {
		return fmt.Errorf("loading nanoparticle model: %w", err)
	}
	log.Infof("nanoparticle model loaded: sites=%d", len(model.Sites))

	trajDB, err := sqlite.OpenWritable(cfg.TrajectoriesDB)
	if err != nil {
		return fmt.Errorf("opening trajectories database: %w", err)
	}
	defer trajDB.Close()
	if err := sqlite.EnsureNanoparticleTrajectorySchema(trajDB); err != nil {
		return fmt.Errorf("ensuring trajectory schema: %w", err)
	}
	writer := sqlite.NanoparticleTrajectoryWriter(trajDB)

	newModel := func() kmc.Model[nanoparticle.HistoryElement] { return model.NewTrajectory() }

	toRow := func(seed uint64, step int, h nanoparticle.HistoryElement) store.NanoparticleHistoryRow {
		return store.NanoparticleHistoryRow{
			Seed: seed, Step: step, Time: h.Time,
			SiteID1: h.SiteID[0], SiteID2: h.SiteID[1], InteractionID: h.InteractionID,
		}
	}
	toEvent := func(seed uint64, step int, h nanoparticle.HistoryElement) notify.Event {
		return notify.NewNanoparticleEvent(cfg.RunID, seed, step, h.InteractionID, h.SiteID, h.Time)
	}

	if err := dispatch(cfg, log, mgr, notifierIDs, newModel, solver.NewDirect, writer, toRow, toEvent); err != nil {
		return err
	}
	return sqlite.DedupeNanoparticleTrajectories(trajDB)
}

// dispatch runs cfg.NumSimulations trajectories across cfg.Workers workers,
// writing every trajectory's history through writer and, if notifierIDs is
// non-empty, enqueuing a notification for every step.
func dispatch[H any, R any](
	cfg runConfig,
	log klog.Logger,
	mgr *notify.Manager,
	notifierIDs []string,
	newModel func() kmc.Model[H],
	newSolver kmc.SolverFactory,
	writer store.RowWriter[R],
	toRow func(seed uint64, step int, h H) R,
	toEvent func(seed uint64, step int, h H) notify.Event,
) error {
	seeds := feedSeeds(cfg.BaseSeed, cfg.NumSimulations)
	results := make(chan historyPacket[H], cfg.Workers)

	runWorkers(seeds, results, newModel, newSolver, cfg.StepCutoff, cfg.TimeCutoff, cfg.Workers, log)

	written := 0
	for packet := range results {
		for step, h := range packet.history {
			if err := writer.Write(toRow(packet.seed, step, h)); err != nil {
				return fmt.Errorf("writing trajectory history: seed=%d step=%d: %w", packet.seed, step, err)
			}
			if len(notifierIDs) > 0 {
				mgr.Enqueue(toEvent(packet.seed, step, h), notifierIDs)
			}
		}
		written++
		log.Infof("trajectory written: seed=%d steps=%d (%d/%d)", packet.seed, len(packet.history), written, cfg.NumSimulations)
	}

	return writer.Flush()
}
