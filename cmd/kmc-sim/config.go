package main

import (
	"flag"
	"fmt"
	"os"
)

// runConfig holds the batch run's CLI configuration.
type runConfig struct {
	Model               string
	ModelDB             string
	TrajectoriesDB       string
	NumSimulations      int
	BaseSeed            uint64
	Workers             int
	StepCutoff          int
	TimeCutoff          float64
	DependencyThreshold int
	LogLevel            string
	WebhookURL          string
	RunID               string
}

func loadRunConfig() runConfig {
	cfg := runConfig{}

	flag.StringVar(&cfg.Model, "model", "network", "model kind: network or nanoparticle")
	flag.StringVar(&cfg.ModelDB, "model-db", "", "path to the model's input SQLite database (required)")
	flag.StringVar(&cfg.TrajectoriesDB, "trajectories-db", "", "path to the trajectory sink SQLite database (required)")
	flag.IntVar(&cfg.NumSimulations, "simulations", 1, "number of independent trajectories to run")
	var baseSeed int64
	flag.Int64Var(&baseSeed, "base-seed", 1, "first trajectory's RNG seed; trajectory i uses base-seed+i")
	flag.IntVar(&cfg.Workers, "workers", 4, "number of trajectory worker goroutines")
	flag.IntVar(&cfg.StepCutoff, "step-cutoff", 100000, "stop a trajectory once its step count exceeds this value")
	flag.Float64Var(&cfg.TimeCutoff, "time-cutoff", 1e9, "stop a trajectory once simulated time reaches this value")
	flag.IntVar(&cfg.DependencyThreshold, "dependency-threshold", 1000, "firing count after which a network reaction's dependency list is computed (network model only)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&cfg.WebhookURL, "notify-webhook", "", "optional webhook URL notified of every firing")
	flag.StringVar(&cfg.RunID, "run-id", "run", "identifier tagging this batch's notification events")
	flag.Parse()

	cfg.BaseSeed = uint64(baseSeed)

	if cfg.ModelDB == "" || cfg.TrajectoriesDB == "" {
		fmt.Fprintf(os.Stderr, "error: --model-db and --trajectories-db are required\n")
		flag.Usage()
		os.Exit(1)
	}
	if cfg.Model != "network" && cfg.Model != "nanoparticle" {
		fmt.Fprintf(os.Stderr, "error: --model must be \"network\" or \"nanoparticle\", got %q\n", cfg.Model)
		os.Exit(1)
	}

	return cfg
}
