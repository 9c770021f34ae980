// Package sqlite is the SQLite-backed implementation of the store
// package's row reader/writer contracts: it reads a model's input
// tables and writes trajectory history rows, batching writes into
// transactions the way the reference dispatcher does.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenReadOnly opens a model input database. Callers must Close it.
func OpenReadOnly(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	return db, nil
}

// OpenWritable opens (creating if absent) a trajectory sink database.
func OpenWritable(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc", path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}
	return db, nil
}

const networkTrajectorySchema = `
CREATE TABLE IF NOT EXISTS network_trajectories (
	seed        INTEGER NOT NULL,
	step        INTEGER NOT NULL,
	reaction_id INTEGER NOT NULL,
	time        REAL NOT NULL
);
`

const nanoparticleTrajectorySchema = `
CREATE TABLE IF NOT EXISTS nanoparticle_trajectories (
	seed           INTEGER NOT NULL,
	step           INTEGER NOT NULL,
	time           REAL NOT NULL,
	site_id_1      INTEGER NOT NULL,
	site_id_2      INTEGER NOT NULL,
	interaction_id INTEGER NOT NULL
);
`

// EnsureNetworkTrajectorySchema creates the reaction-network trajectory
// sink table if it does not already exist.
func EnsureNetworkTrajectorySchema(db *sql.DB) error {
	_, err := db.Exec(networkTrajectorySchema)
	return err
}

// EnsureNanoparticleTrajectorySchema creates the nanoparticle trajectory
// sink table if it does not already exist.
func EnsureNanoparticleTrajectorySchema(db *sql.DB) error {
	_, err := db.Exec(nanoparticleTrajectorySchema)
	return err
}

// DedupeNetworkTrajectories removes duplicate (seed, step) rows, keeping
// the lowest rowid per group. Run once after all trajectories for a run
// have been written — concurrent writers can otherwise both retry a
// write for the same (seed, step) pair after a transient failure.
func DedupeNetworkTrajectories(db *sql.DB) error {
	_, err := db.Exec(`
		DELETE FROM network_trajectories WHERE rowid NOT IN
		(SELECT MIN(rowid) FROM network_trajectories GROUP BY seed, step);
	`)
	return err
}

// DedupeNanoparticleTrajectories is DedupeNetworkTrajectories's
// nanoparticle-table counterpart.
func DedupeNanoparticleTrajectories(db *sql.DB) error {
	_, err := db.Exec(`
		DELETE FROM nanoparticle_trajectories WHERE rowid NOT IN
		(SELECT MIN(rowid) FROM nanoparticle_trajectories GROUP BY seed, step);
	`)
	return err
}
