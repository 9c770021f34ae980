package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/kmcsim/kmc-core/internal/store"
)

func networkFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.db")

	db, err := OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE metadata (number_of_species INTEGER, number_of_reactions INTEGER);
		CREATE TABLE factors (factor_zero REAL, factor_two REAL, factor_duplicate REAL);
		CREATE TABLE initial_state (species_id INTEGER, count INTEGER);
		CREATE TABLE reactions (
			reaction_id INTEGER,
			number_of_reactants INTEGER, number_of_products INTEGER,
			reactant_species_1 INTEGER, reactant_species_2 INTEGER,
			product_species_1 INTEGER, product_species_2 INTEGER,
			rate REAL
		);
		INSERT INTO metadata VALUES (2, 1);
		INSERT INTO factors VALUES (1.0, 1.0, 0.5);
		INSERT INTO initial_state VALUES (0, 10), (1, 0);
		INSERT INTO reactions VALUES (0, 1, 1, 0, -1, 1, -1, 1.0);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return path
}

func TestNetworkReadersRoundTrip(t *testing.T) {
	path := networkFixtureDB(t)
	db, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer db.Close()

	metadata, err := NetworkMetadataReader(db)
	if err != nil {
		t.Fatalf("NetworkMetadataReader: %v", err)
	}
	row, ok, err := metadata.Next()
	if err != nil || !ok {
		t.Fatalf("metadata.Next() = %v, %v, %v", row, ok, err)
	}
	if row.NumberOfSpecies != 2 || row.NumberOfReactions != 1 {
		t.Fatalf("metadata row = %+v, want {2 1}", row)
	}

	reactions, err := NetworkReactionsReader(db)
	if err != nil {
		t.Fatalf("NetworkReactionsReader: %v", err)
	}
	rows, err := store.ReadAll[store.NetworkReactionRow](reactions)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 || rows[0].Rate != 1.0 {
		t.Fatalf("reaction rows = %+v", rows)
	}
}

func TestNetworkTrajectoryWriterBatchesAndFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectories.db")
	db, err := OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	defer db.Close()

	if err := EnsureNetworkTrajectorySchema(db); err != nil {
		t.Fatalf("EnsureNetworkTrajectorySchema: %v", err)
	}

	w := NetworkTrajectoryWriter(db)
	for step := 0; step < 5; step++ {
		if err := w.Write(store.NetworkHistoryRow{Seed: 1, Step: step, ReactionID: 0, Time: float64(step)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM network_trajectories`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 5 {
		t.Fatalf("row count = %d, want 5", count)
	}
}

func TestDedupeNetworkTrajectoriesRemovesDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trajectories.db")
	db, err := OpenWritable(path)
	if err != nil {
		t.Fatalf("OpenWritable: %v", err)
	}
	defer db.Close()

	if err := EnsureNetworkTrajectorySchema(db); err != nil {
		t.Fatalf("EnsureNetworkTrajectorySchema: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO network_trajectories (seed, step, reaction_id, time) VALUES
		(1, 0, 0, 0.1), (1, 0, 0, 0.1), (1, 1, 2, 0.3)
	`); err != nil {
		t.Fatalf("seed duplicates: %v", err)
	}

	if err := DedupeNetworkTrajectories(db); err != nil {
		t.Fatalf("DedupeNetworkTrajectories: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM network_trajectories`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Fatalf("row count after dedupe = %d, want 2", count)
	}
}
