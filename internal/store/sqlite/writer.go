package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/kmcsim/kmc-core/internal/store"
)

// transactionSize mirrors the reference dispatcher's batching constant:
// commit and open a fresh transaction every transactionSize rows,
// rather than one transaction per row (too slow) or one for an entire
// multi-million-row run (too much uncommitted work to lose on a crash).
const transactionSize = 20000

// batchWriter buffers writes inside a transaction, committing and
// reopening every transactionSize rows. insert is called once per
// pending row inside the active transaction.
type batchWriter[T any] struct {
	db     *sql.DB
	tx     *sql.Tx
	count  int
	insert func(*sql.Tx, T) error
}

func newBatchWriter[T any](db *sql.DB, insert func(*sql.Tx, T) error) *batchWriter[T] {
	return &batchWriter[T]{db: db, insert: insert}
}

func (w *batchWriter[T]) Write(row T) error {
	if w.tx == nil {
		tx, err := w.db.Begin()
		if err != nil {
			return fmt.Errorf("sqlite: begin transaction: %w", err)
		}
		w.tx = tx
	}

	if err := w.insert(w.tx, row); err != nil {
		_ = w.tx.Rollback()
		w.tx = nil
		w.count = 0
		return err
	}

	w.count++
	if w.count >= transactionSize {
		if err := w.tx.Commit(); err != nil {
			return fmt.Errorf("sqlite: commit transaction: %w", err)
		}
		w.tx = nil
		w.count = 0
	}
	return nil
}

func (w *batchWriter[T]) Flush() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	w.count = 0
	if err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

// NetworkTrajectoryWriter writes reaction-network history rows,
// batching commits at transactionSize rows. Call Flush when a
// trajectory's history has been fully written, since a caller writing
// many trajectories would otherwise leave the last partial batch
// uncommitted.
func NetworkTrajectoryWriter(db *sql.DB) store.RowWriter[store.NetworkHistoryRow] {
	return newBatchWriter(db, func(tx *sql.Tx, r store.NetworkHistoryRow) error {
		_, err := tx.Exec(
			`INSERT INTO network_trajectories (seed, step, reaction_id, time) VALUES (?, ?, ?, ?)`,
			r.Seed, r.Step, r.ReactionID, r.Time)
		return err
	})
}

// NanoparticleTrajectoryWriter writes nanoparticle history rows,
// batching commits at transactionSize rows.
func NanoparticleTrajectoryWriter(db *sql.DB) store.RowWriter[store.NanoparticleHistoryRow] {
	return newBatchWriter(db, func(tx *sql.Tx, r store.NanoparticleHistoryRow) error {
		_, err := tx.Exec(
			`INSERT INTO nanoparticle_trajectories (seed, step, time, site_id_1, site_id_2, interaction_id) VALUES (?, ?, ?, ?, ?, ?)`,
			r.Seed, r.Step, r.Time, r.SiteID1, r.SiteID2, r.InteractionID)
		return err
	})
}
