package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/kmcsim/kmc-core/internal/store"
)

// rowReader adapts a *sql.Rows cursor to store.RowReader[T] given a scan
// function, so every concrete reader below only has to supply the
// column list and destination fields.
type rowReader[T any] struct {
	rows *sql.Rows
	scan func(*sql.Rows) (T, error)
	done bool
}

func (r *rowReader[T]) Next() (T, bool, error) {
	var zero T
	if r.done {
		return zero, false, nil
	}
	if !r.rows.Next() {
		r.done = true
		if err := r.rows.Err(); err != nil {
			return zero, false, err
		}
		return zero, false, r.rows.Close()
	}
	v, err := r.scan(r.rows)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func query[T any](db *sql.DB, q string, scan func(*sql.Rows) (T, error)) (store.RowReader[T], error) {
	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %q: %w", q, err)
	}
	return &rowReader[T]{rows: rows, scan: scan}, nil
}

// NetworkMetadataReader reads the metadata table's single row.
func NetworkMetadataReader(db *sql.DB) (store.RowReader[store.NetworkMetadataRow], error) {
	return query(db, `SELECT number_of_species, number_of_reactions FROM metadata`,
		func(rows *sql.Rows) (store.NetworkMetadataRow, error) {
			var r store.NetworkMetadataRow
			err := rows.Scan(&r.NumberOfSpecies, &r.NumberOfReactions)
			return r, err
		})
}

// NetworkFactorsReader reads the factors table's single row.
func NetworkFactorsReader(db *sql.DB) (store.RowReader[store.NetworkFactorsRow], error) {
	return query(db, `SELECT factor_zero, factor_two, factor_duplicate FROM factors`,
		func(rows *sql.Rows) (store.NetworkFactorsRow, error) {
			var r store.NetworkFactorsRow
			err := rows.Scan(&r.FactorZero, &r.FactorTwo, &r.FactorDuplicate)
			return r, err
		})
}

// NetworkInitialStateReader reads the initial_state table, one row per
// species.
func NetworkInitialStateReader(db *sql.DB) (store.RowReader[store.NetworkInitialStateRow], error) {
	return query(db, `SELECT species_id, count FROM initial_state ORDER BY species_id`,
		func(rows *sql.Rows) (store.NetworkInitialStateRow, error) {
			var r store.NetworkInitialStateRow
			err := rows.Scan(&r.SpeciesID, &r.Count)
			return r, err
		})
}

// NetworkReactionsReader reads the reactions table, one row per
// reaction in reaction_id order.
func NetworkReactionsReader(db *sql.DB) (store.RowReader[store.NetworkReactionRow], error) {
	return query(db, `
		SELECT reaction_id, number_of_reactants, number_of_products,
		       reactant_species_1, reactant_species_2,
		       product_species_1, product_species_2, rate
		FROM reactions ORDER BY reaction_id`,
		func(rows *sql.Rows) (store.NetworkReactionRow, error) {
			var r store.NetworkReactionRow
			err := rows.Scan(&r.ReactionID, &r.NumReactants, &r.NumProducts,
				&r.ReactantSpecies[0], &r.ReactantSpecies[1],
				&r.ProductSpecies[0], &r.ProductSpecies[1], &r.Rate)
			return r, err
		})
}

// NanoparticleMetadataReader reads the metadata table's single row.
func NanoparticleMetadataReader(db *sql.DB) (store.RowReader[store.NanoparticleMetadataRow], error) {
	return query(db, `SELECT number_of_sites, number_of_species FROM metadata`,
		func(rows *sql.Rows) (store.NanoparticleMetadataRow, error) {
			var r store.NanoparticleMetadataRow
			err := rows.Scan(&r.NumberOfSites, &r.NumberOfSpecies)
			return r, err
		})
}

// NanoparticleFactorsReader reads the factors table's single row.
func NanoparticleFactorsReader(db *sql.DB) (store.RowReader[store.NanoparticleFactorsRow], error) {
	return query(db, `
		SELECT one_site_interaction_factor, two_site_interaction_factor,
		       interaction_radius_bound, distance_factor_type
		FROM factors`,
		func(rows *sql.Rows) (store.NanoparticleFactorsRow, error) {
			var r store.NanoparticleFactorsRow
			err := rows.Scan(&r.OneSiteInteractionFactor, &r.TwoSiteInteractionFactor,
				&r.InteractionRadiusBound, &r.DistanceFactorType)
			return r, err
		})
}

// NanoparticleSpeciesReader reads the species table.
func NanoparticleSpeciesReader(db *sql.DB) (store.RowReader[store.NanoparticleSpeciesRow], error) {
	return query(db, `SELECT species_id, degrees_of_freedom FROM species ORDER BY species_id`,
		func(rows *sql.Rows) (store.NanoparticleSpeciesRow, error) {
			var r store.NanoparticleSpeciesRow
			err := rows.Scan(&r.SpeciesID, &r.DegreesOfFreedom)
			return r, err
		})
}

// NanoparticleSitesReader reads the sites table.
func NanoparticleSitesReader(db *sql.DB) (store.RowReader[store.NanoparticleSiteRow], error) {
	return query(db, `SELECT site_id, x, y, z, species_id FROM sites ORDER BY site_id`,
		func(rows *sql.Rows) (store.NanoparticleSiteRow, error) {
			var r store.NanoparticleSiteRow
			err := rows.Scan(&r.SiteID, &r.X, &r.Y, &r.Z, &r.SpeciesID)
			return r, err
		})
}

// NanoparticleInitialStateReader reads the initial_state table, one row
// per site.
func NanoparticleInitialStateReader(db *sql.DB) (store.RowReader[store.NanoparticleInitialStateRow], error) {
	return query(db, `SELECT site_id, degree_of_freedom FROM initial_state ORDER BY site_id`,
		func(rows *sql.Rows) (store.NanoparticleInitialStateRow, error) {
			var r store.NanoparticleInitialStateRow
			err := rows.Scan(&r.SiteID, &r.DegreeOfFreedom)
			return r, err
		})
}

// NanoparticleInteractionsReader reads the interactions table, in input
// (rowid) order — interaction ids are assigned densely from that order.
func NanoparticleInteractionsReader(db *sql.DB) (store.RowReader[store.NanoparticleInteractionRow], error) {
	return query(db, `
		SELECT number_of_sites, species_1, species_2,
		       left_state_1, left_state_2, right_state_1, right_state_2, rate
		FROM interactions ORDER BY rowid`,
		func(rows *sql.Rows) (store.NanoparticleInteractionRow, error) {
			var r store.NanoparticleInteractionRow
			err := rows.Scan(&r.NumberOfSites, &r.SpeciesID[0], &r.SpeciesID[1],
				&r.LeftState[0], &r.LeftState[1], &r.RightState[0], &r.RightState[1], &r.Rate)
			return r, err
		})
}
