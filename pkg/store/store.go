// Package store persists quadgrid cells in PostGIS so downstream GIS
// tooling can join against qids or run spatial SQL over the centroids.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kass/go-quadgrid/pkg/quadgrid"
)

// CellStore is a PostGIS-backed store for grid cells.
type CellStore struct {
	db *sql.DB
}

// Open connects to PostGIS and verifies the connection.
func Open(host string, port int, user, password, dbname string) (*CellStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &CellStore{db: db}, nil
}

// Close releases the connection pool.
func (s *CellStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the cell table from scratch.
func (s *CellStore) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,

		`DROP TABLE IF EXISTS quad_cells;`,

		`CREATE TABLE quad_cells (
			qid BIGINT PRIMARY KEY,
			centroid GEOMETRY(POINT, 4326),
			res DOUBLE PRECISION,
			area_km2 DOUBLE PRECISION,
			inside BOOLEAN
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// CreateSpatialIndex creates a GIST index on the centroid column.
func (s *CellStore) CreateSpatialIndex() error {
	if _, err := s.db.Exec(`CREATE INDEX idx_quad_cells_centroid ON quad_cells USING GIST(centroid);`); err != nil {
		return fmt.Errorf("failed to create spatial index: %w", err)
	}
	if _, err := s.db.Exec(`ANALYZE quad_cells;`); err != nil {
		return fmt.Errorf("failed to analyze table: %w", err)
	}
	return nil
}

// InsertGrid inserts every cell of the grid in batched transactions.
func (s *CellStore) InsertGrid(g *quadgrid.QuadGrid) error {
	const batchSize = 10000

	stmt, err := s.db.Prepare(`
		INSERT INTO quad_cells (qid, centroid, res, area_km2, inside)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txStmt := tx.Stmt(stmt)

	res := g.Resolution()
	for i := 0; i < g.NCells(); i++ {
		cell, err := g.CellAt(i/g.NCols(), i%g.NCols())
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := txStmt.Exec(cell.Qid, cell.Lon, cell.Lat, res, cell.AreaKm2, cell.Inside); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert cell %d: %w", cell.Qid, err)
		}

		if (i+1)%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = s.db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin new transaction: %w", err)
			}
			txStmt = tx.Stmt(stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit final batch: %w", err)
	}
	return nil
}

// QueryBox returns the qids of cells whose centroids fall in the bounds.
func (s *CellStore) QueryBox(b quadgrid.Bounds) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT qid
		FROM quad_cells
		WHERE centroid && ST_MakeEnvelope($1, $2, $3, $4, 4326)
	`, b.LonFrom, b.LatFrom, b.LonTo, b.LatTo)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var qids []int64
	for rows.Next() {
		var qid int64
		if err := rows.Scan(&qid); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		qids = append(qids, qid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return qids, nil
}

// Count returns the number of stored cells.
func (s *CellStore) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quad_cells`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cells: %w", err)
	}
	return count, nil
}

// MaskedCount returns the number of stored cells flagged inside.
func (s *CellStore) MaskedCount() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quad_cells WHERE inside`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count masked cells: %w", err)
	}
	return count, nil
}
