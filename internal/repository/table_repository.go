package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"airport-data/internal/models"
	"airport-data/pkg/database"
	"airport-data/pkg/logging"
	"airport-data/pkg/metrics"
)

// TableRepository stores published airport table snapshots
type TableRepository interface {
	SaveTable(ctx context.Context, table *models.AirportTable, info SnapshotInfo) (int64, error)
	LatestTable(ctx context.Context) (*models.AirportTable, error)
	HealthCheck(ctx context.Context) error
}

// SnapshotInfo carries run details stored next to a snapshot
type SnapshotInfo struct {
	RunID         string
	ArtifactBytes int
}

// snapshotRow mirrors a row of airport_tables
type snapshotRow struct {
	ID            int64     `db:"id"`
	RunID         string    `db:"run_id"`
	Generated     string    `db:"generated"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	Coverage      string    `db:"coverage"`
	AirportCount  int       `db:"airport_count"`
	ArtifactBytes int       `db:"artifact_bytes"`
	CreatedAt     time.Time `db:"created_at"`
}

// recordRow mirrors a row of airport_records
type recordRow struct {
	ICAO    string `db:"icao"`
	Payload []byte `db:"payload"`
}

type tableRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTableRepository creates a Postgres backed snapshot repository
func NewTableRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) TableRepository {
	return &tableRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SaveTable writes the snapshot header and every airport in one transaction
// and returns the new snapshot id.
func (r *tableRepository) SaveTable(ctx context.Context, table *models.AirportTable, info SnapshotInfo) (int64, error) {
	if err := table.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.WithTx(ctx, "save_table", func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO airport_tables (
				run_id, generated, source, source_url, coverage,
				airport_count, artifact_bytes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`,
			info.RunID,
			table.Meta.Generated,
			table.Meta.Source,
			table.Meta.SourceURL,
			table.Meta.Coverage,
			table.Meta.Count,
			info.ArtifactBytes,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO airport_records (table_id, icao, payload)
			VALUES ($1, $2, $3)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for code, ap := range table.Airports {
			payload, err := json.Marshal(ap)
			if err != nil {
				return fmt.Errorf("failed to encode airport %s: %w", code, err)
			}
			if _, err := stmt.ExecContext(ctx, id, code, payload); err != nil {
				return fmt.Errorf("failed to insert airport %s: %w", code, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info(ctx, "[REPO_SAVE_TABLE] Snapshot stored", logging.Fields{
		"snapshot_id": id,
		"airports":    table.Meta.Count,
	})
	return id, nil
}

// LatestTable loads the most recently stored snapshot
func (r *tableRepository) LatestTable(ctx context.Context) (*models.AirportTable, error) {
	var header snapshotRow
	err := r.db.GetContext(ctx, "latest_table", &header, `
		SELECT id, run_id, generated, source, source_url, coverage,
		       airport_count, artifact_bytes, created_at
		FROM airport_tables
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "airport_table", ID: "latest"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	var rows []recordRow
	err = r.db.SelectContext(ctx, "table_records", &rows, `
		SELECT icao, payload
		FROM airport_records
		WHERE table_id = $1
	`, header.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot airports: %w", err)
	}

	table, err := assembleTable(header, rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug(ctx, "[REPO_LATEST_TABLE] Snapshot loaded", logging.Fields{
		"snapshot_id": header.ID,
		"airports":    len(rows),
	})
	return table, nil
}

// HealthCheck performs a repository health check
func (r *tableRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// assembleTable rebuilds an AirportTable from stored rows and validates it
func assembleTable(header snapshotRow, rows []recordRow) (*models.AirportTable, error) {
	table := &models.AirportTable{
		Meta: models.TableMeta{
			Generated: header.Generated,
			Source:    header.Source,
			SourceURL: header.SourceURL,
			Count:     header.AirportCount,
			Coverage:  header.Coverage,
		},
		Airports: make(map[string]models.CompactAirport, len(rows)),
	}
	for _, row := range rows {
		var ap models.CompactAirport
		if err := json.Unmarshal(row.Payload, &ap); err != nil {
			return nil, fmt.Errorf("failed to decode airport %s: %w", row.ICAO, err)
		}
		table.Airports[row.ICAO] = ap
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %d is inconsistent: %w", header.ID, err)
	}
	return table, nil
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
