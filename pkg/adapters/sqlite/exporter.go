// Package sqlite stores exported slice collections in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS slice_exports (
    model_id TEXT PRIMARY KEY,
    payload BLOB NOT NULL,
    exported_at INTEGER NOT NULL
)`

// Record is one stored export.
type Record struct {
	ModelID    string
	Payload    []byte
	ExportedAt time.Time
}

// Exporter implements ports.Exporter backed by the slice_exports table.
type Exporter struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and ensures the table exists.
func Open(path string) (*Exporter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create slice_exports: %w", err)
	}

	return &Exporter{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (e *Exporter) Close() error {
	if e == nil || e.sqlDB == nil {
		return nil
	}
	return e.sqlDB.Close()
}

// Name identifies the sink.
func (e *Exporter) Name() string { return "sqlite" }

// Export upserts the JSON form of the view for modelID.
func (e *Exporter) Export(ctx context.Context, modelID string, view *domain.View) error {
	if e == nil || e.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return fmt.Errorf("model ID is required")
	}

	payload, err := export.Encode(view, export.FormatJSON)
	if err != nil {
		return err
	}

	_, err = e.sqlDB.ExecContext(
		ctx,
		`INSERT INTO slice_exports (model_id, payload, exported_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(model_id) DO UPDATE SET
		    payload = excluded.payload,
		    exported_at = excluded.exported_at`,
		modelID,
		payload,
		e.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put slice export: %w", err)
	}
	return nil
}

// Get loads the stored export for modelID.
func (e *Exporter) Get(ctx context.Context, modelID string) (Record, error) {
	if e == nil || e.sqlDB == nil {
		return Record{}, fmt.Errorf("storage is not configured")
	}

	row := e.sqlDB.QueryRowContext(
		ctx,
		`SELECT model_id, payload, exported_at FROM slice_exports WHERE model_id = ?`,
		modelID,
	)

	var rec Record
	var exportedAt int64
	if err := row.Scan(&rec.ModelID, &rec.Payload, &exportedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelID)
		}
		return Record{}, fmt.Errorf("get slice export: %w", err)
	}
	rec.ExportedAt = time.UnixMilli(exportedAt).UTC()
	return rec, nil
}

// Payload returns only the stored JSON for modelID.
func (e *Exporter) Payload(ctx context.Context, modelID string) ([]byte, error) {
	rec, err := e.Get(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return rec.Payload, nil
}

// List returns the exported model IDs in order.
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	if e == nil || e.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := e.sqlDB.QueryContext(ctx, `SELECT model_id FROM slice_exports ORDER BY model_id`)
	if err != nil {
		return nil, fmt.Errorf("list slice exports: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan slice export: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
