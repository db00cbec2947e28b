package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"feedbackbot/internal/domain"
)

// ErrBatchNotFound is returned when a download id is unknown or expired.
var ErrBatchNotFound = errors.New("download batch not found")

// Batch is a saved set of results offered for download.
type Batch struct {
	ID        string
	CreatedAt time.Time
	Records   []domain.ClassificationRecord
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS download_batches (
		id         TEXT PRIMARY KEY,
		item_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_download_batches_created_at ON download_batches(created_at);

	CREATE TABLE IF NOT EXISTS download_items (
		batch_id  TEXT NOT NULL,
		position  INTEGER NOT NULL,
		input     TEXT NOT NULL,
		theme     TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		highlight TEXT NOT NULL,
		PRIMARY KEY (batch_id, position)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SaveBatch stores records under a fresh id and returns it.
func SaveBatch(db *sql.DB, records []domain.ClassificationRecord, now time.Time) (string, error) {
	id := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO download_batches (id, item_count, created_at) VALUES (?, ?, ?)`,
		id, len(records), now.UTC(),
	); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO download_items (batch_id, position, input, theme, sentiment, highlight)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(id, i, rec.Input, rec.Theme, rec.Sentiment, rec.Highlight); err != nil {
			return "", fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return id, tx.Commit()
}

// GetBatch returns a batch with its records in their original order.
func GetBatch(db *sql.DB, id string) (Batch, error) {
	batch := Batch{ID: id}
	err := db.QueryRow(`SELECT created_at FROM download_batches WHERE id = ?`, id).Scan(&batch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, ErrBatchNotFound
	}
	if err != nil {
		return Batch{}, err
	}

	rows, err := db.Query(
		`SELECT input, theme, sentiment, highlight FROM download_items
		 WHERE batch_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return Batch{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.ClassificationRecord
		if err := rows.Scan(&rec.Input, &rec.Theme, &rec.Sentiment, &rec.Highlight); err != nil {
			return Batch{}, err
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, rows.Err()
}

// PurgeBatchesBefore deletes batches created before cutoff and returns how many went.
func PurgeBatchesBefore(db *sql.DB, cutoff time.Time) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM download_items WHERE batch_id IN (SELECT id FROM download_batches WHERE created_at < ?)`,
		cutoff.UTC(),
	); err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM download_batches WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete batches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func CountBatches(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM download_batches`).Scan(&count)
	return count, err
}
