// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/secondbrainhq/secondbrain/pkg/vector"
)

// SQLiteVecDriver implements vector.Driver using SQLite with sqlite-vec.
type SQLiteVecDriver struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewSQLiteVecDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewSQLiteVecDriver(c Config, logger *zap.Logger) (*SQLiteVecDriver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dimensions := c.Dimensions
	if dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Create the document mapping table. vec0 virtual tables use
	// integer rowids, so content ids map to rowids here; the content
	// metadata lives alongside so query hits need no second lookup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vec_documents (
			rowid       INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id      TEXT NOT NULL UNIQUE,
			user_id     TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT '',
			link        TEXT NOT NULL DEFAULT '',
			document    TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_vec_documents_user ON vec_documents(user_id)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating user index: %w", err)
	}

	// Create the vec0 virtual table for vector storage and KNN queries.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(embedding float[%d])`,
		dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &SQLiteVecDriver{
		db:     db,
		logger: logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) ([]byte, error) {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf, nil
}

// Upsert stores a document, replacing any existing record with the same id.
func (d *SQLiteVecDriver) Upsert(ctx context.Context, doc vector.Document) error {
	embBlob, err := serializeFloat32(doc.Embedding)
	if err != nil {
		return fmt.Errorf("serializing embedding for doc %s: %w", doc.ID, err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Check if document already exists
	var existingRowID int64
	err = tx.QueryRowContext(ctx,
		`SELECT rowid FROM vec_documents WHERE doc_id = ?`, doc.ID,
	).Scan(&existingRowID)

	switch err {
	case nil:
		// Document exists — replace metadata and embedding
		if _, err := tx.ExecContext(ctx,
			`UPDATE vec_documents
			 SET user_id = ?, title = ?, description = ?, type = ?, link = ?, document = ?
			 WHERE rowid = ?`,
			doc.Meta.UserID, doc.Meta.Title, doc.Meta.Description,
			doc.Meta.Type, doc.Meta.Link, doc.Text, existingRowID,
		); err != nil {
			return fmt.Errorf("updating document %s: %w", doc.ID, err)
		}

		// Update embedding in vec0 table via DELETE + INSERT
		// (vec0 does not support UPDATE)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM vec_embeddings WHERE rowid = ?`, existingRowID,
		); err != nil {
			return fmt.Errorf("deleting old embedding for doc %s: %w", doc.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
			existingRowID, embBlob,
		); err != nil {
			return fmt.Errorf("re-inserting embedding for doc %s: %w", doc.ID, err)
		}
	case sql.ErrNoRows:
		// New document — insert into mapping table first to get the rowid
		result, err := tx.ExecContext(ctx,
			`INSERT INTO vec_documents(doc_id, user_id, title, description, type, link, document)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, doc.Meta.UserID, doc.Meta.Title, doc.Meta.Description,
			doc.Meta.Type, doc.Meta.Link, doc.Text,
		)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for doc %s: %w", doc.ID, err)
		}

		// Insert embedding into vec0 table with matching rowid
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vec_embeddings(rowid, embedding) VALUES (?, ?)`,
			rowID, embBlob,
		); err != nil {
			return fmt.Errorf("inserting embedding for doc %s: %w", doc.ID, err)
		}
	default:
		return fmt.Errorf("checking for existing document %s: %w", doc.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("upserted document to sqlite-vec",
		zap.String("id", doc.ID),
	)

	return nil
}

// Query finds the topK most similar documents owned by userID.
func (d *SQLiteVecDriver) Query(ctx context.Context, embedding []float32, userID string, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 1
	}

	queryBlob, err := serializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	// KNN query via vec0 MATCH, pre-filtered to the user's rowids so
	// another user's vectors can never crowd theirs out of the
	// candidate set.
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			d.doc_id,
			d.user_id,
			d.title,
			d.description,
			d.type,
			d.link,
			d.document,
			ve.distance
		FROM vec_embeddings ve
		INNER JOIN vec_documents d ON d.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
			AND ve.rowid IN (SELECT rowid FROM vec_documents WHERE user_id = ?)
		ORDER BY ve.distance
	`, queryBlob, topK, userID)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var r vector.QueryResult
		var distance float64
		if err := rows.Scan(
			&r.ID, &r.Meta.UserID, &r.Meta.Title, &r.Meta.Description,
			&r.Meta.Type, &r.Meta.Link, &r.Text, &distance,
		); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		// Convert distance to similarity score: lower distance = higher similarity
		r.Score = float32(1.0 / (1.0 + distance))
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec",
		zap.String("user_id", userID),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Delete removes documents by their IDs. Unknown ids are ignored.
func (d *SQLiteVecDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM vec_embeddings WHERE rowid IN (
			SELECT rowid FROM vec_documents WHERE doc_id IN (%s)
		)
	`, in), args...); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM vec_documents WHERE doc_id IN (%s)`, in,
	), args...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted documents from sqlite-vec",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *SQLiteVecDriver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*SQLiteVecDriver)(nil)
