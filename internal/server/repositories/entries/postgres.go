// Package entries provides the PostgreSQL-backed repository for entry
// metadata. File rows are embedded into their owning entry on read.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/dbx"
	"github.com/dmitrijs2005/filedrop/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry and its file rows. Callers that need atomicity
// across both tables must pass a transactional DBTX (see dbx.WithTx).
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, kind, text_content, created_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.Kind, entry.Text, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for i, f := range entry.Files {
		query := `
			INSERT INTO entry_files (entry_id, position, name, size, mime, storage_key)
			VALUES ($1, $2, $3, $4, $5, $6);
		`
		_, err := r.db.ExecContext(ctx, query, entry.ID, i, f.Name, f.Size, f.Mime, f.StorageKey)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

// GetByID returns one entry with its files, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT id, kind, text_content, created_at FROM entries WHERE id=$1`

	var item models.Entry
	err := r.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Kind, &item.Text, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}

	files, err := r.selectFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Files = files

	return &item, nil
}

// SelectAll returns every entry, newest first, with files attached.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Entry, error) {
	query := `SELECT id, kind, text_content, created_at FROM entries ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	byID := make(map[string]*models.Entry)
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.Kind, &item.Text, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
		byID[item.ID] = &item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachFiles(ctx, byID); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) selectFiles(ctx context.Context, entryID string) ([]models.FileRef, error) {
	query := `SELECT name, size, mime, storage_key FROM entry_files WHERE entry_id=$1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var files []models.FileRef
	for rows.Next() {
		var f models.FileRef
		if err := rows.Scan(&f.Name, &f.Size, &f.Mime, &f.StorageKey); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *PostgresRepository) attachFiles(ctx context.Context, byID map[string]*models.Entry) error {
	if len(byID) == 0 {
		return nil
	}

	query := `SELECT entry_id, name, size, mime, storage_key FROM entry_files ORDER BY entry_id, position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID string
		var f models.FileRef
		if err := rows.Scan(&entryID, &f.Name, &f.Size, &f.Mime, &f.StorageKey); err != nil {
			return err
		}
		if e, ok := byID[entryID]; ok {
			e.Files = append(e.Files, f)
		}
	}
	return rows.Err()
}

// Delete removes the entry row; file rows follow via ON DELETE CASCADE.
// Returns common.ErrorNotFound when no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM entries WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// StorageKeyExists reports whether any entry references the given key.
func (r *PostgresRepository) StorageKeyExists(ctx context.Context, key string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM entry_files WHERE storage_key=$1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
