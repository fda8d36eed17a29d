package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-vault-api/internal/domain"
)

// FileRepo provides typed SQLite operations for the files table.
type FileRepo struct {
	db *sql.DB
}

func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Insert(ctx context.Context, f *domain.File) error {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (user_id, filename, original_name, file_path, file_size, mime_type, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.StorageName, f.OriginalName, f.Path, f.Size, f.MimeType, toMillis(f.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert file id: %w", err)
	}
	f.ID = id
	return nil
}

// ListByUser returns the user's files, newest upload first.
func (r *FileRepo) ListByUser(ctx context.Context, userID int64) ([]domain.File, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, filename, original_name, file_path, file_size, mime_type, uploaded_at
		 FROM files WHERE user_id = ? ORDER BY uploaded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []domain.File
	for rows.Next() {
		var f domain.File
		var uploadedAt int64
		if err := rows.Scan(&f.ID, &f.UserID, &f.StorageName, &f.OriginalName, &f.Path, &f.Size, &f.MimeType, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.UploadedAt = fromMillis(uploadedAt)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// GetByUser fetches a file constrained to (id AND owner). A file owned by
// someone else is indistinguishable from a nonexistent one.
func (r *FileRepo) GetByUser(ctx context.Context, fileID, userID int64) (*domain.File, error) {
	var f domain.File
	var uploadedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, original_name, file_path, file_size, mime_type, uploaded_at
		 FROM files WHERE id = ? AND user_id = ?`, fileID, userID,
	).Scan(&f.ID, &f.UserID, &f.StorageName, &f.OriginalName, &f.Path, &f.Size, &f.MimeType, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	f.UploadedAt = fromMillis(uploadedAt)
	return &f, nil
}

func (r *FileRepo) Delete(ctx context.Context, fileID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// StatsByUser aggregates file count and total bytes for a user.
// Both come back zero when the user owns no files.
func (r *FileRepo) StatsByUser(ctx context.Context, userID int64) (domain.StorageStats, error) {
	var stats domain.StorageStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM files WHERE user_id = ?`, userID,
	).Scan(&stats.TotalFiles, &stats.UsedStorage)
	if err != nil {
		return domain.StorageStats{}, fmt.Errorf("file stats: %w", err)
	}
	return stats, nil
}
