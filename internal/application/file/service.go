package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/go-vault-api/internal/domain"
	"github.com/go-vault-api/internal/pkg/id"
)

// allowedExtensions is the upload allow-list, checked against the
// lowercased extension of the sanitized original name.
var allowedExtensions = map[string]struct{}{
	"txt": {}, "pdf": {}, "png": {}, "jpg": {}, "jpeg": {}, "gif": {},
	"doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {},
	"zip": {}, "rar": {},
}

// FileStore is the metadata store the file service depends on.
type FileStore interface {
	Insert(ctx context.Context, f *domain.File) error
	ListByUser(ctx context.Context, userID int64) ([]domain.File, error)
	GetByUser(ctx context.Context, fileID, userID int64) (*domain.File, error)
	Delete(ctx context.Context, fileID int64) error
}

// BlobStore holds the uploaded bytes under opaque storage names.
type BlobStore interface {
	Save(userID int64, storageName string, r io.Reader) (path string, size int64, err error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	OwnerID     int64
}

type Service interface {
	Upload(ctx context.Context, input UploadInput) (*domain.File, error)
	List(ctx context.Context, userID int64) ([]domain.File, error)
	Download(ctx context.Context, fileID, userID int64) (io.ReadCloser, *domain.File, error)
	Delete(ctx context.Context, fileID, userID int64) error
}

type service struct {
	files FileStore
	blobs BlobStore
}

func NewService(files FileStore, blobs BlobStore) Service {
	return &service{files: files, blobs: blobs}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*domain.File, error) {
	if strings.TrimSpace(input.Filename) == "" {
		return nil, fmt.Errorf("no selected file: %w", domain.ErrBadRequest)
	}
	originalName := sanitizeFilename(input.Filename)
	ext := extension(originalName)
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("file type not allowed: %w", domain.ErrBadRequest)
	}

	// The blob never lives under the user-supplied name.
	storageName := id.New() + "." + ext
	blobPath, size, err := s.blobs.Save(input.OwnerID, storageName, input.Reader)
	if err != nil {
		return nil, err
	}

	f := &domain.File{
		UserID:       input.OwnerID,
		StorageName:  storageName,
		OriginalName: originalName,
		Path:         blobPath,
		Size:         size,
		MimeType:     input.ContentType,
	}
	if err := s.files.Insert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]domain.File, error) {
	return s.files.ListByUser(ctx, userID)
}

func (s *service) Download(ctx context.Context, fileID, userID int64) (io.ReadCloser, *domain.File, error) {
	f, err := s.files.GetByUser(ctx, fileID, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// The record stays; surfaced as a plain not-found to the caller.
			slog.Warn("blob missing for file record", "file_id", f.ID, "path", f.Path)
			return nil, nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
		}
		return nil, nil, err
	}
	return rc, f, nil
}

func (s *service) Delete(ctx context.Context, fileID, userID int64) error {
	f, err := s.files.GetByUser(ctx, fileID, userID)
	if err != nil {
		return err
	}
	// The metadata row is the source of truth for existence; a blob that
	// cannot be removed is logged and left behind.
	if err := s.blobs.Remove(f.Path); err != nil {
		slog.Warn("failed to remove blob from disk", "file_id", f.ID, "path", f.Path, "err", err)
	}
	return s.files.Delete(ctx, f.ID)
}

// extension returns the lowercased extension of name without the dot.
func extension(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return strings.ToLower(ext)
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
