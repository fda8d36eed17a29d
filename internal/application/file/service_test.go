package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/go-vault-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) Insert(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockFileStore) ListByUser(ctx context.Context, userID int64) ([]domain.File, error) {
	args := m.Called(ctx, userID)
	if files, _ := args.Get(0).([]domain.File); files != nil {
		return files, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFileStore) GetByUser(ctx context.Context, fileID, userID int64) (*domain.File, error) {
	args := m.Called(ctx, fileID, userID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFileStore) Delete(ctx context.Context, fileID int64) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Save(userID int64, storageName string, r io.Reader) (string, int64, error) {
	args := m.Called(userID, storageName, r)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}
func (m *mockBlobStore) Open(path string) (io.ReadCloser, error) {
	args := m.Called(path)
	if rc, _ := args.Get(0).(io.ReadCloser); rc != nil {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBlobStore) Remove(path string) error {
	return m.Called(path).Error(0)
}

// --- Upload ---

func TestUpload_EmptyFilename(t *testing.T) {
	bs := &mockBlobStore{}
	svc := NewService(&mockFileStore{}, bs)

	_, err := svc.Upload(context.Background(), UploadInput{
		Reader: strings.NewReader("data"), Filename: "  ", OwnerID: 1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	bs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_DisallowedExtension(t *testing.T) {
	bs := &mockBlobStore{}
	svc := NewService(&mockFileStore{}, bs)

	_, err := svc.Upload(context.Background(), UploadInput{
		Reader: strings.NewReader("data"), Filename: "malware.exe", OwnerID: 1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "not allowed")
	bs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_Success_SizeFromBytesWritten(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	bs.On("Save", int64(1), mock.Anything, mock.Anything).Return("/data/user_1/blob.txt", int64(10), nil)
	fst.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(fst, bs)
	f, err := svc.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader([]byte("0123456789")),
		Filename:    "hello.txt",
		ContentType: "text/plain",
		OwnerID:     1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), f.Size)
	assert.Equal(t, "hello.txt", f.OriginalName)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.True(t, strings.HasSuffix(f.StorageName, ".txt"))
	assert.NotEqual(t, "hello.txt", f.StorageName)

	storageName := bs.Calls[0].Arguments.String(1)
	assert.Equal(t, f.StorageName, storageName)
}

func TestUpload_SanitizesOriginalName(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	bs.On("Save", int64(1), mock.Anything, mock.Anything).Return("/data/user_1/blob.txt", int64(4), nil)
	fst.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(fst, bs)
	f, err := svc.Upload(context.Background(), UploadInput{
		Reader: strings.NewReader("data"), Filename: `..\..\my notes!.txt`, OwnerID: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "my_notes_.txt", f.OriginalName)
	assert.NotContains(t, f.OriginalName, "/")
	assert.NotContains(t, f.OriginalName, `\`)
}

// --- Download ---

func TestDownload_OtherUsersFile_NotFound(t *testing.T) {
	fst := &mockFileStore{}
	fst.On("GetByUser", mock.Anything, int64(9), int64(2)).
		Return(nil, fmt.Errorf("file not found: %w", domain.ErrNotFound))

	svc := NewService(fst, &mockBlobStore{})
	_, _, err := svc.Download(context.Background(), 9, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownload_MissingBlob_NotFound_RecordKept(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	fst.On("GetByUser", mock.Anything, int64(9), int64(1)).Return(&domain.File{
		ID: 9, UserID: 1, Path: "/data/user_1/gone.txt",
	}, nil)
	bs.On("Open", "/data/user_1/gone.txt").Return(nil, fmt.Errorf("open blob: %w", fs.ErrNotExist))

	svc := NewService(fst, bs)
	_, _, err := svc.Download(context.Background(), 9, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	fst.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDownload_Success(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	fst.On("GetByUser", mock.Anything, int64(9), int64(1)).Return(&domain.File{
		ID: 9, UserID: 1, OriginalName: "hello.txt", Path: "/data/user_1/blob.txt",
	}, nil)
	bs.On("Open", "/data/user_1/blob.txt").Return(io.NopCloser(strings.NewReader("0123456789")), nil)

	svc := NewService(fst, bs)
	rc, f, err := svc.Download(context.Background(), 9, 1)

	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
	assert.Equal(t, "hello.txt", f.OriginalName)
}

// --- Delete ---

func TestDelete_BlobRemoveFails_RowStillDeleted(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	fst.On("GetByUser", mock.Anything, int64(9), int64(1)).Return(&domain.File{
		ID: 9, UserID: 1, Path: "/data/user_1/blob.txt",
	}, nil)
	bs.On("Remove", "/data/user_1/blob.txt").Return(errors.New("device busy"))
	fst.On("Delete", mock.Anything, int64(9)).Return(nil)

	svc := NewService(fst, bs)
	err := svc.Delete(context.Background(), 9, 1)

	require.NoError(t, err)
	fst.AssertCalled(t, "Delete", mock.Anything, int64(9))
}

func TestDelete_OtherUsersFile_NotFound(t *testing.T) {
	fst := &mockFileStore{}
	bs := &mockBlobStore{}
	fst.On("GetByUser", mock.Anything, int64(9), int64(2)).
		Return(nil, fmt.Errorf("file not found: %w", domain.ErrNotFound))

	svc := NewService(fst, bs)
	err := svc.Delete(context.Background(), 9, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bs.AssertNotCalled(t, "Remove", mock.Anything)
	fst.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- helpers ---

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello.txt", "hello.txt"},
		{"../../etc/passwd", "passwd"},
		{`..\..\win\evil.txt`, "evil.txt"},
		{"sp ace & sym?.pdf", "sp_ace___sym_.pdf"},
		{"", "_"},
		{"...", "..."},
		{".", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "txt", extension("a.TXT"))
	assert.Equal(t, "gz", extension("a.tar.gz"))
	assert.Equal(t, "", extension("noext"))
}
