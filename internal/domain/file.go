package domain

import "time"

type File struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"-"`
	StorageName  string    `json:"-"`
	OriginalName string    `json:"name"`
	Path         string    `json:"-"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"type"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// StorageStats aggregates a user's file count and total bytes on disk.
// Both are zero for a user with no files.
type StorageStats struct {
	TotalFiles  int64 `json:"total_files"`
	UsedStorage int64 `json:"used_storage"`
}
