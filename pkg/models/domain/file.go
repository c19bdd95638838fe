package domain

import (
	"io"
	"time"
)

type FileStatus string

const (
	FileStatusUploading  FileStatus = "uploading"
	FileStatusUploaded   FileStatus = "uploaded"
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
	FileStatusCorrupted  FileStatus = "corrupted"
)

// UploadedFile is the server's record of an uploaded tabular export
type UploadedFile struct {
	ID               string
	OriginalFilename string
	Size             int64
	RowsCount        int
	ColumnsCount     int
	Status           FileStatus
	ErrorMessage     string
	UploadDate       time.Time
}

// Ready reports whether a report can reference the file
func (f *UploadedFile) Ready() bool {
	return f.Status == FileStatusCompleted
}

// Broken reports whether server-side processing gave up on the file
func (f *UploadedFile) Broken() bool {
	return f.Status == FileStatusFailed || f.Status == FileStatusCorrupted
}

// FileHandle is a readable file to upload. Size may be zero when unknown.
type FileHandle struct {
	Name   string
	Size   int64
	Reader io.Reader
}
