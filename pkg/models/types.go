package models

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pingcap/errors"

	ferrors "fileindex/internal/errors"
)

const (
	// DefaultIndexFile is where the index is persisted unless configured.
	DefaultIndexFile = "./index"
	// DefaultContentType is assigned to every scanned file.
	DefaultContentType = "application/octet-stream"
)

// Attribute names, as they appear in queries and in the CSV header.
const (
	AttrLocation    = "location"
	AttrFileName    = "file_name"
	AttrFileSize    = "file_size"
	AttrContentType = "content_type"
)

// Record is the attribute set of one indexed file. The location identifies
// the record; the other attributes are resolved at most once by Scan.
type Record struct {
	Location string

	once        sync.Once
	scanErr     error
	fileName    *string
	fileSize    *int64
	contentType *string
}

// NewRecord returns an unscanned record for location.
func NewRecord(location string) *Record {
	return &Record{Location: location}
}

// NewScannedRecord returns a record whose attributes are already known,
// typically loaded from a persisted index.
func NewScannedRecord(location, fileName string, fileSize int64, contentType string) *Record {
	r := &Record{
		Location:    location,
		fileName:    &fileName,
		fileSize:    &fileSize,
		contentType: &contentType,
	}
	r.once.Do(func() {})
	return r
}

// Scan probes the file at Location. Only the first call does any work,
// later calls return the first result.
func (r *Record) Scan() error {
	r.once.Do(func() {
		stat, err := os.Stat(r.Location)
		if err != nil {
			r.scanErr = errors.Trace(err)
			return
		}
		size := stat.Size()
		name := filepath.Base(r.Location)
		contentType := DefaultContentType
		r.fileSize = &size
		r.fileName = &name
		r.contentType = &contentType
	})
	return r.scanErr
}

// FileName is the base name of the file.
func (r *Record) FileName() (string, error) {
	if err := r.Scan(); err != nil || r.fileName == nil {
		return "", r.unresolved(AttrFileName, err)
	}
	return *r.fileName, nil
}

// FileSize is the size of the file in bytes.
func (r *Record) FileSize() (int64, error) {
	if err := r.Scan(); err != nil || r.fileSize == nil {
		return 0, r.unresolved(AttrFileSize, err)
	}
	return *r.fileSize, nil
}

// ContentType is the MIME type of the file.
func (r *Record) ContentType() (string, error) {
	if err := r.Scan(); err != nil || r.contentType == nil {
		return "", r.unresolved(AttrContentType, err)
	}
	return *r.contentType, nil
}

func (r *Record) unresolved(attr string, cause error) error {
	reason := "not scanned"
	if cause != nil {
		reason = errors.Cause(cause).Error()
	}
	return ferrors.ErrAttributeUnresolved.GenWithStackByArgs(attr, r.Location, reason)
}
