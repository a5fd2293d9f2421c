package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pingcap/errors"
	"go.uber.org/multierr"

	ferrors "fileindex/internal/errors"
	"fileindex/pkg/models"
)

// Header is the column layout of the index file.
var Header = []string{models.AttrLocation, models.AttrFileName, models.AttrFileSize, models.AttrContentType}

// Sink receives records loaded from an index file.
type Sink interface {
	Add(rec *models.Record)
}

// Storable reports whether s survives a round trip through the index file.
// CSV readers turn a quoted "\r\n" into "\n", so no carriage return is
// allowed.
func Storable(s string) bool {
	return !strings.ContainsRune(s, '\r')
}

// IndexWriter writes records as CSV rows.
type IndexWriter struct {
	w *csv.Writer
}

// NewIndexWriter writes the header to w.
func NewIndexWriter(w io.Writer) (*IndexWriter, error) {
	iw := &IndexWriter{w: csv.NewWriter(w)}
	if err := iw.w.Write(Header); err != nil {
		return nil, errors.Trace(err)
	}
	return iw, nil
}

// Write writes one record. Every attribute must be resolvable, and the
// location and name must be Storable.
func (w *IndexWriter) Write(rec *models.Record) error {
	if !Storable(rec.Location) {
		return ferrors.ErrUnstorableRecord.GenWithStackByArgs(strconv.Quote(rec.Location), "carriage return in location")
	}
	name, err := rec.FileName()
	if err != nil {
		return err
	}
	if !Storable(name) {
		return ferrors.ErrUnstorableRecord.GenWithStackByArgs(strconv.Quote(rec.Location), "carriage return in file name")
	}
	size, err := rec.FileSize()
	if err != nil {
		return err
	}
	contentType, err := rec.ContentType()
	if err != nil {
		return err
	}
	return errors.Trace(w.w.Write([]string{rec.Location, name, strconv.FormatInt(size, 10), contentType}))
}

// Flush writes buffered rows to the underlying writer.
func (w *IndexWriter) Flush() error {
	w.w.Flush()
	return errors.Trace(w.w.Error())
}

// IndexReader reads records from CSV rows. Columns may come in any order
// but all of Header must be present.
type IndexReader struct {
	r       *csv.Reader
	columns map[string]int
}

// NewIndexReader reads and checks the header.
func NewIndexReader(r io.Reader) (*IndexReader, error) {
	ir := &IndexReader{r: csv.NewReader(r), columns: make(map[string]int, len(Header))}
	header, err := ir.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ferrors.ErrIndexCorrupted.GenWithStackByArgs("missing header")
		}
		return nil, ferrors.ErrIndexCorrupted.GenWithStackByArgs(err.Error())
	}
	for i, col := range header {
		ir.columns[col] = i
	}
	var missing []string
	for _, col := range Header {
		if _, ok := ir.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, ferrors.ErrIndexCorrupted.GenWithStackByArgs("header lacks " + strings.Join(missing, ", "))
	}
	return ir, nil
}

// ReadNext reads the next record. Returns io.EOF if done.
func (r *IndexReader) ReadNext() (*models.Record, error) {
	row, err := r.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, ferrors.ErrIndexCorrupted.GenWithStackByArgs(err.Error())
	}
	line, _ := r.r.FieldPos(0)

	rawSize := row[r.columns[models.AttrFileSize]]
	size, err := strconv.ParseInt(rawSize, 10, 64)
	if err != nil || size < 0 {
		return nil, ferrors.ErrIndexCorrupted.GenWithStackByArgs(
			fmt.Sprintf("line %d: bad %s %q", line, models.AttrFileSize, rawSize))
	}
	return models.NewScannedRecord(
		row[r.columns[models.AttrLocation]],
		row[r.columns[models.AttrFileName]],
		size,
		row[r.columns[models.AttrContentType]],
	), nil
}

// WriteIndex writes recs to w, ordered by location descending.
func WriteIndex(w io.Writer, recs []*models.Record) error {
	sorted := slices.Clone(recs)
	slices.SortFunc(sorted, func(a, b *models.Record) int {
		return strings.Compare(b.Location, a.Location)
	})

	iw, err := NewIndexWriter(w)
	if err != nil {
		return err
	}
	for _, rec := range sorted {
		if err := iw.Write(rec); err != nil {
			return err
		}
	}
	return iw.Flush()
}

// ReadIndex adds every record in r to sink and returns how many were read.
func ReadIndex(r io.Reader, sink Sink) (int, error) {
	ir, err := NewIndexReader(r)
	if err != nil {
		return 0, err
	}
	count := 0
	for {
		rec, err := ir.ReadNext()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		sink.Add(rec)
		count++
	}
}

// SaveFile writes recs to path. The file is written beside path and renamed
// into place, so a failed save leaves the previous index intact.
func SaveFile(path string, recs []*models.Record) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = WriteIndex(f, recs); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Chmod(0o644); err != nil {
		return multierr.Append(errors.Trace(err), f.Close())
	}
	if err = f.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(f.Name(), path))
}

// LoadFile reads the index at path into sink.
func LoadFile(path string, sink Sink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Annotatef(err, "open index %s", path)
	}
	defer f.Close()
	return ReadIndex(f, sink)
}
