package models

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "fileindex/internal/errors"
)

func TestScanResolvesAttributes(t *testing.T) {
	location := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(location, make([]byte, 100), 0o644))

	rec := NewRecord(location)
	require.NoError(t, rec.Scan())

	name, err := rec.FileName()
	require.NoError(t, err)
	require.Equal(t, "sample.pdf", name)

	size, err := rec.FileSize()
	require.NoError(t, err)
	require.EqualValues(t, 100, size)

	contentType, err := rec.ContentType()
	require.NoError(t, err)
	require.Equal(t, DefaultContentType, contentType)
}

func TestAccessorsTriggerScan(t *testing.T) {
	location := filepath.Join(t.TempDir(), "user1.json")
	require.NoError(t, os.WriteFile(location, []byte("{}"), 0o644))

	size, err := NewRecord(location).FileSize()
	require.NoError(t, err)
	require.EqualValues(t, 2, size)
}

func TestScanHappensOnce(t *testing.T) {
	location := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(location, []byte("abc"), 0o644))

	rec := NewRecord(location)
	require.NoError(t, rec.Scan())
	require.NoError(t, os.WriteFile(location, []byte("abcdef"), 0o644))
	require.NoError(t, rec.Scan())

	size, err := rec.FileSize()
	require.NoError(t, err)
	require.EqualValues(t, 3, size)
}

func TestConcurrentScan(t *testing.T) {
	location := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(location, []byte("abc"), 0o644))

	rec := NewRecord(location)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := rec.FileName()
			require.NoError(t, err)
			require.Equal(t, "a.txt", name)
		}()
	}
	wg.Wait()
}

func TestMissingFileIsUnresolved(t *testing.T) {
	rec := NewRecord(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, rec.Scan())

	_, err := rec.FileName()
	require.True(t, ferrors.Is(err, ferrors.ErrAttributeUnresolved), "%v", err)
	_, err = rec.FileSize()
	require.True(t, ferrors.Is(err, ferrors.ErrAttributeUnresolved))
	_, err = rec.ContentType()
	require.True(t, ferrors.Is(err, ferrors.ErrAttributeUnresolved))
}

func TestScannedRecordNeverProbes(t *testing.T) {
	rec := NewScannedRecord("/does/not/exist", "exist", 42, "text/plain")
	require.NoError(t, rec.Scan())

	size, err := rec.FileSize()
	require.NoError(t, err)
	require.EqualValues(t, 42, size)
	contentType, err := rec.ContentType()
	require.NoError(t, err)
	require.Equal(t, "text/plain", contentType)
}
