package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "fileindex/internal/errors"
	"fileindex/internal/index"
	"fileindex/pkg/models"
)

func fixtureIndex() *index.Index {
	idx := index.New()
	idx.Add(models.NewScannedRecord("/data/b.txt", "b.txt", 0, models.DefaultContentType))
	idx.Add(models.NewScannedRecord("/data/sample.pdf", "sample.pdf", 100, models.DefaultContentType))
	idx.Add(models.NewScannedRecord(`/data/odd, "name".csv`, `odd, "name".csv`, 9_000_000_000, "text/csv"))
	idx.Add(models.NewScannedRecord("/data/a.txt", "a.txt", 200, models.DefaultContentType))
	return idx
}

func TestWriteIndexLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, fixtureIndex().Records()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"location,file_name,file_size,content_type",
		"/data/sample.pdf,sample.pdf,100,application/octet-stream",
		`"/data/odd, ""name"".csv","odd, ""name"".csv",9000000000,text/csv`,
		"/data/b.txt,b.txt,0,application/octet-stream",
		"/data/a.txt,a.txt,200,application/octet-stream",
	}, lines)
}

func TestRoundTrip(t *testing.T) {
	before := fixtureIndex()
	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, SaveFile(path, before.Records()))

	after := index.New()
	n, err := LoadFile(path, after)
	require.NoError(t, err)
	require.Equal(t, before.Len(), n)

	for _, orig := range before.Records() {
		loaded, ok := after.Get(orig.Location)
		require.True(t, ok, orig.Location)
		for _, pair := range [][2]func() (any, error){
			{func() (any, error) { return orig.FileName() }, func() (any, error) { return loaded.FileName() }},
			{func() (any, error) { return orig.FileSize() }, func() (any, error) { return loaded.FileSize() }},
			{func() (any, error) { return orig.ContentType() }, func() (any, error) { return loaded.ContentType() }},
		} {
			want, err := pair[0]()
			require.NoError(t, err)
			got, err := pair[1]()
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}

	for _, q := range []string{
		"content_type=application/octet-stream",
		"or file_size=100 file_size=9000000000",
		"or file_name=b.txt file_name=sample.pdf",
		"file_name=a.txt (or file_size=1 file_size=200)",
	} {
		want, err := before.Search(q)
		require.NoError(t, err)
		got, err := after.Search(q)
		require.NoError(t, err)
		require.ElementsMatch(t, want, got, q)
	}
}

func TestLoadKeepsFileOrder(t *testing.T) {
	idx := index.New()
	_, err := ReadIndex(strings.NewReader(
		"content_type,file_size,file_name,location\n"+
			"text/plain,1,z,/z\n"+
			"text/plain,2,a,/a\n"), idx)
	require.NoError(t, err)
	require.Equal(t, []string{"/z", "/a"}, idx.Locations())

	rec, _ := idx.Get("/a")
	size, err := rec.FileSize()
	require.NoError(t, err)
	require.EqualValues(t, 2, size)
}

func TestReadCorruptedIndex(t *testing.T) {
	cases := []string{
		"",
		"location,file_name,file_size\n/a,a,1\n",
		"location,file_name,file_size,content_type\n/a,a,big,text/plain\n",
		"location,file_name,file_size,content_type\n/a,a,-1,text/plain\n",
		"location,file_name,file_size,content_type\n/a,a,1\n",
	}
	for _, c := range cases {
		_, err := ReadIndex(strings.NewReader(c), index.New())
		require.True(t, ferrors.Is(err, ferrors.ErrIndexCorrupted), "%q: %v", c, err)
	}

	_, err := ReadIndex(strings.NewReader("location,file_name,file_size,content_type\n/a,a,1,x\n/b,b,oops,x\n"), index.New())
	require.ErrorContains(t, err, "line 3")
}

func TestWriteUnresolvedRecordFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	recs := []*models.Record{models.NewRecord(filepath.Join(dir, "missing"))}
	err := SaveFile(path, recs)
	require.True(t, ferrors.Is(err, ferrors.ErrAttributeUnresolved), "%v", err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous", string(content))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteCarriageReturnFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	for _, rec := range []*models.Record{
		models.NewScannedRecord("/data/a\r\nb.txt", "a\r\nb.txt", 1, models.DefaultContentType),
		models.NewScannedRecord("/data/ab.txt", "a\rb.txt", 1, models.DefaultContentType),
	} {
		err := SaveFile(path, []*models.Record{rec})
		require.True(t, ferrors.Is(err, ferrors.ErrUnstorableRecord), "%v", err)
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous", string(content))

	require.True(t, Storable("/data/a\nb.txt"))
	require.False(t, Storable("/data/a\r\nb.txt"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope"), index.New())
	require.Error(t, err)
}
