package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pingcap/errors"
	"go.uber.org/zap"

	"fileindex/internal/logutil"
	"fileindex/internal/store"
)

// Crawler lists the files below Root.
type Crawler struct {
	Root     string
	skipDirs map[string]struct{}
}

func NewCrawler(root string, skipDirs []string) *Crawler {
	c := &Crawler{Root: root, skipDirs: make(map[string]struct{}, len(skipDirs))}
	for _, dir := range skipDirs {
		c.skipDirs[dir] = struct{}{}
	}
	return c
}

// Crawl walks Root and sends the location of every file to out, closing it
// when done. Root itself may be a symlink, but symlinked directories below
// it are not followed. Locations are reported under Root as given. Entries
// that cannot be read or stored are skipped, only an unreadable Root is an
// error.
func (c *Crawler) Crawl(ctx context.Context, out chan<- string) error {
	defer close(out)

	walkRoot, err := filepath.EvalSymlinks(c.Root)
	if err != nil {
		return errors.Annotatef(err, "crawl %s", c.Root)
	}

	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == walkRoot {
				return errors.Annotatef(err, "crawl %s", c.Root)
			}
			logutil.Warn("skip unreadable entry", zap.String("path", path), logutil.ShortError(err))
			return nil
		}
		if d.IsDir() {
			if _, skip := c.skipDirs[d.Name()]; skip && path != walkRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// links to directories are neither entered nor indexed
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}

		location, err := c.location(walkRoot, path)
		if err != nil {
			return err
		}
		if !store.Storable(location) {
			logutil.Warn("skip file the index cannot store", zap.String("path", location))
			return nil
		}
		select {
		case out <- location:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// location maps a path below the resolved root back under Root.
func (c *Crawler) location(walkRoot, path string) (string, error) {
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return "", errors.Trace(err)
	}
	return filepath.Join(c.Root, rel), nil
}
