package indexer

import (
	"context"
	"time"

	"github.com/docker/go-units"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"fileindex/internal/config"
	"fileindex/internal/index"
	"fileindex/internal/logutil"
	"fileindex/internal/metrics"
	"fileindex/pkg/models"
)

// IndexBuilder fills an Index from directory roots.
type IndexBuilder struct {
	Index *index.Index

	workers  int
	scanRate float64
	skipDirs []string
}

// Summary describes one Build.
type Summary struct {
	Files  int64
	Failed int64
	Bytes  int64
}

func NewIndexBuilder(idx *index.Index, cfg *config.Config) *IndexBuilder {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &IndexBuilder{
		Index:    idx,
		workers:  workers,
		scanRate: cfg.ScanRate,
		skipDirs: cfg.SkipDirs,
	}
}

// Build crawls every root, adds the files found to the index and scans
// them. A location already in the index is replaced by a fresh record, so
// crawling a root twice never duplicates records. Files that cannot be
// scanned are logged and dropped from the index.
func (b *IndexBuilder) Build(ctx context.Context, roots ...string) (Summary, error) {
	start := time.Now()

	var pending []*models.Record
	seen := make(map[string]struct{})
	for _, root := range roots {
		recs, err := b.crawl(ctx, root, seen)
		if err != nil {
			return Summary{}, err
		}
		pending = append(pending, recs...)
	}
	logutil.Info("crawl finished", zap.Strings("roots", roots), zap.Int("files", len(pending)), zap.Duration("take", time.Since(start)))

	summary, err := b.scan(ctx, pending)
	if err != nil {
		return summary, err
	}

	logutil.Info("index built",
		zap.Int64("files", summary.Files),
		zap.Int64("failed", summary.Failed),
		zap.String("size", units.HumanSize(float64(summary.Bytes))),
		zap.Duration("take", time.Since(start)))
	return summary, nil
}

// crawl adds a fresh record for each file below root that is not in seen.
func (b *IndexBuilder) crawl(ctx context.Context, root string, seen map[string]struct{}) ([]*models.Record, error) {
	crawler := NewCrawler(root, b.skipDirs)
	locations := make(chan string)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return crawler.Crawl(egCtx, locations)
	})

	var recs []*models.Record
	for location := range locations {
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		rec := models.NewRecord(location)
		b.Index.Add(rec)
		recs = append(recs, rec)
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Trace(err)
	}
	return recs, nil
}

// scan probes recs with at most b.workers concurrent probes, paced by
// b.scanRate when set.
func (b *IndexBuilder) scan(ctx context.Context, recs []*models.Record) (Summary, error) {
	var limiter *rate.Limiter
	if b.scanRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.scanRate), 1)
	}

	var files, failed, size atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)

dispatch:
	for _, rec := range recs {
		if limiter != nil {
			if err := limiter.Wait(egCtx); err != nil {
				break dispatch
			}
		} else if egCtx.Err() != nil {
			break dispatch
		}

		eg.Go(func() error {
			if err := rec.Scan(); err != nil {
				failed.Inc()
				metrics.ScanFailures.Inc()
				logutil.Warn("could not scan file, dropped from index", zap.String("location", rec.Location), logutil.ShortError(err))
				b.Index.Remove(rec.Location)
				return nil
			}
			n, err := rec.FileSize()
			if err != nil {
				return err
			}
			files.Inc()
			size.Add(n)
			metrics.ScannedFiles.Inc()
			metrics.ScannedBytes.Add(float64(n))
			return nil
		})
	}

	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	summary := Summary{Files: files.Load(), Failed: failed.Load(), Bytes: size.Load()}
	return summary, errors.Trace(err)
}
