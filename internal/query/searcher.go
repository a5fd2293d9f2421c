package query

import (
	"time"

	"go.uber.org/zap"

	"fileindex/internal/logutil"
	"fileindex/internal/metrics"
	"fileindex/pkg/models"
)

// Source is a collection of records with a stable iteration order.
type Source interface {
	Records() []*models.Record
}

// Search executes a query against every record of src and returns the
// locations of the matching ones, in src order. Any error aborts the
// search.
func Search(src Source, queryString string) (results []string, err error) {
	start := time.Now()
	defer func() {
		result := metrics.LblOK
		if err != nil {
			result = metrics.LblError
		}
		metrics.Queries.WithLabelValues(result).Inc()
		metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}()

	matcher, err := CompileQuery(queryString)
	if err != nil {
		return nil, err
	}
	logutil.Debug("compiled query", zap.String("query", queryString), zap.Stringer("matcher", matcher))

	for _, rec := range src.Records() {
		ok, err := Match(matcher, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, rec.Location)
		}
	}

	logutil.Debug("search finished",
		zap.String("query", queryString),
		zap.Int("matches", len(results)),
		zap.Duration("take", time.Since(start)))
	return results, nil
}
