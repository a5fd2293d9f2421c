package index

import (
	"sync"

	"fileindex/internal/query"
	"fileindex/pkg/models"
)

// Index is the catalog of records keyed by location. Iteration follows
// insertion order; replacing a record keeps its position.
type Index struct {
	mu sync.RWMutex
	// order holds records in insertion order, nil where one was removed.
	order []*models.Record
	pos   map[string]int
}

// New returns an empty index.
func New() *Index {
	return &Index{pos: make(map[string]int)}
}

// Add inserts rec, replacing any record with the same location.
func (idx *Index) Add(rec *models.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if i, ok := idx.pos[rec.Location]; ok {
		idx.order[i] = rec
		return
	}
	idx.pos[rec.Location] = len(idx.order)
	idx.order = append(idx.order, rec)
}

// Remove drops the record at location, if any.
func (idx *Index) Remove(location string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	i, ok := idx.pos[location]
	if !ok {
		return
	}
	delete(idx.pos, location)
	idx.order[i] = nil
	if len(idx.pos) < len(idx.order)/2 {
		idx.compact()
	}
}

// compact drops removed slots from order. Callers hold the write lock.
func (idx *Index) compact() {
	live := make([]*models.Record, 0, len(idx.pos))
	for _, rec := range idx.order {
		if rec != nil {
			idx.pos[rec.Location] = len(live)
			live = append(live, rec)
		}
	}
	idx.order = live
}

// Get returns the record at location.
func (idx *Index) Get(location string) (*models.Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	i, ok := idx.pos[location]
	if !ok {
		return nil, false
	}
	return idx.order[i], true
}

// Len is the number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.pos)
}

// Locations returns a snapshot of all locations in iteration order.
func (idx *Index) Locations() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	locations := make([]string, 0, len(idx.pos))
	for _, rec := range idx.order {
		if rec != nil {
			locations = append(locations, rec.Location)
		}
	}
	return locations
}

// Records returns a snapshot of all records in iteration order.
func (idx *Index) Records() []*models.Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	recs := make([]*models.Record, 0, len(idx.pos))
	for _, rec := range idx.order {
		if rec != nil {
			recs = append(recs, rec)
		}
	}
	return recs
}

// Search returns the locations of the records matching queryString.
func (idx *Index) Search(queryString string) ([]string, error) {
	return query.Search(idx, queryString)
}
