package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AngelCh415/brandpulse/internal/models"
)

var ErrNoDataset = errors.New("no dataset loaded yet")

// DatasetStore holds the latest harmonized dataset. Each refresh swaps the whole
// snapshot, so readers never observe a half-built dataset.
type DatasetStore struct {
	mu sync.RWMutex
	ds *models.HarmonizedDataset
}

func NewDatasetStore() *DatasetStore { return &DatasetStore{} }

func (s *DatasetStore) Replace(ds models.HarmonizedDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = &ds
}

// Current returns the snapshot. The slices are shared; callers must not mutate them.
func (s *DatasetStore) Current() (models.HarmonizedDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return models.HarmonizedDataset{}, ErrNoDataset
	}
	return *s.ds, nil
}

func (s *DatasetStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds != nil
}

// Query copies the records dated within [from, to] that pass f. A zero from or to
// leaves that side of the window open.
func (s *DatasetStore) Query(from, to time.Time, f func(models.DailyMetric) bool) ([]models.DailyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	var out []models.DailyMetric
	for _, m := range s.ds.Metrics {
		if !within(m.Date, from, to) {
			continue
		}
		if f == nil || f(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Events returns the annotations within [from, to] that are global or scoped to
// one of labels (lowercase keys). An empty labels set keeps every event.
func (s *DatasetStore) Events(from, to time.Time, labels map[string]struct{}) ([]models.EventAnnotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrNoDataset
	}
	out := []models.EventAnnotation{}
	for _, e := range s.ds.Events {
		if within(e.Date, from, to) && e.AppliesTo(labels) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Target finds the target for month (yyyy-MM) and label, case-insensitively.
func (s *DatasetStore) Target(month, label string) (models.MonthlyTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return models.MonthlyTarget{}, false
	}
	return s.ds.Target(strings.TrimSpace(month), label)
}

func within(d, from, to time.Time) bool {
	d = models.Day(d)
	if !from.IsZero() && d.Before(models.Day(from)) {
		return false
	}
	if !to.IsZero() && d.After(models.Day(to)) {
		return false
	}
	return true
}
