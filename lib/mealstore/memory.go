package mealstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"babnet-backend/lib/meal"
)

// MemoryStore is an in-memory Store used by unit tests and local
// development without a running mongodb.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) SaveMealData(_ context.Context, date string, data meal.CafeteriaData, documentId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	doc, exists := s.docs[date]
	if !exists {
		doc = Document{Date: date, CreatedAt: now}
	}
	doc.Data = data
	doc.DocumentId = documentId
	doc.UpdatedAt = now
	s.docs[date] = doc
	return nil
}

func (s *MemoryStore) GetMealData(_ context.Context, date string) (*meal.CafeteriaData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[date]
	if !ok {
		return nil, nil
	}
	data := doc.Data
	return &data, nil
}

// sortedDatesDesc returns every stored date key, newest first.
// lexicographic order on YYYY-MM-DD keys is date order.
func (s *MemoryStore) sortedDatesDesc() []string {
	dates := make([]string, 0, len(s.docs))
	for date := range s.docs {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

func (s *MemoryStore) GetDateRange(_ context.Context) (DateRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return DateRange{}, nil
	}
	dates := s.sortedDatesDesc()
	return DateRange{Earliest: dates[len(dates)-1], Latest: dates[0]}, nil
}

func (s *MemoryStore) GetDocumentId(_ context.Context, date string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[date]
	if !ok {
		return "", nil
	}
	return doc.DocumentId, nil
}

func (s *MemoryStore) SearchLatestFoodImage(_ context.Context, foodName string) (*FoodImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, date := range s.sortedDatesDesc() {
		if found, ok := searchDocument(s.docs[date], foodName); ok {
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalMealData: int64(len(s.docs))}
	for _, doc := range s.docs {
		if stats.LastUpdated == nil || doc.UpdatedAt.After(*stats.LastUpdated) {
			updated := doc.UpdatedAt
			stats.LastUpdated = &updated
		}
	}
	return stats, nil
}

// Doc exposes the raw document for assertions in tests.
func (s *MemoryStore) Doc(date string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[date]
	return doc, ok
}
