// SPDX-License-Identifier: Apache-2.0

package http

import (
	"sort"
	"sync"
	"time"

	"github.com/noa10/mataresit-app-sub003/models"
)

// memoryStore keeps each principal's records in memory, partitioned by
// collection. Listing order is updated_at then id, so pagination is stable
// across requests as long as no write lands in between.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[models.EntityType]map[string]models.RemoteEntity
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]map[models.EntityType]map[string]models.RemoteEntity)}
}

func (s *memoryStore) upsert(principal string, collection models.EntityType, record models.RemoteEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collections, ok := s.data[principal]
	if !ok {
		collections = make(map[models.EntityType]map[string]models.RemoteEntity)
		s.data[principal] = collections
	}
	records, ok := collections[collection]
	if !ok {
		records = make(map[string]models.RemoteEntity)
		collections[collection] = records
	}
	records[record.ID] = record
}

// delete reports whether the record existed.
func (s *memoryStore) delete(principal string, collection models.EntityType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.data[principal][collection]
	if _, ok := records[id]; !ok {
		return false
	}
	delete(records, id)
	return true
}

func (s *memoryStore) listSince(principal string, collection models.EntityType, since time.Time, limit, offset int) []models.RemoteEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.RemoteEntity
	for _, record := range s.data[principal][collection] {
		if !since.IsZero() && record.UpdatedAt.Before(since) {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return page(matched, limit, offset)
}

func (s *memoryStore) listIDs(principal string, collection models.EntityType, limit, offset int) models.RemoteIDPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[principal][collection]))
	for id := range s.data[principal][collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	paged := page(ids, limit, offset)
	return models.RemoteIDPage{
		IDs:  paged,
		More: limit > 0 && offset+len(paged) < len(ids),
	}
}

func (s *memoryStore) fetch(principal string, collection models.EntityType, ids []string) []models.RemoteEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.RemoteEntity, 0, len(ids))
	for _, id := range ids {
		if record, ok := s.data[principal][collection][id]; ok {
			records = append(records, record)
		}
	}
	return records
}

// page applies limit/offset; limit <= 0 means no limit.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
