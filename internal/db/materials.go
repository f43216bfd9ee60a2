package db

import (
	"context"
	"sync"

	"github.com/studyhub/backend/internal/model"
)

// MaterialStore keeps the material catalog in insertion order.
// Ids come from a counter that only moves forward, so a deleted id is never handed out again.
type MaterialStore struct {
	mu     sync.RWMutex
	items  []model.Material
	nextID int64
}

func NewMaterialStore() *MaterialStore {
	return &MaterialStore{nextID: 1}
}

// ReplaceMaterials swaps the whole catalog, keeping the ids already set on items.
// The counter resumes after the highest id seen.
func (s *MaterialStore) ReplaceMaterials(ctx context.Context, items []model.Material) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]model.Material(nil), items...)
	for _, item := range s.items {
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
	return nil
}

// InsertMaterial assigns the next id to m and appends it.
func (s *MaterialStore) InsertMaterial(ctx context.Context, m model.Material) (*model.Material, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextID
	s.nextID++
	s.items = append(s.items, m)
	return &m, nil
}

func (s *MaterialStore) ListMaterials(ctx context.Context) ([]model.Material, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Material, len(s.items))
	copy(out, s.items)
	return out, nil
}

// DeleteMaterial removes the material with the given id and returns it.
func (s *MaterialStore) DeleteMaterial(ctx context.Context, id int64) (*model.Material, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			removed := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)
			return &removed, nil
		}
	}
	return nil, ErrNoRows
}

func (s *MaterialStore) CountMaterials() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
