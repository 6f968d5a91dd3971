package repository

import (
	"context"
	"fmt"
	"sync"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

// MemoryPresetStore keeps presets in process memory. Used when Redis is
// disabled and by the CLI.
type MemoryPresetStore struct {
	mu       sync.RWMutex
	presets  map[string]map[string]models.ThresholdPreset
	defaults map[string]string
}

var _ domrepo.PresetStore = (*MemoryPresetStore)(nil)

func NewMemoryPresetStore() *MemoryPresetStore {
	return &MemoryPresetStore{
		presets:  make(map[string]map[string]models.ThresholdPreset),
		defaults: make(map[string]string),
	}
}

func (s *MemoryPresetStore) Get(_ context.Context, userID, name string) (*models.ThresholdPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[userID][name]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", name, models.ErrPresetNotFound)
	}
	return &p, nil
}

func (s *MemoryPresetStore) List(_ context.Context, userID string) ([]models.ThresholdPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ThresholdPreset, 0, len(s.presets[userID]))
	for _, p := range s.presets[userID] {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryPresetStore) Save(_ context.Context, userID string, p models.ThresholdPreset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presets[userID] == nil {
		s.presets[userID] = make(map[string]models.ThresholdPreset)
	}
	s.presets[userID][p.Name] = p
	return nil
}

func (s *MemoryPresetStore) Delete(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.presets[userID][name]; !ok {
		return fmt.Errorf("preset %q: %w", name, models.ErrPresetNotFound)
	}
	delete(s.presets[userID], name)
	return nil
}

func (s *MemoryPresetStore) Default(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults[userID], nil
}

func (s *MemoryPresetStore) SetDefault(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[userID] = name
	return nil
}
