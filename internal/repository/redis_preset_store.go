package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisPresetStore keeps each user's presets in one hash (field = preset name,
// value = JSON) and the default preset name in a plain key.
type RedisPresetStore struct {
	client redis.UniversalClient
	prefix string
}

var _ domrepo.PresetStore = (*RedisPresetStore)(nil)

func NewRedisPresetStore(client redis.UniversalClient, prefix string) *RedisPresetStore {
	if prefix == "" {
		prefix = "finsignal"
	}
	return &RedisPresetStore{client: client, prefix: prefix}
}

func (s *RedisPresetStore) presetsKey(userID string) string {
	return fmt.Sprintf("%s:presets:%s", s.prefix, userID)
}

func (s *RedisPresetStore) defaultKey(userID string) string {
	return fmt.Sprintf("%s:presets:%s:default", s.prefix, userID)
}

func (s *RedisPresetStore) Get(ctx context.Context, userID, name string) (*models.ThresholdPreset, error) {
	raw, err := s.client.HGet(ctx, s.presetsKey(userID), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("preset %q: %w", name, models.ErrPresetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget: %w", err)
	}
	return decodePreset(raw)
}

func (s *RedisPresetStore) List(ctx context.Context, userID string) ([]models.ThresholdPreset, error) {
	all, err := s.client.HGetAll(ctx, s.presetsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.ThresholdPreset, 0, len(all))
	for _, name := range names {
		p, err := decodePreset([]byte(all[name]))
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *RedisPresetStore) Save(ctx context.Context, userID string, p models.ThresholdPreset) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return s.client.HSet(ctx, s.presetsKey(userID), p.Name, b).Err()
}

func (s *RedisPresetStore) Delete(ctx context.Context, userID, name string) error {
	n, err := s.client.HDel(ctx, s.presetsKey(userID), name).Result()
	if err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("preset %q: %w", name, models.ErrPresetNotFound)
	}
	return nil
}

func (s *RedisPresetStore) Default(ctx context.Context, userID string) (string, error) {
	name, err := s.client.Get(ctx, s.defaultKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return name, nil
}

func (s *RedisPresetStore) SetDefault(ctx context.Context, userID, name string) error {
	return s.client.Set(ctx, s.defaultKey(userID), name, 0).Err()
}

func decodePreset(raw []byte) (*models.ThresholdPreset, error) {
	var p models.ThresholdPreset
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	return &p, nil
}
