package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Chaves usadas pelo cache da aplicação
const (
	KeyDashboardResumo = "dashboard:resumo"
	keyPerfilRole      = "perfil-role:"
	keyOAuthState      = "oauth-state:"
)

// OAuthStateKey guarda o state de um login Microsoft em andamento
func OAuthStateKey(state string) string {
	return keyOAuthState + state
}

// PerfilRoleKey é a chave do papel em cache de um usuário
func PerfilRoleKey(usuarioID string) string {
	return keyPerfilRole + usuarioID
}

// Cache guarda valores JSON com expiração
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// GetJSON lê a chave em dst; false quando a chave não existe
func (r *RedisInternal) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON grava value serializado
func (r *RedisInternal) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete remove as chaves
func (r *RedisInternal) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// DeletePrefix remove todas as chaves com o prefixo
func (r *RedisInternal) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.Redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", prefix, err)
	}
	return r.Delete(ctx, keys...)
}

// InvalidatePerfilRoles limpa o cache de papéis
func InvalidatePerfilRoles(ctx context.Context, c Cache) error {
	return c.DeletePrefix(ctx, keyPerfilRole)
}

// MemoryCache é o cache local usado quando o Redis está desligado
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	raw     []byte
	expires time.Time
}

// NewMemoryCache cria um MemoryCache vazio
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]memoryItem{}, now: time.Now}
}

func (m *MemoryCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	item, ok := m.items[key]
	if ok && !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(item.raw, dst)
}

func (m *MemoryCache) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := memoryItem{raw: raw}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

var (
	_ Cache = (*RedisInternal)(nil)
	_ Cache = (*MemoryCache)(nil)
)
