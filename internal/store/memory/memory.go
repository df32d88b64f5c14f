// Package memory provides an in-memory key-value backend for the tracker
// store, used for tests and ephemeral deployments.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"calorie/internal/store"
)

var (
	_ store.Backend = (*Backend)(nil)
	_ store.Lister  = (*Backend)(nil)
)

type Backend struct {
	mu     sync.Mutex
	values map[string][]byte

	// defaults answer "<session>:<name>" lookups for keys never written in
	// that session. cleared records namespaced keys deleted since, so a
	// reset does not bring the seed back.
	defaults map[string][]byte
	cleared  map[string]struct{}
}

func New() *Backend {
	return &Backend{
		values:   make(map[string][]byte),
		defaults: make(map[string][]byte),
		cleared:  make(map[string]struct{}),
	}
}

// NewFromFile seeds the backend from a JSON object mapping keys to values,
// e.g. {"calorieLimit": 1800, "meals": [...]}. Unprefixed keys are stored
// as-is and also serve as the starting value of that key in every session;
// "<session>:<key>" entries seed one session only. A missing or unreadable
// file yields an empty backend.
func NewFromFile(path string) *Backend {
	b := New()
	if strings.TrimSpace(path) == "" {
		return b
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return b
	}
	var seed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &seed); err != nil {
		return b
	}
	for k, v := range seed {
		b.values[k] = append([]byte(nil), v...)
		if !strings.Contains(k, ":") {
			b.defaults[k] = append([]byte(nil), v...)
		}
	}
	return b
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.values[key]; ok {
		return append([]byte(nil), v...), true, nil
	}
	if v, ok := b.defaultFor(key); ok {
		return append([]byte(nil), v...), true, nil
	}
	return nil, false, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	delete(b.cleared, key)
	return nil
}

func (b *Backend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.values, k)
		if _, ok := b.defaultFor(k); ok {
			b.cleared[k] = struct{}{}
		}
	}
	return nil
}

// Keys returns the written keys starting with prefix, in sorted order.
// Seed defaults a session has not written are not listed.
func (b *Backend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// defaultFor must be called with b.mu held.
func (b *Backend) defaultFor(key string) ([]byte, bool) {
	ns, name, ok := strings.Cut(key, ":")
	if !ok || ns == "" {
		return nil, false
	}
	if _, gone := b.cleared[key]; gone {
		return nil, false
	}
	v, ok := b.defaults[name]
	return v, ok
}
