// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"sync"
	"time"

	"remixfs/modules/clock"
)

var _ CounterStore = (*MemoryCounter)(nil)

// MemoryCounter is a single-process CounterStore. A key's TTL starts at its
// first increment, mirroring the redis INCR + PEXPIRE script.
type MemoryCounter struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]counterEntry
	sweepAt time.Time
}

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounter(c clock.Clock) *MemoryCounter {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &MemoryCounter{clock: c, entries: make(map[string]counterEntry)}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.sweep(now, ttl)

	e, ok := m.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = counterEntry{expiresAt: now.Add(ttl)}
	}
	e.count++
	m.entries[key] = e
	return e.count, nil
}

func (m *MemoryCounter) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

// sweep drops expired keys at most once per ttl.
func (m *MemoryCounter) sweep(now time.Time, ttl time.Duration) {
	if now.Before(m.sweepAt) {
		return
	}
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.sweepAt = now.Add(ttl)
}
