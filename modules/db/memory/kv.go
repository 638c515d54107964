// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"remixfs/modules/db"
)

var _ db.KV = (*KV)(nil)

// KV is an in-process db.KV. Values are copied on the way in and out so
// callers never share a buffer with the store.
type KV struct {
	mu     sync.RWMutex
	prefix string
	data   map[string][]byte
}

func NewKV(prefix string) *KV {
	return &KV{prefix: prefix, data: make(map[string][]byte)}
}

func (k *KV) key(raw string) string {
	if k.prefix == "" {
		return raw
	}
	return k.prefix + ":" + raw
}

// AtomicGet returns a copy of the stored bytes, or (nil, nil) when absent.
func (k *KV) AtomicGet(_ context.Context, key string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	v, ok := k.data[k.key(key)]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

// AtomicSet stores value and returns the previous bytes, or nil.
func (k *KV) AtomicSet(_ context.Context, key string, value any) (any, error) {
	bs, err := db.EncodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("memory kv: encode value for key %q: %w", key, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	full := k.key(key)
	prev, ok := k.data[full]
	k.data[full] = slices.Clone(bs)
	if !ok {
		return nil, nil
	}
	return prev, nil
}

func (k *KV) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.data)
}
