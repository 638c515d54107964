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
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"remixfs/modules/clock"
	"remixfs/modules/db"

	"github.com/spf13/afero"
)

var _ db.KV = (*KV)(nil)

const (
	backupDirName = ".backups"
	fileExt       = ".json"
)

// KV stores one file per key under a directory of an afero.Fs.
//
//   - AtomicSet writes to a temp file in the same directory and renames it over
//     the target, so readers see either the old or the new blob
//   - before each overwrite the previous blob is copied to .backups/, keeping
//     the newest `backups` copies per key
type KV struct {
	mu      sync.Mutex
	fs      afero.Afero
	dir     string
	prefix  string
	backups int
	clock   clock.Clock
}

type Option func(*KV)

// WithBackups keeps n rolling backups per key. n <= 0 disables backups.
func WithBackups(n int) Option {
	return func(k *KV) {
		k.backups = n
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(k *KV) {
		k.prefix = prefix
	}
}

func WithClock(c clock.Clock) Option {
	return func(k *KV) {
		if c != nil {
			k.clock = c
		}
	}
}

func NewKV(fs afero.Fs, dir string, opts ...Option) (*KV, error) {
	k := &KV{
		fs:    afero.Afero{Fs: fs},
		dir:   dir,
		clock: clock.RealClockProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	if err := k.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file kv: create %s: %w", dir, err)
	}
	if k.backups > 0 {
		if err := k.fs.MkdirAll(filepath.Join(dir, backupDirName), 0o755); err != nil {
			return nil, fmt.Errorf("file kv: create backup dir: %w", err)
		}
	}
	return k, nil
}

// fileName maps a key to a single safe path segment.
func (k *KV) fileName(key string) string {
	if k.prefix != "" {
		key = k.prefix + ":" + key
	}
	return url.QueryEscape(key)
}

func (k *KV) path(key string) string {
	return filepath.Join(k.dir, k.fileName(key)+fileExt)
}

func (k *KV) AtomicGet(_ context.Context, key string) (any, error) {
	bs, err := k.fs.ReadFile(k.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file kv: AtomicGet %q failed: %w", key, err)
	}
	return bs, nil
}

func (k *KV) AtomicSet(_ context.Context, key string, value any) (any, error) {
	bs, err := db.EncodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("file kv: encode value for key %q: %w", key, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	target := k.path(key)
	prev, err := k.fs.ReadFile(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		prev = nil
	case err != nil:
		return nil, fmt.Errorf("file kv: read previous %q: %w", key, err)
	}

	if prev != nil && k.backups > 0 {
		if err := k.backup(key, prev); err != nil {
			slog.Warn("file kv: backup failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	tmp, err := k.fs.TempFile(k.dir, "."+k.fileName(key)+"-*")
	if err != nil {
		return nil, fmt.Errorf("file kv: temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(bs)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = k.fs.Remove(tmpName)
		return nil, fmt.Errorf("file kv: write %q: %w", key, werr)
	}
	if err := k.fs.Rename(tmpName, target); err != nil {
		_ = k.fs.Remove(tmpName)
		return nil, fmt.Errorf("file kv: commit %q: %w", key, err)
	}

	if prev == nil {
		return nil, nil
	}
	return prev, nil
}

func (k *KV) backup(key string, data []byte) error {
	dir := filepath.Join(k.dir, backupDirName)
	stamp := k.clock.Now().UTC().Format("20060102-150405.000000000")
	name := filepath.Join(dir, k.fileName(key)+"@"+stamp+fileExt)
	if err := k.fs.WriteFile(name, data, 0o600); err != nil {
		return err
	}
	return k.pruneBackups(key)
}

// Backups lists the backup files of key, newest first.
func (k *KV) Backups(key string) ([]string, error) {
	dir := filepath.Join(k.dir, backupDirName)
	entries, err := k.fs.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prefix := k.fileName(key) + "@"
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, filepath.Join(dir, e.Name()))
		}
	}
	// stamps sort lexically
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}

func (k *KV) pruneBackups(key string) error {
	names, err := k.Backups(key)
	if err != nil {
		return err
	}
	for i := k.backups; i < len(names); i++ {
		if err := k.fs.Remove(names[i]); err != nil {
			return fmt.Errorf("remove old backup %s: %w", names[i], err)
		}
	}
	return nil
}
