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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"remixfs/core/workspace/adapters/locking"
	"remixfs/core/workspace/domain"
	"remixfs/modules/appconfig"
	"remixfs/modules/clock"
	"remixfs/modules/db"
	"remixfs/modules/db/file"
	"remixfs/modules/db/memory"
	"remixfs/modules/db/postgres"
	"remixfs/modules/db/redis"
	"remixfs/modules/db/redis/counter"
	distlock "remixfs/modules/db/redis/locking"
	rl "remixfs/modules/ratelimit"

	"github.com/redis/rueidis/rueidishook"
	"github.com/spf13/afero"
)

// a redis lock outlives a crashed holder by at most this long
const lockAtMostFor = 30 * time.Second

// backend bundles the storage selected by STORE_BACKEND with the lock and
// rate-limit counter that go with it.
type backend struct {
	kv      db.KV
	locker  domain.Locker
	counter rl.CounterStore
	closers []func(context.Context) error
}

func (b *backend) Close(ctx context.Context) error {
	var errs []error
	for _, c := range slices.Backward(b.closers) {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}

func openBackend(ctx context.Context, cfg *appconfig.Config, clk clock.Clock) (*backend, error) {
	b := &backend{
		locker:  locking.NewLocal(cfg.Workspace.LockTimeout),
		counter: rl.NewMemoryCounter(clk),
	}
	prefix := cfg.Store.KeyPrefix

	switch cfg.Store.Backend {
	case appconfig.BackendMemory:
		b.kv = memory.NewKV(prefix)

	case appconfig.BackendFile:
		kv, err := file.NewKV(afero.NewOsFs(), cfg.Store.FileDir,
			file.WithKeyPrefix(prefix),
			file.WithBackups(cfg.Store.FileBackups),
			file.WithClock(clk),
		)
		if err != nil {
			return nil, fmt.Errorf("file store: %w", err)
		}
		b.kv = kv

	case appconfig.BackendRedis:
		var hooks []rueidishook.Hook
		if cfg.Redis.LogCommands {
			hooks = append(hooks, redis.NewLogHook(slog.Default()))
		}
		client, err := redis.NewRueidisClient(ctx, cfg.Redis, hooks...)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error {
			client.Close()
			return nil
		})

		kvOpts := []redis.RedisKVOption{redis.WithKeyPrefix(prefix)}
		if cfg.Store.TTL > 0 {
			kvOpts = append(kvOpts, redis.WithDefaultTTL(cfg.Store.TTL))
		}
		if !cfg.Redis.DisableCache && len(cfg.Redis.ClientTrackingPrefixes) > 0 {
			kvOpts = append(kvOpts, redis.WithClientSideCache())
		}
		b.kv = redis.NewRedisKV(client, kvOpts...)
		b.counter = counter.NewRedisCounterStore(client, prefix+":ratelimit")

		locker, err := redis.NewLocker(cfg.Redis)
		if err != nil {
			return nil, errors.Join(err, b.Close(ctx))
		}
		b.closers = append(b.closers, func(context.Context) error {
			locker.Close()
			return nil
		})
		exec := distlock.NewLockingTaskExecutor(locker,
			distlock.WithNamePrefix(prefix+":lock:"),
			distlock.WithWaitForLock(true),
			distlock.WithAcquireTimeout(cfg.Workspace.LockTimeout),
		)
		b.locker = locking.NewRedis(exec, lockAtMostFor)

	case appconfig.BackendPostgres:
		pool, err := postgres.New(ctx, &cfg.Postgres, postgres.PostgresOptions{
			// assuming writer connection does not pass through pgBouncer,
			// so we can apply server-side prepared statements
			ReaderOptions: []postgres.PgxConfigOption{
				postgres.WithPgBouncerSimpleProtocol(),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		b.closers = append(b.closers, pool.Shutdown)

		if err := pool.HealthCheck(); err != nil {
			return nil, errors.Join(fmt.Errorf("postgres health check: %w", err), b.Close(ctx))
		}
		if cfg.Postgres.MigrateOnStart {
			if err := pool.MigrateUp(); err != nil {
				return nil, errors.Join(fmt.Errorf("postgres migrations: %w", err), b.Close(ctx))
			}
		}
		b.kv = postgres.NewKV(pool, prefix)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	slog.InfoContext(ctx, "store ready", slog.String("store.backend", string(cfg.Store.Backend)))
	return b, nil
}
