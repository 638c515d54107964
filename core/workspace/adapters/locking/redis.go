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
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remixfs/core/workspace/domain"
	distlock "remixfs/modules/db/redis/locking"
)

var _ domain.Locker = (*Redis)(nil)

// Redis serialises work per key across every replica sharing one Redis.
type Redis struct {
	exec      *distlock.LockingTaskExecutor
	atMostFor time.Duration
}

// NewRedis wraps exec, which should be built with WithWaitForLock(true) and an
// acquire timeout. atMostFor bounds how long one mutation may hold the lock.
func NewRedis(exec *distlock.LockingTaskExecutor, atMostFor time.Duration) *Redis {
	return &Redis{exec: exec, atMostFor: atMostFor}
}

// WithLock implements domain.Locker.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ran := false
	err := r.exec.Execute(ctx, distlock.LockConfiguration{
		Name:          key,
		LockAtMostFor: r.atMostFor,
	}, func(ctx context.Context) error {
		ran = true
		return fn(ctx)
	})
	if err == nil || ran {
		return err
	}

	switch {
	case errors.Is(err, distlock.ErrLockNotAcquired):
		return domain.ErrBusy
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return domain.ErrBusy
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("lock %s: %w", key, err)
}
