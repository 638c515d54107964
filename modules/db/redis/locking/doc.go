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

// Package locking runs tasks while holding a rueidislock lock.
//
// Workspace mutations use the blocking mode, so concurrent writers queue up
// behind each other instead of failing:
//
//	exec := locking.NewLockingTaskExecutor(
//		locker,
//		locking.WithNamePrefix("remixfs:lock:"),
//		locking.WithWaitForLock(true),
//		locking.WithAcquireTimeout(5*time.Second),
//	)
//
//	err := exec.Execute(ctx, locking.LockConfiguration{
//		Name:          "workspace:" + id.String(),
//		LockAtMostFor: 10 * time.Second,
//	}, func(ctx context.Context) error {
//		// load, mutate and save the workspace
//		return nil
//	})
//
// With WithWaitForLock(false) Execute tries once and returns
// ErrLockNotAcquired when another node holds the lock.
package locking
