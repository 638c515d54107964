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

package worker

import (
	"context"
	"log/slog"
	"sync"
)

type Worker[Job any] func(context.Context, Job)

// BlockingPool spawns size workers that drain jobs and blocks until they are done.
//
// The caller must ensure that jobs eventually gets closed or ctx gets cancelled.
//
// A worker that panics on a job logs the panic and moves on to the next job, so
// one bad job never stalls the pool.
//
// Use a pool when the job count is unbounded or driven by input (files in a
// template directory, rows of an import) and each job touches a shared
// resource such as disk or the network. For a handful of fixed jobs plain
// goroutines are simpler.
func BlockingPool[Job any](ctx context.Context, size int, jobs <-chan Job, worker Worker[Job]) {
	if size <= 0 {
		size = 1
	}
	wg := sync.WaitGroup{}
	for range size {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					run(ctx, worker, job)
				}
			}
		})
	}

	wg.Wait()
}

func run[Job any](ctx context.Context, worker Worker[Job], job Job) {
	// wg.Go requires that func does not panic
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "worker panicked", slog.Any("panic", r))
		}
	}()
	worker(ctx, job)
}
