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

package domain

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// WorkspaceStore persists whole workspace snapshots.
//
// A snapshot is an opaque blob to the store: the application loads it,
// mutates it in memory and saves it back under the workspace lock, so a store
// never needs to understand the tree.
//
// Implementation Notes:
//   - Load returns ErrWorkspaceNotFound when nothing is stored under id
//   - Load must fail (not fall back to defaults) when the stored blob is corrupt
//   - Save replaces the snapshot atomically; partial writes must never be visible
type WorkspaceStore interface {
	Load(ctx context.Context, id uuid.UUID) (*Workspace, error)
	Save(ctx context.Context, ws *Workspace) error
}

// Locker serialises mutations of one workspace. fn runs while the lock for
// key is held; the lock is released when fn returns.
//
// Returns ErrBusy when the lock could not be acquired in time.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Seeder produces the initial file tree of a new or reset workspace.
type Seeder func(ctx context.Context) (Tree, error)

// OperationRecorder receives one call per application operation.
type OperationRecorder interface {
	RecordOperation(ctx context.Context, operation string, outcome string)
}

// IDGenerator mints workspace and tab ids.
type IDGenerator func() (uuid.UUID, error)

type noopRecorder struct{}

func (noopRecorder) RecordOperation(context.Context, string, string) {}
