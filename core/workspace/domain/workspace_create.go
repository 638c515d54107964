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
	"errors"
	"log/slog"

	"github.com/gofrs/uuid/v5"
)

func (app *Application) CreateWorkspace(ctx context.Context) (*Workspace, error) {
	const op = "create_workspace"
	id, err := app.newID()
	if err != nil {
		return nil, app.fail(ctx, op, uuid.Nil, err)
	}
	files, err := app.seed(ctx)
	if err != nil {
		return nil, app.fail(ctx, op, id, err)
	}
	ws := NewWorkspace(id, files, app.clock.Now().UTC())
	if err := app.store.Save(ctx, ws); err != nil {
		return nil, app.fail(ctx, op, id, err)
	}
	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	slog.InfoContext(ctx, "created workspace", slog.String("workspace.id", id.String()))
	return ws, nil
}

// LoadOrSeed returns the stored workspace, or seeds and stores a fresh one
// under id when nothing is stored yet. A stored but unreadable workspace is an
// error, never a reason to reseed.
func (app *Application) LoadOrSeed(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	const op = "load_or_seed"
	if id.IsNil() {
		app.recorder.RecordOperation(ctx, op, OutcomeRejected)
		return nil, ErrInvalidData
	}

	var ws *Workspace
	err := app.locker.WithLock(ctx, lockKey(id), func(ctx context.Context) error {
		loaded, err := app.store.Load(ctx, id)
		if err == nil {
			ws = loaded
			return nil
		}
		if !errors.Is(err, ErrWorkspaceNotFound) {
			return err
		}
		files, err := app.seed(ctx)
		if err != nil {
			return err
		}
		seeded := NewWorkspace(id, files, app.clock.Now().UTC())
		if err := app.store.Save(ctx, seeded); err != nil {
			return err
		}
		slog.InfoContext(ctx, "seeded workspace", slog.String("workspace.id", id.String()))
		ws = seeded
		return nil
	})
	if err != nil {
		return nil, app.fail(ctx, op, id, err)
	}
	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	return ws, nil
}
