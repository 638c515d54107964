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

	"remixfs/modules/clock"

	"github.com/gofrs/uuid/v5"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"

	// DefaultMaxFileBytes caps the content of a single file.
	DefaultMaxFileBytes = 10 << 20
)

type (
	Application struct {
		store    WorkspaceStore
		locker   Locker
		seed     Seeder
		clock    clock.Clock
		newID    IDGenerator
		recorder OperationRecorder
		maxFile  int
	}

	Option func(*Application)
)

func WithSeeder(s Seeder) Option {
	return func(app *Application) {
		if s != nil {
			app.seed = s
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(app *Application) {
		if c != nil {
			app.clock = c
		}
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(app *Application) {
		if g != nil {
			app.newID = g
		}
	}
}

func WithRecorder(r OperationRecorder) Option {
	return func(app *Application) {
		if r != nil {
			app.recorder = r
		}
	}
}

// WithMaxFileBytes caps the content of a single file. Values <= 0 keep the
// default.
func WithMaxFileBytes(n int) Option {
	return func(app *Application) {
		if n > 0 {
			app.maxFile = n
		}
	}
}

func NewApp(store WorkspaceStore, locker Locker, opts ...Option) *Application {
	app := &Application{
		store:    store,
		locker:   locker,
		seed:     DefaultSeeder,
		clock:    clock.RealClockProvider(),
		newID:    uuid.NewV7,
		recorder: noopRecorder{},
		maxFile:  DefaultMaxFileBytes,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// MaxFileBytes is the largest file content the application accepts.
func (app *Application) MaxFileBytes() int {
	return app.maxFile
}

func (app *Application) checkSize(content string) error {
	if len(content) > app.maxFile {
		return ErrFileTooLarge
	}
	return nil
}

func lockKey(id uuid.UUID) string {
	return "workspace:" + id.String()
}

// mutate runs fn against the stored workspace under its lock and persists the
// result once. Nothing is saved when fn fails.
func (app *Application) mutate(ctx context.Context, op string, ref Ref, fn func(ws *Workspace) error) (*Workspace, error) {
	if ref.ID.IsNil() || ref.IfVersion < 0 {
		app.recorder.RecordOperation(ctx, op, OutcomeRejected)
		return nil, ErrInvalidData
	}

	var saved *Workspace
	err := app.locker.WithLock(ctx, lockKey(ref.ID), func(ctx context.Context) error {
		ws, err := app.store.Load(ctx, ref.ID)
		if err != nil {
			return err
		}
		if ref.IfVersion > 0 && ws.Version != ref.IfVersion {
			return ErrPrecondition
		}
		if err := fn(ws); err != nil {
			return err
		}
		ws.Version++
		ws.UpdatedAt = app.clock.Now().UTC()
		if err := app.store.Save(ctx, ws); err != nil {
			return err
		}
		saved = ws
		return nil
	})
	if err != nil {
		return nil, app.fail(ctx, op, ref.ID, err)
	}

	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	slog.DebugContext(ctx, "workspace updated",
		slog.String("operation", op),
		slog.String("workspace.id", ref.ID.String()),
		slog.Int64("workspace.version", saved.Version))
	return saved, nil
}

// fail records the outcome of a failed operation and collapses anything that is
// not a domain error into ErrUnhandled.
func (app *Application) fail(ctx context.Context, op string, id uuid.UUID, err error) error {
	if isDomainError(err) {
		app.recorder.RecordOperation(ctx, op, OutcomeRejected)
		for _, d := range domainErrors {
			if errors.Is(err, d) {
				return d
			}
		}
	}
	app.recorder.RecordOperation(ctx, op, OutcomeError)
	slog.ErrorContext(ctx, "unexpected error",
		slog.String("operation", op),
		slog.String("workspace.id", id.String()),
		slog.Any("error", err))
	return ErrUnhandled
}

func (app *Application) load(ctx context.Context, op string, id uuid.UUID) (*Workspace, error) {
	if id.IsNil() {
		app.recorder.RecordOperation(ctx, op, OutcomeRejected)
		return nil, ErrInvalidData
	}
	ws, err := app.store.Load(ctx, id)
	if err != nil {
		return nil, app.fail(ctx, op, id, err)
	}
	return ws, nil
}
