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

func (app *Application) GetWorkspace(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	const op = "get_workspace"
	ws, err := app.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	return ws, nil
}

// GetFileContent returns the content of the file at rawPath together with the
// workspace version it was read from.
func (app *Application) GetFileContent(ctx context.Context, id uuid.UUID, rawPath string) (string, int64, error) {
	const op = "get_file_content"
	p, err := ParsePath(rawPath)
	if err != nil {
		return "", 0, app.fail(ctx, op, id, err)
	}
	ws, err := app.load(ctx, op, id)
	if err != nil {
		return "", 0, err
	}
	content, err := ws.FileContent(p)
	if err != nil {
		return "", 0, app.fail(ctx, op, id, err)
	}
	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	return content, ws.Version, nil
}

// Stat returns the node at rawPath and, for folders, its sorted listing.
func (app *Application) Stat(ctx context.Context, id uuid.UUID, rawPath string) (*Node, []Entry, int64, error) {
	const op = "stat"
	p, err := ParsePath(rawPath)
	if err != nil {
		return nil, nil, 0, app.fail(ctx, op, id, err)
	}
	ws, err := app.load(ctx, op, id)
	if err != nil {
		return nil, nil, 0, err
	}
	n, err := ws.Stat(p)
	if err != nil {
		return nil, nil, 0, app.fail(ctx, op, id, err)
	}
	var entries []Entry
	if n.Type == NodeFolder {
		if entries, err = ws.List(p); err != nil {
			return nil, nil, 0, app.fail(ctx, op, id, err)
		}
	}
	app.recorder.RecordOperation(ctx, op, OutcomeOK)
	return n, entries, ws.Version, nil
}
