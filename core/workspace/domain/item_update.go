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

import "context"

func (app *Application) UpdateFileContent(ctx context.Context, ref Ref, rawPath string, content string) (*Workspace, error) {
	const op = "update_file_content"
	p, err := ParsePath(rawPath)
	if err != nil {
		return nil, app.fail(ctx, op, ref.ID, err)
	}
	if err := app.checkSize(content); err != nil {
		return nil, app.fail(ctx, op, ref.ID, err)
	}
	return app.mutate(ctx, op, ref, func(ws *Workspace) error {
		return ws.UpdateFileContent(p, content)
	})
}

// ModifyItem applies a partial update: the content is replaced when content is
// non-nil, then the item is renamed when newName is non-empty. Both happen in
// one persisted version or not at all.
func (app *Application) ModifyItem(ctx context.Context, ref Ref, rawPath string, content *string, newName string) (*Workspace, error) {
	const op = "modify_item"
	p, err := ParsePath(rawPath)
	if err != nil {
		return nil, app.fail(ctx, op, ref.ID, err)
	}
	if content == nil && newName == "" {
		return nil, app.fail(ctx, op, ref.ID, ErrInvalidData)
	}
	if content != nil {
		if err := app.checkSize(*content); err != nil {
			return nil, app.fail(ctx, op, ref.ID, err)
		}
	}
	return app.mutate(ctx, op, ref, func(ws *Workspace) error {
		if content != nil {
			if err := ws.UpdateFileContent(p, *content); err != nil {
				return err
			}
		}
		if newName != "" {
			return ws.RenameItem(p, newName)
		}
		return nil
	})
}
