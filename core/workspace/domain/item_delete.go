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

func (app *Application) DeleteItem(ctx context.Context, ref Ref, rawPath string) (*Workspace, error) {
	const op = "delete_item"
	p, err := ParsePath(rawPath)
	if err != nil {
		return nil, app.fail(ctx, op, ref.ID, err)
	}
	return app.mutate(ctx, op, ref, func(ws *Workspace) error {
		return ws.DeleteItem(p)
	})
}
