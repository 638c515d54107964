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

// ResetWorkspace replaces the tree with freshly seeded files and closes every tab.
func (app *Application) ResetWorkspace(ctx context.Context, ref Ref) (*Workspace, error) {
	return app.mutate(ctx, "reset_workspace", ref, func(ws *Workspace) error {
		files, err := app.seed(ctx)
		if err != nil {
			return err
		}
		ws.Files = files
		ws.OpenFiles = []Tab{}
		ws.CurrentFile = ""
		return nil
	})
}
