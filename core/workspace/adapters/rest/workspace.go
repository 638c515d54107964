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
package rest

import (
	"net/http"
)

// CreateWorkspace seeds a new workspace and returns its signed handle.
// Returns 201 with a Location header.
func (a *WorkspaceAPI) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := a.app.CreateWorkspace(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	handle, err := a.handles.encode(ws.ID)
	if err == nil {
		w.Header().Set("Location", "/v1/workspaces/"+handle)
	}
	a.writeWorkspace(w, http.StatusCreated, ws)
}

// GetWorkspace returns the whole tree and tab set.
func (a *WorkspaceAPI) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	id, ok := a.workspaceID(w, r)
	if !ok {
		return
	}
	ws, err := a.app.GetWorkspace(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.writeWorkspace(w, http.StatusOK, ws)
}

// ResetWorkspace restores the seed files and closes every tab.
func (a *WorkspaceAPI) ResetWorkspace(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	ws, err := a.app.ResetWorkspace(r.Context(), ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.writeWorkspace(w, http.StatusOK, ws)
}
