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

	"remixfs/modules/api/serde"
)

func (a *WorkspaceAPI) ListTabs(w http.ResponseWriter, r *http.Request) {
	id, ok := a.workspaceID(w, r)
	if !ok {
		return
	}
	ws, err := a.app.GetWorkspace(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setETag(w, ws.Version)
	serde.WriteJSON(w, http.StatusOK, mapTabs(ws))
}

// OpenFile returns the tab for the file, creating it when needed, and makes
// it current.
func (a *WorkspaceAPI) OpenFile(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	var req openFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tab, ws, err := a.app.OpenFile(r.Context(), ref, req.Path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setETag(w, ws.Version)
	serde.WriteJSON(w, http.StatusOK, mapTabWithContent(ws, tab))
}

func (a *WorkspaceAPI) CloseFile(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	raw, ok := requiredQuery(w, r, "path")
	if !ok {
		return
	}
	ws, err := a.app.CloseFile(r.Context(), ref, raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setETag(w, ws.Version)
	serde.WriteJSON(w, http.StatusOK, mapTabs(ws))
}

func (a *WorkspaceAPI) SetCurrentFile(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	var req setCurrentFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	raw := ""
	if req.Path.IsSpecified() && !req.Path.IsNull() {
		raw = req.Path.MustGet()
	}
	ws, err := a.app.SetCurrentFile(r.Context(), ref, raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setETag(w, ws.Version)
	serde.WriteJSON(w, http.StatusOK, mapTabs(ws))
}
