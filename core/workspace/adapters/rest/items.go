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

	"remixfs/core/workspace/domain"
	"remixfs/modules/api/serde"
	"remixfs/modules/middleware/problem"
)

// StatItem describes the node at ?path=. Folders come with a sorted listing.
// The root ("/") is always a folder.
func (a *WorkspaceAPI) StatItem(w http.ResponseWriter, r *http.Request) {
	id, ok := a.workspaceID(w, r)
	if !ok {
		return
	}
	raw, ok := requiredQuery(w, r, "path")
	if !ok {
		return
	}
	n, entries, version, err := a.app.Stat(r.Context(), id, raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p, _ := domain.ParsePath(raw)
	setETag(w, version)
	serde.WriteJSON(w, http.StatusOK, mapItem(p.String(), n, entries))
}

func (a *WorkspaceAPI) CreateItem(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	var req createItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ws, err := a.app.CreateItem(r.Context(), ref, req.Path, req.Type, req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.writeWorkspace(w, http.StatusCreated, ws)
}

// ModifyItem is a partial update: content (null clears the file), then name.
func (a *WorkspaceAPI) ModifyItem(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	var req modifyItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var content *string
	if req.Content.IsSpecified() {
		if req.Content.IsNull() {
			content = serde.Ptr("")
		} else {
			content = serde.Ptr(req.Content.MustGet())
		}
	}
	if content == nil && req.Name == "" {
		problem.Write(w, problem.UnprocessableEntity("validation failed",
			problem.WithInvalidParam("body", "no valid fields to update")))
		return
	}

	ws, err := a.app.ModifyItem(r.Context(), ref, req.Path, content, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.writeWorkspace(w, http.StatusOK, ws)
}

// DeleteItem removes ?path= and every tab open on or beneath it.
// Returns 204 with the new ETag.
func (a *WorkspaceAPI) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ref, ok := a.ref(w, r)
	if !ok {
		return
	}
	raw, ok := requiredQuery(w, r, "path")
	if !ok {
		return
	}
	ws, err := a.app.DeleteItem(r.Context(), ref, raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setETag(w, ws.Version)
	w.WriteHeader(http.StatusNoContent)
}

func (a *WorkspaceAPI) GetFileContent(w http.ResponseWriter, r *http.Request) {
	id, ok := a.workspaceID(w, r)
	if !ok {
		return
	}
	raw, ok := requiredQuery(w, r, "path")
	if !ok {
		return
	}
	content, version, err := a.app.GetFileContent(r.Context(), id, raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p, _ := domain.ParsePath(raw)
	setETag(w, version)
	serde.WriteJSON(w, http.StatusOK, fileContentDTO{Path: p.String(), Content: content})
}
