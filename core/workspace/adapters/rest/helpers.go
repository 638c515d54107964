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
	"strconv"

	"remixfs/core/workspace/domain"
	"remixfs/modules/api/serde"
	"remixfs/modules/etag"
	"remixfs/modules/middleware/problem"

	"github.com/gofrs/uuid/v5"
)

// versionTag adapts a bare version number to etag.ETaggable.
type versionTag int64

func (v versionTag) V() string { return strconv.FormatInt(int64(v), 10) }

// workspaceID resolves the {ws} handle. On failure the response is written.
func (a *WorkspaceAPI) workspaceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := a.handles.decode(r.PathValue("ws"))
	if err != nil {
		writeDomainError(w, err)
		return uuid.Nil, false
	}
	return id, true
}

// ref builds a mutation target from {ws} and If-Match. On failure the
// response is written.
func (a *WorkspaceAPI) ref(w http.ResponseWriter, r *http.Request) (domain.Ref, bool) {
	id, ok := a.workspaceID(w, r)
	if !ok {
		return domain.Ref{}, false
	}
	version, err := etag.ParseVersion(r.Header.Get("If-Match"))
	if err != nil {
		problem.Write(w, problem.BadRequest("invalid etag format",
			problem.WithInvalidParam("If-Match", "invalid etag format")))
		return domain.Ref{}, false
	}
	return domain.Ref{ID: id, IfVersion: version}, true
}

func setETag(w http.ResponseWriter, version int64) {
	w.Header().Set("ETag", etag.Header(versionTag(version)))
}

func (a *WorkspaceAPI) writeWorkspace(w http.ResponseWriter, status int, ws *domain.Workspace) {
	handle, err := a.handles.encode(ws.ID)
	if err != nil {
		problem.Write(w, problem.Internal("server error"))
		return
	}
	setETag(w, ws.Version)
	serde.WriteJSON(w, status, envelopeDTO{Handle: handle, Workspace: mapWorkspace(ws)})
}

// decodeBody parses the JSON body into v. On failure the response is written.
func decodeBody[T any](w http.ResponseWriter, r *http.Request, v *T) bool {
	if err := serde.ParseJsonBody(r.Body, v); err != nil {
		problem.Write(w, problem.BadRequest("malformed request body",
			problem.WithInvalidParam("body", "malformed json")))
		return false
	}
	return true
}

func requiredQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		problem.Write(w, problem.BadRequest("missing query parameter",
			problem.WithInvalidParam(name, "is required")))
		return "", false
	}
	return v, true
}
