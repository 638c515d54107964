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
	"remixfs/modules/hmac"
)

// WorkspaceAPI translates HTTP requests into workspace operations.
type WorkspaceAPI struct {
	app     *domain.Application
	handles handleCodec
}

func NewWorkspaceAPI(app *domain.Application, signer *hmac.HMACSigner) *WorkspaceAPI {
	return &WorkspaceAPI{app: app, handles: handleCodec{signer: signer}}
}

// Mount registers every workspace route on mux. Route middlewares run after
// the mux has matched, so r.Pattern and r.PathValue are available to them.
func (a *WorkspaceAPI) Mount(mux *http.ServeMux, routeMiddlewares ...func(http.Handler) http.Handler) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /healthz", a.Healthz},
		{"POST /v1/workspaces", a.CreateWorkspace},
		{"GET /v1/workspaces/{ws}", a.GetWorkspace},
		{"POST /v1/workspaces/{ws}/reset", a.ResetWorkspace},
		{"GET /v1/workspaces/{ws}/items", a.StatItem},
		{"POST /v1/workspaces/{ws}/items", a.CreateItem},
		{"PATCH /v1/workspaces/{ws}/items", a.ModifyItem},
		{"DELETE /v1/workspaces/{ws}/items", a.DeleteItem},
		{"GET /v1/workspaces/{ws}/files/content", a.GetFileContent},
		{"GET /v1/workspaces/{ws}/tabs", a.ListTabs},
		{"POST /v1/workspaces/{ws}/tabs", a.OpenFile},
		{"DELETE /v1/workspaces/{ws}/tabs", a.CloseFile},
		{"PUT /v1/workspaces/{ws}/tabs/current", a.SetCurrentFile},
	}

	for _, rt := range routes {
		h := http.Handler(rt.handler)
		for i := len(routeMiddlewares) - 1; i >= 0; i-- {
			h = routeMiddlewares[i](h)
		}
		mux.Handle(rt.pattern, h)
	}
}
