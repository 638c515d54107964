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
package services

import (
	"io/fs"
	"net/http"

	workspace_http "remixfs/core/workspace/adapters/rest"
	"remixfs/modules/server"
)

var _ server.RegistrableService = (*WorkspaceAPIService)(nil)

// WorkspaceAPIService encapsulates the registration logic for the workspace API.
type WorkspaceAPIService struct {
	specPath string
	specFS   fs.FS
	api      *workspace_http.WorkspaceAPI

	// routeMiddlewares wrap each route after the mux has matched it.
	routeMiddlewares []func(http.Handler) http.Handler
}

func NewWorkspaceAPIService(
	api *workspace_http.WorkspaceAPI,
	specFS fs.FS,
	specPath string,
	routeMiddlewares ...func(http.Handler) http.Handler,
) *WorkspaceAPIService {
	return &WorkspaceAPIService{
		specFS:           specFS,
		specPath:         specPath,
		api:              api,
		routeMiddlewares: routeMiddlewares,
	}
}

// Register mounts the workspace API routes.
func (s *WorkspaceAPIService) Register(mux *http.ServeMux) {
	s.api.Mount(mux, s.routeMiddlewares...)
}

// Middlewares returns global middlewares required by the workspace API:
// panic recovery and OpenAPI request validation.
func (s *WorkspaceAPIService) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		workspace_http.RecoverHTTPMiddleware(),
		workspace_http.ValidationMiddleware(s.specFS, s.specPath),
	}
}
