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
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"remixfs/modules/middleware"
	"remixfs/modules/middleware/problem"
)

// RecoverHTTPMiddleware returns a panic recovery middleware for the workspace API.
func RecoverHTTPMiddleware() func(http.Handler) http.Handler {
	return middleware.Recovery(func(w http.ResponseWriter, r *http.Request, recovered any) {
		problem.Write(w, problem.Internal("server error"))
	})
}

// ValidationMiddleware checks requests against the workspace OpenAPI document.
func ValidationMiddleware(specFS fs.FS, specPath string) func(http.Handler) http.Handler {
	return middleware.OpenAPIValidation(
		specFS,
		specPath,
		func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int) {
			p := problem.New(
				problem.WithTitle(http.StatusText(statusCode)),
				problem.WithStatus(statusCode),
				problem.WithDetail("validation failed"),
			)
			for _, ve := range middleware.ExtractValidationErrors(err) {
				problem.WithInvalidParam(ve.Field, ve.Reason)(p)
			}
			problem.Write(w, p)
		},
		func(w http.ResponseWriter, r *http.Request, err error) {
			slog.ErrorContext(r.Context(), "openapi document failed to load", slog.Any("error", err))
			problem.Write(w, problem.Internal("server error"))
		},
	)
}
