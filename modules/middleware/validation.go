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

package middleware

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

type (
	// ValidationErrorHandler writes the response for a request that failed validation.
	ValidationErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)

	// SpecLoadErrorHandler writes the response when the OpenAPI document cannot be loaded.
	SpecLoadErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

	// ValidationError is one offending field and why it was rejected.
	ValidationError struct {
		Field  string
		Reason string
	}

	specCacheEntry struct {
		doc *openapi3.T
		err error
	}
)

var (
	specCacheMu sync.Mutex
	specCache   = make(map[string]*specCacheEntry)
)

// LoadSpec parses specPath from fsys once per path.
func LoadSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	specCacheMu.Lock()
	defer specCacheMu.Unlock()

	if entry, ok := specCache[specPath]; ok {
		return entry.doc, entry.err
	}

	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		specCache[specPath] = &specCacheEntry{err: err}
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err == nil {
		err = doc.Validate(loader.Context)
	}
	specCache[specPath] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

// OpenAPIValidation validates requests against the OpenAPI document at specPath.
// Body schema violations are reported as 422, everything else keeps the status
// picked by the validator (400 for bad params, 404 for unknown routes).
func OpenAPIValidation(
	specFS fs.FS,
	specPath string,
	errorHandler ValidationErrorHandler,
	loadErrorHandler SpecLoadErrorHandler,
) func(http.Handler) http.Handler {
	spec, err := LoadSpec(specFS, specPath)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				loadErrorHandler(w, r, err)
			})
		}
	}

	opts := &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			if InferBodyValidationStatus(err) == http.StatusUnprocessableEntity {
				status = http.StatusUnprocessableEntity
			}
			errorHandler(ctx, err, w, r, status)
		},
	}

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}

// ExtractValidationErrors flattens a validator error into field/reason pairs.
func ExtractValidationErrors(err error) []ValidationError {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []ValidationError
		for _, item := range multi {
			out = append(out, ExtractValidationErrors(item)...)
		}
		return out
	}
	return []ValidationError{extractSingleError(err)}
}

func extractSingleError(err error) ValidationError {
	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		var se *openapi3.SchemaError
		if errors.As(re.Err, &se) {
			if re.Parameter != nil {
				return ValidationError{Field: re.Parameter.Name, Reason: se.Reason}
			}
			return ValidationError{Field: fieldFromPointer(se.JSONPointer()), Reason: se.Reason}
		}
		// do not echo input back
		if re.Parameter != nil {
			return ValidationError{Field: re.Parameter.Name, Reason: SafeReason(re.Reason)}
		}
		return ValidationError{Field: "body", Reason: SafeReason(re.Reason)}
	}

	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return ValidationError{Field: fieldFromPointer(se.JSONPointer()), Reason: se.Reason}
	}

	var sre *openapi3filter.SecurityRequirementsError
	if errors.As(err, &sre) {
		return ValidationError{Field: "authorization", Reason: "missing or invalid credentials"}
	}

	return ValidationError{Field: "request", Reason: "invalid value"}
}

func fieldFromPointer(ptr []string) string {
	if len(ptr) == 0 || ptr[0] == "" || ptr[0] == "0" {
		return "body"
	}
	return ptr[0]
}

// InferBodyValidationStatus returns 422 for well-formed but schema-invalid payloads.
func InferBodyValidationStatus(err error) int {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			if InferBodyValidationStatus(item) == http.StatusUnprocessableEntity {
				return http.StatusUnprocessableEntity
			}
		}
		return 0
	}
	var re *openapi3filter.RequestError
	if errors.As(err, &re) {
		var se *openapi3.SchemaError
		if re.RequestBody != nil || errors.As(re.Err, &se) {
			return http.StatusUnprocessableEntity
		}
		return 0
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return http.StatusUnprocessableEntity
	}
	return 0
}

// SafeReason reduces verbose reasons so input is not reflected to the client.
func SafeReason(reason string) string {
	if reason == "" {
		return "invalid value"
	}
	lower := strings.ToLower(reason)
	if strings.Contains(lower, "doesn't match schema") {
		return "doesn't match schema"
	}
	if strings.Contains(lower, "must be one of") {
		return reason
	}
	return "invalid value"
}
