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
	"errors"
	"net/http"

	"remixfs/core/workspace/domain"
	"remixfs/modules/middleware/problem"
)

// ProblemFromDomainError maps a workspace error onto an RFC 7807 problem.
func ProblemFromDomainError(err error) *problem.Problem {
	switch {
	case errors.Is(err, domain.ErrInvalidPath):
		return problem.UnprocessableEntity(err.Error(), problem.WithCode("invalid_path"))
	case errors.Is(err, domain.ErrInvalidName):
		return problem.UnprocessableEntity(err.Error(), problem.WithCode("invalid_name"))
	case errors.Is(err, domain.ErrInvalidType):
		return problem.UnprocessableEntity(err.Error(), problem.WithCode("invalid_type"))
	case errors.Is(err, domain.ErrInvalidData):
		return problem.UnprocessableEntity(err.Error(), problem.WithCode("invalid_data"))
	case errors.Is(err, domain.ErrInvalidContent):
		return problem.UnprocessableEntity(err.Error(), problem.WithCode("invalid_content"))
	case errors.Is(err, domain.ErrFileTooLarge):
		return problem.ContentTooLarge(err.Error(), problem.WithCode("file_too_large"))

	case errors.Is(err, errBadHandle), errors.Is(err, domain.ErrWorkspaceNotFound):
		return problem.NotFound(domain.ErrWorkspaceNotFound.Error(), problem.WithCode("workspace_not_found"))
	case errors.Is(err, domain.ErrParentNotFound):
		return problem.NotFound(err.Error(), problem.WithCode("parent_not_found"))
	case errors.Is(err, domain.ErrNotFound):
		return problem.NotFound(err.Error(), problem.WithCode("not_found"))

	case errors.Is(err, domain.ErrAlreadyExists):
		return problem.Conflict(err.Error(), problem.WithCode("already_exists"))
	case errors.Is(err, domain.ErrNotAFile):
		return problem.Conflict(err.Error(), problem.WithCode("not_a_file"))
	case errors.Is(err, domain.ErrNotAFolder):
		return problem.Conflict(err.Error(), problem.WithCode("not_a_folder"))
	case errors.Is(err, domain.ErrNotOpen):
		return problem.Conflict(err.Error(), problem.WithCode("not_open"))

	case errors.Is(err, domain.ErrPrecondition):
		return problem.PreconditionFailed(err.Error(), problem.WithCode("version_mismatch"))
	case errors.Is(err, domain.ErrBusy):
		return problem.ServiceUnavailable(err.Error(), problem.WithCode("busy"))
	}
	return problem.Internal("server error")
}

func writeDomainError(w http.ResponseWriter, err error) {
	p := ProblemFromDomainError(err)
	if p.Status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	problem.Write(w, p)
}
