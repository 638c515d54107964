package domain

import "errors"

var (
	ErrInvalidData       = errors.New("invalid data provided for workspace operations")
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidType       = errors.New("invalid node type")
	ErrNotFound          = errors.New("no such file or folder")
	ErrParentNotFound    = errors.New("parent folder does not exist")
	ErrAlreadyExists     = errors.New("an item with this name already exists")
	ErrNotAFile          = errors.New("not a file")
	ErrNotAFolder        = errors.New("not a folder")
	ErrNotOpen           = errors.New("file is not open")
	ErrInvalidContent    = errors.New("file content is not valid UTF-8")
	ErrFileTooLarge      = errors.New("file exceeds the size limit")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrPrecondition      = errors.New("workspace version mismatch")
	ErrBusy              = errors.New("workspace is locked by another writer")
	ErrUnhandled         = errors.New("unexpected error")
)

// domainErrors are returned to callers as-is; anything else is logged and
// collapsed into ErrUnhandled.
var domainErrors = []error{
	ErrInvalidData,
	ErrInvalidPath,
	ErrInvalidName,
	ErrInvalidType,
	ErrNotFound,
	ErrParentNotFound,
	ErrAlreadyExists,
	ErrNotAFile,
	ErrNotAFolder,
	ErrNotOpen,
	ErrInvalidContent,
	ErrFileTooLarge,
	ErrWorkspaceNotFound,
	ErrPrecondition,
	ErrBusy,
}

func isDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
