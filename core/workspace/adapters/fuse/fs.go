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

// Package fuse exposes a single workspace as a mounted directory tree.
//
// Every node operation goes through domain.Application, so the mount sees the
// same locking, versioning and tab bookkeeping as the HTTP API.
package fuse

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"syscall"
	"time"

	"remixfs/core/workspace/domain"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/gofrs/uuid/v5"
)

const (
	// read-modify-write operations retry this many times on a version race
	maxAttempts = 5
	attrValid   = time.Second
)

// FS is the root of a mounted workspace.
type FS struct {
	app *domain.Application
	id  uuid.UUID
	uid uint32
	gid uint32
}

var _ fusefs.FS = (*FS)(nil)

func NewFS(app *domain.Application, id uuid.UUID) *FS {
	return &FS{
		app: app,
		id:  id,
		uid: uint32(os.Getuid()),
		gid: uint32(os.Getgid()),
	}
}

func (fsys *FS) Root() (fusefs.Node, error) {
	return &Dir{fs: fsys, path: domain.RootPath}, nil
}

func (fsys *FS) ref(version int64) domain.Ref {
	return domain.Ref{ID: fsys.id, IfVersion: version}
}

// conditional runs fn until it stops failing with a version mismatch.
func (fsys *FS) conditional(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for range maxAttempts {
		err = fn(ctx)
		if !errors.Is(err, domain.ErrPrecondition) {
			return err
		}
	}
	return err
}

// Mount serves fsys at dir until ctx is cancelled, then unmounts it.
func Mount(ctx context.Context, dir string, fsys *FS) error {
	c, err := fuse.Mount(dir,
		fuse.FSName("remixfs"),
		fuse.Subtype("remixfs"),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	served := make(chan error, 1)
	go func() {
		served <- fusefs.Serve(c, fsys)
	}()
	slog.InfoContext(ctx, "workspace mounted",
		slog.String("mount.dir", dir),
		slog.String("workspace.id", fsys.id.String()))

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	if err := fuse.Unmount(dir); err != nil {
		slog.ErrorContext(ctx, "unmount failed", slog.String("mount.dir", dir), slog.Any("error", err))
		return err
	}
	slog.InfoContext(ctx, "workspace unmounted", slog.String("mount.dir", dir))
	return <-served
}

// errno translates application errors into the values the kernel expects.
func errno(err error) error {
	var e syscall.Errno
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return e
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrParentNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound):
		return syscall.ENOENT
	case errors.Is(err, domain.ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, domain.ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, domain.ErrNotAFolder):
		return syscall.ENOTDIR
	case errors.Is(err, domain.ErrInvalidContent):
		return syscall.EILSEQ
	case errors.Is(err, domain.ErrFileTooLarge):
		return syscall.EFBIG
	case errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrInvalidData):
		return syscall.EINVAL
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrPrecondition):
		return syscall.EAGAIN
	case errors.Is(err, context.Canceled):
		return syscall.EINTR
	default:
		return syscall.EIO
	}
}
