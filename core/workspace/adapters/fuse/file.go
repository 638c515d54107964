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

package fuse

import (
	"context"
	"log/slog"
	"strings"
	"syscall"

	"remixfs/core/workspace/domain"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

// File is a file of the mounted workspace. It serves as its own handle since
// content always comes from the stored workspace.
type File struct {
	fs   *FS
	path domain.Path
}

var (
	_ fusefs.Node          = (*File)(nil)
	_ fusefs.NodeOpener    = (*File)(nil)
	_ fusefs.NodeSetattrer = (*File)(nil)
	_ fusefs.NodeFsyncer   = (*File)(nil)
	_ fusefs.HandleReader  = (*File)(nil)
	_ fusefs.HandleWriter  = (*File)(nil)
	_ fusefs.HandleFlusher = (*File)(nil)
)

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	content, _, err := f.fs.app.GetFileContent(ctx, f.fs.id, f.path.String())
	if err != nil {
		return errno(err)
	}
	a.Mode = 0o644
	a.Size = uint64(len(content))
	a.Blocks = (a.Size + 511) / 512
	a.BlockSize = 4096
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.Valid = attrValid
	return nil
}

func (f *File) Open(_ context.Context, _ *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	// content may change behind the kernel's back through the HTTP API
	resp.Flags |= fuse.OpenDirectIO
	return f, nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	content, _, err := f.fs.app.GetFileContent(ctx, f.fs.id, f.path.String())
	if err != nil {
		return errno(err)
	}
	if req.Offset >= int64(len(content)) {
		resp.Data = nil
		return nil
	}
	end := min(req.Offset+int64(req.Size), int64(len(content)))
	resp.Data = []byte(content[req.Offset:end])
	return nil
}

// Write splices req.Data into the content at req.Offset. A gap past the end
// is filled with zero bytes.
func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	if req.Offset < 0 {
		return syscall.EINVAL
	}
	if err := f.fits(uint64(req.Offset) + uint64(len(req.Data))); err != nil {
		return err
	}
	err := f.rewrite(ctx, func(content string) string {
		return splice(content, req.Offset, req.Data)
	})
	if err != nil {
		return errno(err)
	}
	resp.Size = len(req.Data)
	slog.DebugContext(ctx, "fuse write",
		slog.String("path", f.path.String()),
		slog.Int64("offset", req.Offset),
		slog.Int("size", len(req.Data)))
	return nil
}

// Setattr supports truncation. Other attributes are fixed and ignored.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Size() {
		if err := f.fits(req.Size); err != nil {
			return err
		}
		err := f.rewrite(ctx, func(content string) string {
			return truncate(content, req.Size)
		})
		if err != nil {
			return errno(err)
		}
	}
	return f.Attr(ctx, &resp.Attr)
}

func (f *File) Fsync(context.Context, *fuse.FsyncRequest) error {
	return nil
}

func (f *File) Flush(context.Context, *fuse.FlushRequest) error {
	return nil
}

// fits refuses sizes over the application's file limit before any content is
// built.
func (f *File) fits(size uint64) error {
	if size > uint64(f.fs.app.MaxFileBytes()) {
		return syscall.EFBIG
	}
	return nil
}

// rewrite replaces the content with edit(content) as one conditional update,
// retrying when another writer got in between.
func (f *File) rewrite(ctx context.Context, edit func(content string) string) error {
	return f.fs.conditional(ctx, func(ctx context.Context) error {
		content, version, err := f.fs.app.GetFileContent(ctx, f.fs.id, f.path.String())
		if err != nil {
			return err
		}
		next := edit(content)
		if next == content {
			return nil
		}
		_, err = f.fs.app.UpdateFileContent(ctx, f.fs.ref(version), f.path.String(), next)
		return err
	})
}

func splice(content string, offset int64, data []byte) string {
	var b strings.Builder
	end := offset + int64(len(data))
	b.Grow(int(max(end, int64(len(content)))))
	if offset <= int64(len(content)) {
		b.WriteString(content[:offset])
	} else {
		b.WriteString(content)
		b.WriteString(strings.Repeat("\x00", int(offset)-len(content)))
	}
	b.Write(data)
	if end < int64(len(content)) {
		b.WriteString(content[end:])
	}
	return b.String()
}

func truncate(content string, size uint64) string {
	if size <= uint64(len(content)) {
		return content[:size]
	}
	return content + strings.Repeat("\x00", int(size)-len(content))
}
