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
	"os"
	"syscall"

	"remixfs/core/workspace/domain"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

// Dir is a folder of the mounted workspace, the root included.
type Dir struct {
	fs   *FS
	path domain.Path
}

var (
	_ fusefs.Node               = (*Dir)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)
	_ fusefs.NodeMkdirer        = (*Dir)(nil)
	_ fusefs.NodeCreater        = (*Dir)(nil)
	_ fusefs.NodeRemover        = (*Dir)(nil)
	_ fusefs.NodeRenamer        = (*Dir)(nil)
)

func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o755
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	a.Valid = attrValid
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child := d.path.Join(name)
	n, _, _, err := d.fs.app.Stat(ctx, d.fs.id, child.String())
	if err != nil {
		return nil, errno(err)
	}
	if n.Type == domain.NodeFolder {
		return &Dir{fs: d.fs, path: child}, nil
	}
	return &File{fs: d.fs, path: child}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	_, entries, _, err := d.fs.app.Stat(ctx, d.fs.id, d.path.String())
	if err != nil {
		return nil, errno(err)
	}
	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		typ := fuse.DT_File
		if e.Type == domain.NodeFolder {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{Name: e.Name, Type: typ})
	}
	return dirents, nil
}

func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	child := d.path.Join(req.Name)
	if _, err := d.fs.app.CreateItem(ctx, d.fs.ref(0), child.String(), domain.NodeFolder, ""); err != nil {
		return nil, errno(err)
	}
	slog.DebugContext(ctx, "fuse mkdir", slog.String("path", child.String()))
	return &Dir{fs: d.fs, path: child}, nil
}

func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	child := d.path.Join(req.Name)
	if _, err := d.fs.app.CreateItem(ctx, d.fs.ref(0), child.String(), domain.NodeFile, ""); err != nil {
		return nil, nil, errno(err)
	}
	slog.DebugContext(ctx, "fuse create", slog.String("path", child.String()))
	resp.Flags |= fuse.OpenDirectIO
	f := &File{fs: d.fs, path: child}
	return f, f, nil
}

// Remove deletes a file, or an empty folder when req.Dir is set.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	child := d.path.Join(req.Name).String()
	err := d.fs.conditional(ctx, func(ctx context.Context) error {
		n, entries, version, err := d.fs.app.Stat(ctx, d.fs.id, child)
		if err != nil {
			return err
		}
		switch {
		case req.Dir && n.Type != domain.NodeFolder:
			return syscall.ENOTDIR
		case req.Dir && len(entries) > 0:
			return syscall.ENOTEMPTY
		case !req.Dir && n.Type == domain.NodeFolder:
			return syscall.EISDIR
		}
		_, err = d.fs.app.DeleteItem(ctx, d.fs.ref(version), child)
		return err
	})
	if err != nil {
		return errno(err)
	}
	slog.DebugContext(ctx, "fuse remove", slog.String("path", child), slog.Bool("dir", req.Dir))
	return nil
}

// Rename renames within one folder. Moving between folders is refused with
// EXDEV so callers fall back to copy and delete.
func (d *Dir) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	target, ok := newDir.(*Dir)
	if !ok {
		return syscall.EINVAL
	}
	if !target.path.Equal(d.path) {
		return syscall.EXDEV
	}
	from := d.path.Join(req.OldName).String()
	if _, err := d.fs.app.RenameItem(ctx, d.fs.ref(0), from, req.NewName); err != nil {
		return errno(err)
	}
	slog.DebugContext(ctx, "fuse rename", slog.String("path", from), slog.String("name", req.NewName))
	return nil
}
