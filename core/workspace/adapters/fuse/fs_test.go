package fuse

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"remixfs/core/workspace/adapters/locking"
	"remixfs/core/workspace/adapters/persistence"
	"remixfs/core/workspace/domain"
	"remixfs/modules/db/memory"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

func setupTestFS(t *testing.T) (*FS, *domain.Application) {
	t.Helper()
	store := persistence.NewKVWorkspaceStore(memory.NewKV("fuse-test"))
	app := domain.NewApp(store, locking.NewLocal(time.Second))
	ws, err := app.CreateWorkspace(context.Background())
	if err != nil {
		t.Fatalf("Failed to create workspace: %v", err)
	}
	return NewFS(app, ws.ID), app
}

func rootDir(t *testing.T, fsys *FS) *Dir {
	t.Helper()
	n, err := fsys.Root()
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	return n.(*Dir)
}

func lookupDir(t *testing.T, d *Dir, name string) *Dir {
	t.Helper()
	n, err := d.Lookup(context.Background(), name)
	if err != nil {
		t.Fatalf("Lookup(%q) error: %v", name, err)
	}
	child, ok := n.(*Dir)
	if !ok {
		t.Fatalf("Lookup(%q) = %T, want *Dir", name, n)
	}
	return child
}

func readAll(t *testing.T, f *File) string {
	t.Helper()
	resp := &fuse.ReadResponse{}
	if err := f.Read(context.Background(), &fuse.ReadRequest{Size: 1 << 20}, resp); err != nil {
		t.Fatalf("Read error: %v", err)
	}
	return string(resp.Data)
}

func TestDirOperations(t *testing.T) {
	fsys, _ := setupTestFS(t)
	ctx := context.Background()
	root := rootDir(t, fsys)

	var attr fuse.Attr
	if err := root.Attr(ctx, &attr); err != nil {
		t.Fatalf("Attr error: %v", err)
	}
	if !attr.Mode.IsDir() {
		t.Errorf("root mode = %v, want directory", attr.Mode)
	}

	dirents, err := root.ReadDirAll(ctx)
	if err != nil {
		t.Fatalf("ReadDirAll error: %v", err)
	}
	want := []fuse.Dirent{
		{Name: "README.txt", Type: fuse.DT_File},
		{Name: "contracts", Type: fuse.DT_Dir},
		{Name: "scripts", Type: fuse.DT_Dir},
		{Name: "tests", Type: fuse.DT_Dir},
	}
	if fmt.Sprint(dirents) != fmt.Sprint(want) {
		t.Errorf("ReadDirAll = %v, want %v", dirents, want)
	}

	if _, err := root.Lookup(ctx, "missing.sol"); !errors.Is(err, syscall.ENOENT) {
		t.Errorf("Lookup(missing) error = %v, want ENOENT", err)
	}

	n, err := root.Mkdir(ctx, &fuse.MkdirRequest{Name: "lib"})
	if err != nil {
		t.Fatalf("Mkdir error: %v", err)
	}
	if n.(*Dir).path.String() != "/lib" {
		t.Errorf("Mkdir path = %s, want /lib", n.(*Dir).path)
	}
	if _, err := root.Mkdir(ctx, &fuse.MkdirRequest{Name: "lib"}); !errors.Is(err, syscall.EEXIST) {
		t.Errorf("second Mkdir error = %v, want EEXIST", err)
	}
}

func TestFileReadWrite(t *testing.T) {
	fsys, _ := setupTestFS(t)
	ctx := context.Background()
	scripts := lookupDir(t, rootDir(t, fsys), "scripts")

	n, h, err := scripts.Create(ctx, &fuse.CreateRequest{Name: "deploy.js"}, &fuse.CreateResponse{})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f := h.(*File)
	if n != fusefs.Node(f) {
		t.Fatalf("Create returned different node and handle")
	}

	writes := []struct {
		offset int64
		data   string
		want   string
	}{
		{0, "hello world", "hello world"},
		{6, "there", "hello there"},
		{11, "!", "hello there!"},
		{14, "x", "hello there!\x00\x00x"},
	}
	for _, w := range writes {
		resp := &fuse.WriteResponse{}
		if err := f.Write(ctx, &fuse.WriteRequest{Offset: w.offset, Data: []byte(w.data)}, resp); err != nil {
			t.Fatalf("Write(%d, %q) error: %v", w.offset, w.data, err)
		}
		if resp.Size != len(w.data) {
			t.Errorf("Write size = %d, want %d", resp.Size, len(w.data))
		}
		if got := readAll(t, f); got != w.want {
			t.Errorf("after Write(%d, %q) content = %q, want %q", w.offset, w.data, got, w.want)
		}
	}

	resp := &fuse.ReadResponse{}
	if err := f.Read(ctx, &fuse.ReadRequest{Offset: 6, Size: 5}, resp); err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(resp.Data) != "there" {
		t.Errorf("partial Read = %q, want %q", resp.Data, "there")
	}

	setResp := &fuse.SetattrResponse{}
	if err := f.Setattr(ctx, &fuse.SetattrRequest{Valid: fuse.SetattrSize, Size: 5}, setResp); err != nil {
		t.Fatalf("Setattr error: %v", err)
	}
	if setResp.Attr.Size != 5 {
		t.Errorf("size after truncate = %d, want 5", setResp.Attr.Size)
	}
	if got := readAll(t, f); got != "hello" {
		t.Errorf("content after truncate = %q, want %q", got, "hello")
	}
}

func TestFileWriteRejectsBinary(t *testing.T) {
	fsys, _ := setupTestFS(t)
	ctx := context.Background()
	root := rootDir(t, fsys)

	_, h, err := root.Create(ctx, &fuse.CreateRequest{Name: "bin.dat"}, &fuse.CreateResponse{})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f := h.(*File)
	if err := f.Write(ctx, &fuse.WriteRequest{Data: []byte("text")}, &fuse.WriteResponse{}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	resp := &fuse.WriteResponse{}
	err = f.Write(ctx, &fuse.WriteRequest{Data: []byte{0xff, 0xfe, 0x61, 0x80}}, resp)
	if !errors.Is(err, syscall.EILSEQ) {
		t.Fatalf("binary Write error = %v, want EILSEQ", err)
	}
	if resp.Size != 0 {
		t.Errorf("binary Write size = %d, want 0", resp.Size)
	}
	if got := readAll(t, f); got != "text" {
		t.Errorf("content after rejected write = %q, want %q", got, "text")
	}
}

func TestFileSizeLimit(t *testing.T) {
	fsys, _ := setupTestFS(t)
	ctx := context.Background()
	readme, err := rootDir(t, fsys).Lookup(ctx, "README.txt")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	f := readme.(*File)
	before := readAll(t, f)

	err = f.Setattr(ctx, &fuse.SetattrRequest{Valid: fuse.SetattrSize, Size: 1 << 62}, &fuse.SetattrResponse{})
	if !errors.Is(err, syscall.EFBIG) {
		t.Errorf("huge truncate error = %v, want EFBIG", err)
	}
	err = f.Write(ctx, &fuse.WriteRequest{Offset: 1 << 40, Data: []byte("x")}, &fuse.WriteResponse{})
	if !errors.Is(err, syscall.EFBIG) {
		t.Errorf("far Write error = %v, want EFBIG", err)
	}
	limit := int64(fsys.app.MaxFileBytes())
	err = f.Write(ctx, &fuse.WriteRequest{Offset: limit, Data: []byte("x")}, &fuse.WriteResponse{})
	if !errors.Is(err, syscall.EFBIG) {
		t.Errorf("Write past the limit error = %v, want EFBIG", err)
	}
	if got := readAll(t, f); got != before {
		t.Errorf("content changed by rejected writes: %q", got)
	}
}

func TestDirRemove(t *testing.T) {
	fsys, _ := setupTestFS(t)
	ctx := context.Background()
	root := rootDir(t, fsys)

	tests := []struct {
		name string
		req  fuse.RemoveRequest
		want error
	}{
		{"non-empty folder", fuse.RemoveRequest{Name: "contracts", Dir: true}, syscall.ENOTEMPTY},
		{"rmdir on a file", fuse.RemoveRequest{Name: "README.txt", Dir: true}, syscall.ENOTDIR},
		{"unlink on a folder", fuse.RemoveRequest{Name: "scripts"}, syscall.EISDIR},
		{"missing", fuse.RemoveRequest{Name: "nope"}, syscall.ENOENT},
		{"empty folder", fuse.RemoveRequest{Name: "tests", Dir: true}, nil},
		{"file", fuse.RemoveRequest{Name: "README.txt"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := root.Remove(ctx, &tt.req)
			if !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("Remove error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := root.Lookup(ctx, "tests"); !errors.Is(err, syscall.ENOENT) {
		t.Errorf("removed folder still found: %v", err)
	}
}

func TestDirRename(t *testing.T) {
	fsys, app := setupTestFS(t)
	ctx := context.Background()
	root := rootDir(t, fsys)
	contracts := lookupDir(t, root, "contracts")
	scripts := lookupDir(t, root, "scripts")

	if _, _, err := app.OpenFile(ctx, domain.Ref{ID: fsys.id}, "/contracts/Storage.sol"); err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}

	err := contracts.Rename(ctx, &fuse.RenameRequest{OldName: "Storage.sol", NewName: "Store.sol"}, contracts)
	if err != nil {
		t.Fatalf("Rename error: %v", err)
	}
	ws, err := app.GetWorkspace(ctx, fsys.id)
	if err != nil {
		t.Fatalf("GetWorkspace error: %v", err)
	}
	if ws.CurrentFile != "/contracts/Store.sol" {
		t.Errorf("current file = %q, want /contracts/Store.sol", ws.CurrentFile)
	}

	err = contracts.Rename(ctx, &fuse.RenameRequest{OldName: "Store.sol", NewName: "Store.sol"}, scripts)
	if !errors.Is(err, syscall.EXDEV) {
		t.Errorf("cross-folder Rename error = %v, want EXDEV", err)
	}
}

func TestErrno(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{nil, nil},
		{domain.ErrNotFound, syscall.ENOENT},
		{domain.ErrParentNotFound, syscall.ENOENT},
		{domain.ErrAlreadyExists, syscall.EEXIST},
		{domain.ErrNotAFile, syscall.EISDIR},
		{domain.ErrNotAFolder, syscall.ENOTDIR},
		{domain.ErrInvalidName, syscall.EINVAL},
		{domain.ErrInvalidContent, syscall.EILSEQ},
		{domain.ErrFileTooLarge, syscall.EFBIG},
		{domain.ErrBusy, syscall.EAGAIN},
		{fmt.Errorf("wrapped: %w", syscall.ENOTEMPTY), syscall.ENOTEMPTY},
		{domain.ErrUnhandled, syscall.EIO},
	}
	for _, tt := range tests {
		if got := errno(tt.err); got != tt.want {
			t.Errorf("errno(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
