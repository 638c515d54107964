package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"remixfs/core/workspace/domain"
	"remixfs/modules/db/file"
	"remixfs/modules/db/memory"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/afero"
)

func testWorkspace(t *testing.T) *domain.Workspace {
	t.Helper()
	id := uuid.Must(uuid.NewV7())
	ws := domain.NewWorkspace(id, domain.DefaultFiles(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if _, err := ws.OpenFile(domain.MustParsePath("/contracts/Storage.sol"), uuid.NewV7); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return ws
}

func TestKVWorkspaceStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKVWorkspaceStore(memory.NewKV("remix-clone-filesystem"))
	ws := testWorkspace(t)

	if err := store.Save(ctx, ws); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != ws.Version || got.CurrentFile != "/contracts/Storage.sol" {
		t.Errorf("got version=%d current=%q", got.Version, got.CurrentFile)
	}
	want, _ := ws.FileContent(domain.MustParsePath("/contracts/Storage.sol"))
	content, err := got.FileContent(domain.MustParsePath("/contracts/Storage.sol"))
	if err != nil || content != want {
		t.Errorf("content mismatch: err=%v", err)
	}
	if len(got.OpenFiles) != 1 || got.OpenFiles[0].ID != ws.OpenFiles[0].ID {
		t.Errorf("tabs = %+v", got.OpenFiles)
	}
}

func TestKVWorkspaceStore_Missing(t *testing.T) {
	store := NewKVWorkspaceStore(memory.NewKV(""))
	_, err := store.Load(context.Background(), uuid.Must(uuid.NewV7()))
	if !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Fatalf("err = %v, want ErrWorkspaceNotFound", err)
	}
}

func TestKVWorkspaceStore_CorruptBlobIsAnError(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV("")
	store := NewKVWorkspaceStore(kv)
	id := uuid.Must(uuid.NewV7())

	if _, err := kv.AtomicSet(ctx, workspaceKey(id), []byte(`{"files":`)); err != nil {
		t.Fatal(err)
	}
	_, err := store.Load(ctx, id)
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Fatal("a corrupt blob must not look like a missing workspace")
	}
}

func TestKVWorkspaceStore_FileBackend(t *testing.T) {
	ctx := context.Background()
	kv, err := file.NewKV(afero.NewMemMapFs(), "/state", file.WithBackups(2))
	if err != nil {
		t.Fatal(err)
	}
	store := NewKVWorkspaceStore(kv)
	ws := testWorkspace(t)

	for range 3 {
		ws.Version++
		if err := store.Save(ctx, ws); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	got, err := store.Load(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != ws.Version {
		t.Errorf("version = %d, want %d", got.Version, ws.Version)
	}
}

func TestKVWorkspaceStore_SaveRejectsNilID(t *testing.T) {
	store := NewKVWorkspaceStore(memory.NewKV(""))
	if err := store.Save(context.Background(), &domain.Workspace{}); !errors.Is(err, domain.ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
}
