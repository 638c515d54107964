package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"remixfs/core/workspace/adapters/locking"
	"remixfs/core/workspace/adapters/persistence"
	"remixfs/core/workspace/domain"
	"remixfs/modules/db/memory"

	"github.com/gofrs/uuid/v5"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordOperation(_ context.Context, op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[op+"/"+outcome]++
}

func (r *countingRecorder) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(context.Context) error) error {
	return domain.ErrBusy
}

type fixture struct {
	app      *domain.Application
	kv       *memory.KV
	recorder *countingRecorder
}

func newFixture(t *testing.T, opts ...domain.Option) *fixture {
	t.Helper()
	kv := memory.NewKV("test")
	rec := &countingRecorder{}
	opts = append([]domain.Option{
		domain.WithClock(fixedClock{time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}),
		domain.WithRecorder(rec),
	}, opts...)
	app := domain.NewApp(persistence.NewKVWorkspaceStore(kv), locking.NewLocal(time.Second), opts...)
	return &fixture{app: app, kv: kv, recorder: rec}
}

func (f *fixture) create(t *testing.T) *domain.Workspace {
	t.Helper()
	ws, err := f.app.CreateWorkspace(context.Background())
	if err != nil {
		t.Fatalf("CreateWorkspace: %v", err)
	}
	return ws
}

func TestCreateAndGetWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)

	if ws.ID.Version() != uuid.V7 {
		t.Errorf("id version = %d, want 7", ws.ID.Version())
	}
	if ws.Version != 1 {
		t.Errorf("version = %d, want 1", ws.Version)
	}

	got, err := f.app.GetWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("GetWorkspace: %v", err)
	}
	content, err := got.FileContent(domain.MustParsePath("/contracts/Storage.sol"))
	if err != nil || content == "" {
		t.Errorf("seeded Storage.sol = %q, %v", content, err)
	}

	if _, err := f.app.GetWorkspace(ctx, uuid.Must(uuid.NewV7())); !errors.Is(err, domain.ErrWorkspaceNotFound) {
		t.Errorf("unknown workspace error = %v, want ErrWorkspaceNotFound", err)
	}
	if _, err := f.app.GetWorkspace(ctx, uuid.Nil); !errors.Is(err, domain.ErrInvalidData) {
		t.Errorf("nil id error = %v, want ErrInvalidData", err)
	}
}

func TestMutationsBumpVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	ws, err := f.app.CreateItem(ctx, ref, "/contracts/Token.sol", domain.NodeFile, "contract Token {}")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if ws.Version != 2 {
		t.Errorf("version = %d, want 2", ws.Version)
	}
	if !ws.UpdatedAt.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("updatedAt = %v", ws.UpdatedAt)
	}

	content, version, err := f.app.GetFileContent(ctx, ws.ID, "contracts/Token.sol")
	if err != nil || content != "contract Token {}" || version != 2 {
		t.Errorf("GetFileContent = %q, %d, %v", content, version, err)
	}
}

func TestConditionalMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)

	if _, err := f.app.CreateItem(ctx, domain.Ref{ID: ws.ID, IfVersion: 1}, "/a.sol", domain.NodeFile, ""); err != nil {
		t.Fatalf("CreateItem at current version: %v", err)
	}
	_, err := f.app.CreateItem(ctx, domain.Ref{ID: ws.ID, IfVersion: 1}, "/b.sol", domain.NodeFile, "")
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("stale CreateItem error = %v, want ErrPrecondition", err)
	}

	n, _, version, err := f.app.Stat(ctx, ws.ID, "/b.sol")
	if !errors.Is(err, domain.ErrNotFound) || n != nil || version != 0 {
		t.Errorf("stale write leaked: node=%v version=%d err=%v", n, version, err)
	}
	if got := f.recorder.get("create_item/rejected"); got != 1 {
		t.Errorf("rejected create_item = %d, want 1", got)
	}
}

func TestFailedModifyLeavesWorkspaceUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	if _, err := f.app.CreateItem(ctx, ref, "/contracts/Other.sol", domain.NodeFile, "other"); err != nil {
		t.Fatal(err)
	}

	content := "changed"
	_, err := f.app.ModifyItem(ctx, ref, "/contracts/Storage.sol", &content, "Other.sol")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("ModifyItem error = %v, want ErrAlreadyExists", err)
	}

	got, version, err := f.app.GetFileContent(ctx, ws.ID, "/contracts/Storage.sol")
	if err != nil {
		t.Fatal(err)
	}
	if got == content {
		t.Error("content was persisted although the rename failed")
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	if _, err := f.app.ModifyItem(ctx, ref, "/contracts/Storage.sol", nil, ""); !errors.Is(err, domain.ErrInvalidData) {
		t.Errorf("empty ModifyItem error = %v, want ErrInvalidData", err)
	}
}

func TestTabsFollowTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	tab, _, err := f.app.OpenFile(ctx, ref, "/contracts/Storage.sol")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, _, err := f.app.OpenFile(ctx, ref, "/README.txt"); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	ws, err = f.app.RenameItem(ctx, ref, "/contracts", "src")
	if err != nil {
		t.Fatalf("RenameItem: %v", err)
	}
	if ws.OpenFiles[0].ID != tab.ID || ws.OpenFiles[0].Path != "/src/Storage.sol" {
		t.Errorf("renamed tab = %+v", ws.OpenFiles[0])
	}

	if ws, err = f.app.SetCurrentFile(ctx, ref, "/src/Storage.sol"); err != nil {
		t.Fatalf("SetCurrentFile: %v", err)
	}
	ws, err = f.app.DeleteItem(ctx, ref, "/src")
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if len(ws.OpenFiles) != 1 || ws.CurrentFile != "/README.txt" {
		t.Errorf("after delete: tabs=%+v current=%q", ws.OpenFiles, ws.CurrentFile)
	}

	ws, err = f.app.CloseFile(ctx, ref, "/README.txt")
	if err != nil {
		t.Fatalf("CloseFile: %v", err)
	}
	if len(ws.OpenFiles) != 0 || ws.CurrentFile != "" {
		t.Errorf("after close: tabs=%+v current=%q", ws.OpenFiles, ws.CurrentFile)
	}
	if _, err := f.app.CloseFile(ctx, ref, "/README.txt"); !errors.Is(err, domain.ErrNotOpen) {
		t.Errorf("second CloseFile error = %v, want ErrNotOpen", err)
	}
}

func TestResetWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	if _, err := f.app.DeleteItem(ctx, ref, "/contracts"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.app.OpenFile(ctx, ref, "/README.txt"); err != nil {
		t.Fatal(err)
	}

	ws, err := f.app.ResetWorkspace(ctx, ref)
	if err != nil {
		t.Fatalf("ResetWorkspace: %v", err)
	}
	if _, ok := ws.Files["contracts"]; !ok {
		t.Error("reset did not restore contracts")
	}
	if len(ws.OpenFiles) != 0 || ws.CurrentFile != "" {
		t.Errorf("reset kept tabs: %+v %q", ws.OpenFiles, ws.CurrentFile)
	}
	if ws.Version != 4 {
		t.Errorf("version = %d, want 4", ws.Version)
	}
}

func TestLoadOrSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	ws, err := f.app.LoadOrSeed(ctx, id)
	if err != nil {
		t.Fatalf("LoadOrSeed: %v", err)
	}
	if ws.ID != id || ws.Version != 1 {
		t.Errorf("seeded workspace = %s v%d", ws.ID, ws.Version)
	}
	if _, err := f.app.CreateItem(ctx, domain.Ref{ID: id}, "/x.sol", domain.NodeFile, ""); err != nil {
		t.Fatal(err)
	}

	ws, err = f.app.LoadOrSeed(ctx, id)
	if err != nil {
		t.Fatalf("second LoadOrSeed: %v", err)
	}
	if ws.Version != 2 {
		t.Errorf("second LoadOrSeed reseeded: version = %d", ws.Version)
	}
}

func TestCorruptWorkspaceIsNotReseeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	if _, err := f.kv.AtomicSet(ctx, "workspace:"+id.String(), []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	if _, err := f.app.LoadOrSeed(ctx, id); !errors.Is(err, domain.ErrUnhandled) {
		t.Errorf("LoadOrSeed error = %v, want ErrUnhandled", err)
	}
	raw, err := f.kv.AtomicGet(ctx, "workspace:"+id.String())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw.([]byte)) != "{not json" {
		t.Errorf("corrupt blob was overwritten with %s", raw)
	}
	if got := f.recorder.get("load_or_seed/error"); got != 1 {
		t.Errorf("load_or_seed errors = %d, want 1", got)
	}
}

func TestCustomSeeder(t *testing.T) {
	seeder := func(context.Context) (domain.Tree, error) {
		return domain.Tree{"only.sol": {Type: domain.NodeFile, Content: "x"}}, nil
	}
	f := newFixture(t, domain.WithSeeder(seeder))
	ws := f.create(t)
	if len(ws.Files) != 1 || ws.Files["only.sol"] == nil {
		t.Errorf("files = %v", ws.Files)
	}

	failing := func(context.Context) (domain.Tree, error) { return nil, errors.New("template gone") }
	f = newFixture(t, domain.WithSeeder(failing))
	if _, err := f.app.CreateWorkspace(context.Background()); !errors.Is(err, domain.ErrUnhandled) {
		t.Errorf("CreateWorkspace error = %v, want ErrUnhandled", err)
	}
}

func TestBusyLock(t *testing.T) {
	app := domain.NewApp(persistence.NewKVWorkspaceStore(memory.NewKV("")), busyLocker{})
	_, err := app.CreateItem(context.Background(), domain.Ref{ID: uuid.Must(uuid.NewV7())}, "/a", domain.NodeFile, "")
	if !errors.Is(err, domain.ErrBusy) {
		t.Errorf("error = %v, want ErrBusy", err)
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Go(func() {
			_, err := f.app.CreateItem(ctx, domain.Ref{ID: ws.ID}, fmt.Sprintf("/scripts/s%02d.js", i), domain.NodeFile, "")
			errs <- err
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	_, entries, version, err := f.app.Stat(ctx, ws.ID, "/scripts")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != writers || version != 1+writers {
		t.Errorf("entries = %d version = %d, want %d and %d", len(entries), version, writers, 1+writers)
	}
}

func TestFileSizeLimit(t *testing.T) {
	f := newFixture(t, domain.WithMaxFileBytes(8))
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	if f.app.MaxFileBytes() != 8 {
		t.Fatalf("MaxFileBytes = %d, want 8", f.app.MaxFileBytes())
	}
	if _, err := f.app.UpdateFileContent(ctx, ref, "/README.txt", "12345678"); err != nil {
		t.Fatalf("content at the limit: %v", err)
	}
	if _, err := f.app.UpdateFileContent(ctx, ref, "/README.txt", "123456789"); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Errorf("UpdateFileContent over the limit = %v, want ErrFileTooLarge", err)
	}
	if _, err := f.app.CreateItem(ctx, ref, "/big.sol", domain.NodeFile, "123456789"); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Errorf("CreateItem over the limit = %v, want ErrFileTooLarge", err)
	}
	big := "123456789"
	if _, err := f.app.ModifyItem(ctx, ref, "/README.txt", &big, ""); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Errorf("ModifyItem over the limit = %v, want ErrFileTooLarge", err)
	}

	got, err := f.app.GetWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 {
		t.Errorf("version = %d, want 2 after one accepted write", got.Version)
	}
	if f.recorder.get("update_file_content/rejected") != 1 {
		t.Errorf("rejected updates = %d, want 1", f.recorder.get("update_file_content/rejected"))
	}
}

func TestFileContentRoundTrips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ws := f.create(t)
	ref := domain.Ref{ID: ws.ID}

	const text = "// ünïcødé ✓\x00tab\tend"
	if _, err := f.app.UpdateFileContent(ctx, ref, "/README.txt", text); err != nil {
		t.Fatal(err)
	}
	got, _, err := f.app.GetFileContent(ctx, ws.ID, "/README.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != text {
		t.Errorf("content = %q, want %q", got, text)
	}

	if _, err := f.app.UpdateFileContent(ctx, ref, "/README.txt", "\xff\xfea\x80"); !errors.Is(err, domain.ErrInvalidContent) {
		t.Errorf("binary content = %v, want ErrInvalidContent", err)
	}
	got, _, err = f.app.GetFileContent(ctx, ws.ID, "/README.txt")
	if err != nil || got != text {
		t.Errorf("content after rejected write = %q, %v", got, err)
	}
}
