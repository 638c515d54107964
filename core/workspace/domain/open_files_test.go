package domain

import (
	"errors"
	"testing"
)

func tabPaths(ws *Workspace) []string {
	out := make([]string, 0, len(ws.OpenFiles))
	for _, t := range ws.OpenFiles {
		out = append(out, t.Path)
	}
	return out
}

func TestOpenFileIsIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	ids := seqIDs()
	first := mustOpen(t, ws, ids, "/contracts/Storage.sol")
	mustOpen(t, ws, ids, "/README.txt")
	again := mustOpen(t, ws, ids, "contracts/Storage.sol")

	if first.ID != again.ID {
		t.Fatalf("reopen created a new tab: %v != %v", first.ID, again.ID)
	}
	if len(ws.OpenFiles) != 2 {
		t.Fatalf("tabs = %v", tabPaths(ws))
	}
	if ws.CurrentFile != "/contracts/Storage.sol" {
		t.Fatalf("current = %q", ws.CurrentFile)
	}
	if first.Name != "Storage.sol" {
		t.Fatalf("name = %q", first.Name)
	}
}

func TestOpenFileRejectsFoldersAndMissing(t *testing.T) {
	ws := newTestWorkspace(t)
	if _, err := ws.OpenFile(MustParsePath("/contracts"), seqIDs()); !errors.Is(err, ErrNotAFile) {
		t.Fatalf("open folder: %v", err)
	}
	if _, err := ws.OpenFile(MustParsePath("/nope.sol"), seqIDs()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open missing: %v", err)
	}
	if len(ws.OpenFiles) != 0 || ws.CurrentFile != "" {
		t.Fatal("failed open changed tabs")
	}
}

func TestCloseFileSelectsNeighbour(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		close       string
		wantCurrent string
	}{
		{name: "close current in middle", current: "/b", close: "/b", wantCurrent: "/c"},
		{name: "close current at end", current: "/c", close: "/c", wantCurrent: "/b"},
		{name: "close current at start", current: "/a", close: "/a", wantCurrent: "/b"},
		{name: "close other keeps current", current: "/a", close: "/c", wantCurrent: "/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkspace(newTestWorkspace(t).ID, Tree{
				"a": {Type: NodeFile},
				"b": {Type: NodeFile},
				"c": {Type: NodeFile},
			}, newTestWorkspace(t).UpdatedAt)
			ids := seqIDs()
			for _, p := range []string{"/a", "/b", "/c"} {
				mustOpen(t, ws, ids, p)
			}
			if err := ws.SetCurrentFile(MustParsePath(tt.current)); err != nil {
				t.Fatal(err)
			}
			if err := ws.CloseFile(MustParsePath(tt.close)); err != nil {
				t.Fatal(err)
			}
			if ws.CurrentFile != tt.wantCurrent {
				t.Fatalf("current = %q, want %q", ws.CurrentFile, tt.wantCurrent)
			}
		})
	}
}

func TestCloseLastTab(t *testing.T) {
	ws := newTestWorkspace(t)
	mustOpen(t, ws, seqIDs(), "/README.txt")
	if err := ws.CloseFile(MustParsePath("/README.txt")); err != nil {
		t.Fatal(err)
	}
	if ws.CurrentFile != "" || len(ws.OpenFiles) != 0 {
		t.Fatalf("current = %q tabs = %v", ws.CurrentFile, tabPaths(ws))
	}
	if _, ok := ws.CurrentTab(); ok {
		t.Fatal("CurrentTab reported a tab")
	}
	if err := ws.CloseFile(MustParsePath("/README.txt")); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("close twice: %v", err)
	}
}

func TestSetCurrentFileRequiresOpenTab(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := ws.SetCurrentFile(MustParsePath("/README.txt")); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("SetCurrentFile on closed tab: %v", err)
	}
	tab := mustOpen(t, ws, seqIDs(), "/README.txt")
	got, ok := ws.CurrentTab()
	if !ok || got.ID != tab.ID {
		t.Fatalf("CurrentTab = %+v %v", got, ok)
	}
	ws.ClearCurrentFile()
	if ws.CurrentFile != "" {
		t.Fatal("ClearCurrentFile kept a current file")
	}
}
