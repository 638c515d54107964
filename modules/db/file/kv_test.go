package file

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestKV_SetGet(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	kv, err := NewKV(fs, "/data", WithKeyPrefix("remix"))
	if err != nil {
		t.Fatal(err)
	}

	if got, err := kv.AtomicGet(ctx, "workspace:1"); got != nil || err != nil {
		t.Fatalf("missing key = %v, %v", got, err)
	}
	prev, err := kv.AtomicSet(ctx, "workspace:1", []byte(`{"a":1}`))
	if err != nil || prev != nil {
		t.Fatalf("first set = %v, %v", prev, err)
	}
	prev, err = kv.AtomicSet(ctx, "workspace:1", map[string]int{"a": 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(prev.([]byte)) != `{"a":1}` {
		t.Fatalf("prev = %s", prev)
	}
	got, err := kv.AtomicGet(ctx, "workspace:1")
	if err != nil || string(got.([]byte)) != `{"a":2}` {
		t.Fatalf("get = %s, %v", got, err)
	}

	// no temp files are left behind
	entries, err := afero.ReadDir(fs, "/data")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if !e.IsDir() && e.Name() != "remix%3Aworkspace%3A1.json" {
			t.Fatalf("unexpected file %q", e.Name())
		}
	}
}

func TestKV_RollingBackups(t *testing.T) {
	ctx := context.Background()
	kv, err := NewKV(afero.NewMemMapFs(), "/data",
		WithBackups(2),
		WithClock(&stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []string{"v1", "v2", "v3", "v4"} {
		if _, err := kv.AtomicSet(ctx, "k", v); err != nil {
			t.Fatal(err)
		}
	}
	names, err := kv.Backups("k")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("backups = %v", names)
	}
	newest, err := kv.fs.ReadFile(names[0])
	if err != nil || string(newest) != "v3" {
		t.Fatalf("newest backup = %q, %v", newest, err)
	}

	other, _ := kv.Backups("other")
	if len(other) != 0 {
		t.Fatalf("backups leaked across keys: %v", other)
	}
}
