package hostfs

import (
	"context"
	"strings"
	"testing"
	"time"

	"remixfs/core/workspace/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTemplateSeeder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/tpl/contracts/Token.sol", "contract Token {}")
	writeFile(t, fs, "/tpl/contracts/lib/Math.sol", "library Math {}")
	writeFile(t, fs, "/tpl/README.md", "# template")
	writeFile(t, fs, "/tpl/.env", "SECRET=1")
	writeFile(t, fs, "/tpl/.git/config", "[core]")
	if err := fs.MkdirAll("/tpl/scripts", 0o755); err != nil {
		t.Fatal(err)
	}

	tree, err := TemplateSeeder(fs, "/tpl", 3)(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	ws := domain.NewWorkspace(uuid.Nil, tree, time.Time{})
	var got []string
	_ = ws.Walk(func(p domain.Path, n *domain.Node) error {
		got = append(got, string(n.Type)+" "+p.String())
		return nil
	})
	want := []string{
		"file /README.md",
		"folder /contracts",
		"file /contracts/Token.sol",
		"folder /contracts/lib",
		"file /contracts/lib/Math.sol",
		"folder /scripts",
	}
	if len(got) != len(want) {
		t.Fatalf("walk = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("walk[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	content, err := ws.FileContent(domain.MustParsePath("/contracts/lib/Math.sol"))
	if err != nil || content != "library Math {}" {
		t.Errorf("Math.sol = %q, %v", content, err)
	}
}

func TestTemplateSeeder_MissingDir(t *testing.T) {
	_, err := TemplateSeeder(afero.NewMemMapFs(), "/nowhere", 2)(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing template directory")
	}
}

func TestTemplateSeeder_SkipsBinaryFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/tpl/contracts/Token.sol", "contract Token {}")
	writeFile(t, fs, "/tpl/assets/logo.png", "\x89PNG\r\n\x1a\n\xff\xfe")

	tree, err := TemplateSeeder(fs, "/tpl", 2)(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ws := domain.NewWorkspace(uuid.Nil, tree, time.Time{})
	if _, err := ws.Stat(domain.MustParsePath("/assets/logo.png")); err == nil {
		t.Error("binary file was seeded")
	}
	if _, err := ws.Stat(domain.MustParsePath("/assets")); err != nil {
		t.Errorf("folder of a binary file: %v", err)
	}
	if content, err := ws.FileContent(domain.MustParsePath("/contracts/Token.sol")); err != nil || content != "contract Token {}" {
		t.Errorf("Token.sol = %q, %v", content, err)
	}
}

// panicFs panics when the file named broken is opened.
type panicFs struct {
	afero.Fs
	broken string
}

func (p panicFs) Open(name string) (afero.File, error) {
	if name == p.broken {
		panic("read failed")
	}
	return p.Fs.Open(name)
}

func TestTemplateSeeder_PanickingRead(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/tpl/contracts/Token.sol", "contract Token {}")
	writeFile(t, mem, "/tpl/README.md", "# template")

	_, err := TemplateSeeder(panicFs{Fs: mem, broken: "/tpl/README.md"}, "/tpl", 2)(context.Background())
	if err == nil {
		t.Fatal("expected an error when a read panics")
	}
	if !strings.Contains(err.Error(), "/tpl/README.md") {
		t.Errorf("error = %v, want it to name the unread file", err)
	}
}
