package domain

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "contracts/Storage.sol", want: "/contracts/Storage.sol"},
		{raw: "/contracts//Storage.sol/", want: "/contracts/Storage.sol"},
		{raw: "", want: "/"},
		{raw: "///", want: "/"},
		{raw: "contracts/../x", wantErr: ErrInvalidPath},
		{raw: "./x", wantErr: ErrInvalidPath},
		{raw: "a\x00b", wantErr: ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := ParsePath(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePath(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && p.String() != tt.want {
				t.Fatalf("ParsePath(%q) = %q, want %q", tt.raw, p.String(), tt.want)
			}
		})
	}
}

func TestPathWithinAndRebase(t *testing.T) {
	p := MustParsePath("/contracts/lib/A.sol")
	if !p.Within(MustParsePath("/contracts")) {
		t.Fatal("expected path to be within /contracts")
	}
	if p.Within(MustParsePath("/contract")) {
		t.Fatal("segment prefix must not count as within")
	}
	if !p.Within(RootPath) {
		t.Fatal("every path is within the root")
	}
	got := p.Rebase(MustParsePath("/contracts"), MustParsePath("/src"))
	if got.String() != "/src/lib/A.sol" {
		t.Fatalf("Rebase = %q", got)
	}
	if p.Parent().String() != "/contracts/lib" || p.Name() != "A.sol" {
		t.Fatalf("Parent/Name = %q %q", p.Parent(), p.Name())
	}
	if RootPath.Parent().String() != "/" {
		t.Fatal("root parent must be root")
	}
}

func TestJoinDoesNotAlias(t *testing.T) {
	base := MustParsePath("/a")
	x := base.Join("x")
	y := base.Join("y")
	if x.String() != "/a/x" || y.String() != "/a/y" {
		t.Fatalf("Join aliasing: %q %q", x, y)
	}
}
