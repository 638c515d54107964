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

package domain

import (
	"slices"
	"strings"
)

// Path is an absolute location inside a workspace. The zero value is the root.
type Path struct {
	segments []string
}

var RootPath = Path{}

// ParsePath splits raw on "/" and drops empty segments, so "contracts//a.sol",
// "/contracts/a.sol" and "contracts/a.sol/" all name the same node.
// "." and ".." segments are rejected rather than resolved.
func ParsePath(raw string) (Path, error) {
	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if !ValidName(part) {
			return Path{}, ErrInvalidPath
		}
		segments = append(segments, part)
	}
	return Path{segments: segments}, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}

func (p Path) String() string {
	return "/" + strings.Join(p.segments, "/")
}

func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Name returns the last segment, or "" for the root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

func (p Path) Join(name string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{segments: append(segments, name)}
}

func (p Path) Segments() []string {
	return slices.Clone(p.segments)
}

func (p Path) Equal(o Path) bool {
	return slices.Equal(p.segments, o.segments)
}

// Within reports whether p equals dir or lies beneath it.
func (p Path) Within(dir Path) bool {
	if len(p.segments) < len(dir.segments) {
		return false
	}
	return slices.Equal(p.segments[:len(dir.segments)], dir.segments)
}

// Rebase moves p from under `from` to under `to`. p must be Within(from).
func (p Path) Rebase(from, to Path) Path {
	rest := p.segments[len(from.segments):]
	segments := make([]string, 0, len(to.segments)+len(rest))
	segments = append(segments, to.segments...)
	return Path{segments: append(segments, rest...)}
}
