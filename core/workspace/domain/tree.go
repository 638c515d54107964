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
	"errors"
	"maps"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
)

// SkipDir is returned by Walk callbacks to skip descending into a folder.
var SkipDir = errors.New("skip dir")

// NewWorkspace builds a version-1 workspace around files.
func NewWorkspace(id uuid.UUID, files Tree, now time.Time) *Workspace {
	if files == nil {
		files = Tree{}
	}
	return &Workspace{
		ID:        id,
		Version:   1,
		UpdatedAt: now,
		Files:     files,
		OpenFiles: []Tab{},
	}
}

// folder resolves the children of the folder at p. The root resolves to w.Files.
func (w *Workspace) folder(p Path) (Tree, error) {
	if w.Files == nil {
		w.Files = Tree{}
	}
	cur := w.Files
	for _, seg := range p.segments {
		n, ok := cur[seg]
		if !ok || n == nil {
			return nil, ErrNotFound
		}
		if n.Type != NodeFolder {
			return nil, ErrNotAFolder
		}
		if n.Children == nil {
			n.Children = Tree{}
		}
		cur = n.Children
	}
	return cur, nil
}

// lookup returns the parent children map and the node at p.
func (w *Workspace) lookup(p Path) (Tree, *Node, error) {
	if p.IsRoot() {
		return nil, nil, ErrInvalidPath
	}
	parent, err := w.folder(p.Parent())
	if err != nil {
		return nil, nil, ErrNotFound
	}
	n, ok := parent[p.Name()]
	if !ok || n == nil {
		return nil, nil, ErrNotFound
	}
	return parent, n, nil
}

// CreateItem adds a file or folder at p. Existing items are never overwritten.
func (w *Workspace) CreateItem(p Path, typ NodeType, initialContent string) error {
	if p.IsRoot() {
		return ErrInvalidPath
	}
	if !typ.Valid() {
		return ErrInvalidType
	}
	if typ == NodeFile && !utf8.ValidString(initialContent) {
		return ErrInvalidContent
	}
	parent, err := w.folder(p.Parent())
	if err != nil {
		return ErrParentNotFound
	}
	if _, exists := parent[p.Name()]; exists {
		return ErrAlreadyExists
	}

	switch typ {
	case NodeFile:
		parent[p.Name()] = &Node{Type: NodeFile, Content: initialContent}
	case NodeFolder:
		parent[p.Name()] = &Node{Type: NodeFolder, Children: Tree{}}
	}
	return nil
}

// DeleteItem removes the node at p and closes every tab that pointed into it.
func (w *Workspace) DeleteItem(p Path) error {
	parent, _, err := w.lookup(p)
	if err != nil {
		return err
	}
	delete(parent, p.Name())
	w.closeTabsWithin(p)
	return nil
}

// UpdateFileContent replaces the content of the file at p. Content is stored as
// text and must be valid UTF-8.
func (w *Workspace) UpdateFileContent(p Path, content string) error {
	if !utf8.ValidString(content) {
		return ErrInvalidContent
	}
	_, n, err := w.lookup(p)
	if err != nil {
		return err
	}
	if n.Type != NodeFile {
		return ErrNotAFile
	}
	n.Content = content
	return nil
}

func (w *Workspace) FileContent(p Path) (string, error) {
	_, n, err := w.lookup(p)
	if err != nil {
		return "", err
	}
	if n.Type != NodeFile {
		return "", ErrNotAFile
	}
	return n.Content, nil
}

// RenameItem gives the node at p a new name inside the same folder.
// Tabs for the node, or for anything under it, follow the new path.
func (w *Workspace) RenameItem(p Path, newName string) error {
	if !ValidName(newName) {
		return ErrInvalidName
	}
	parent, n, err := w.lookup(p)
	if err != nil {
		return err
	}
	if _, exists := parent[newName]; exists {
		return ErrAlreadyExists
	}

	parent[newName] = n
	delete(parent, p.Name())
	w.retargetTabs(p, p.Parent().Join(newName))
	return nil
}

// Stat returns the node at p. The root is reported as a folder.
func (w *Workspace) Stat(p Path) (*Node, error) {
	if p.IsRoot() {
		return &Node{Type: NodeFolder, Children: w.Files}, nil
	}
	_, n, err := w.lookup(p)
	return n, err
}

// List returns the children of the folder at p sorted by name.
func (w *Workspace) List(p Path) ([]Entry, error) {
	n, err := w.Stat(p)
	if err != nil {
		return nil, err
	}
	if n.Type != NodeFolder {
		return nil, ErrNotAFolder
	}
	names := slices.Sorted(maps.Keys(n.Children))
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		child := n.Children[name]
		if child == nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Type: child.Type, Size: len(child.Content)})
	}
	return entries, nil
}

// Walk visits every node depth-first in name order.
func (w *Workspace) Walk(fn func(p Path, n *Node) error) error {
	err := walk(RootPath, w.Files, fn)
	if errors.Is(err, SkipDir) {
		return nil
	}
	return err
}

func walk(dir Path, children Tree, fn func(p Path, n *Node) error) error {
	for _, name := range slices.Sorted(maps.Keys(children)) {
		n := children[name]
		if n == nil {
			continue
		}
		p := dir.Join(name)
		err := fn(p, n)
		if errors.Is(err, SkipDir) {
			continue
		}
		if err != nil {
			return err
		}
		if n.Type == NodeFolder {
			if err := walk(p, n.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
