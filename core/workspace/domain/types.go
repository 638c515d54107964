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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

type (
	NodeType string

	// Node is a single file or folder. Files carry Content, folders carry Children.
	Node struct {
		Type     NodeType
		Content  string
		Children Tree
	}

	// Tree maps a name to the node stored under it. The workspace root is a Tree.
	Tree map[string]*Node

	// Tab is an open file in the editor. Its content is always read from the tree.
	Tab struct {
		ID   uuid.UUID `json:"id"`
		Path string    `json:"path"`
		Name string    `json:"name"`
	}

	// Workspace is the unit of persistence: a file tree plus the editor tab set.
	//
	// The "files" member keeps the exact shape of the browser local-storage blob
	// so snapshots can be exchanged with the IDE as-is.
	Workspace struct {
		ID          uuid.UUID `json:"id"`
		Version     int64     `json:"version"`
		UpdatedAt   time.Time `json:"updatedAt"`
		Files       Tree      `json:"files"`
		OpenFiles   []Tab     `json:"openFiles"`
		CurrentFile string    `json:"currentFile,omitempty"`
	}

	// Ref addresses a workspace for a mutation. IfVersion > 0 makes the mutation
	// conditional on the stored version.
	Ref struct {
		ID        uuid.UUID
		IfVersion int64
	}

	// Entry is a listing row for a folder.
	Entry struct {
		Name string
		Type NodeType
		Size int
	}
)

// V implements etag.ETaggable.
func (w *Workspace) V() string {
	return strconv.FormatInt(w.Version, 10)
}

func (t NodeType) Valid() bool {
	return t == NodeFile || t == NodeFolder
}

type (
	fileJSON struct {
		Type    NodeType `json:"type"`
		Content string   `json:"content"`
	}

	folderJSON struct {
		Type     NodeType `json:"type"`
		Children Tree     `json:"children"`
	}
)

func (n Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeFolder:
		children := n.Children
		if children == nil {
			children = Tree{}
		}
		return json.Marshal(folderJSON{Type: NodeFolder, Children: children})
	case NodeFile:
		return json.Marshal(fileJSON{Type: NodeFile, Content: n.Content})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, n.Type)
	}
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type     NodeType `json:"type"`
		Content  string   `json:"content"`
		Children Tree     `json:"children"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case NodeFile:
		*n = Node{Type: NodeFile, Content: raw.Content}
	case NodeFolder:
		if raw.Children == nil {
			raw.Children = Tree{}
		}
		*n = Node{Type: NodeFolder, Children: raw.Children}
	default:
		return fmt.Errorf("unknown node type %q", raw.Type)
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for name, n := range t {
		if n == nil {
			continue
		}
		c := &Node{Type: n.Type, Content: n.Content}
		if n.Type == NodeFolder {
			c.Children = n.Children.Clone()
		}
		out[name] = c
	}
	return out
}
