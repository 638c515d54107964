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
package rest

import (
	"time"

	"remixfs/core/workspace/domain"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"
)

type (
	tabDTO struct {
		ID      types.UUID `json:"id"`
		Path    string     `json:"path"`
		Name    string     `json:"name"`
		Content *string    `json:"content,omitempty"`
	}

	tabsDTO struct {
		OpenFiles   []tabDTO                  `json:"openFiles"`
		CurrentFile nullable.Nullable[string] `json:"currentFile"`
	}

	// workspaceDTO keeps "files" in the browser local-storage shape.
	workspaceDTO struct {
		ID          types.UUID  `json:"id"`
		Version     int64       `json:"version"`
		UpdatedAt   time.Time   `json:"updatedAt"`
		Files       domain.Tree `json:"files"`
		OpenFiles   []tabDTO    `json:"openFiles"`
		CurrentFile string      `json:"currentFile,omitempty"`
	}

	envelopeDTO struct {
		Handle    string       `json:"handle"`
		Workspace workspaceDTO `json:"workspace"`
	}

	entryDTO struct {
		Name string          `json:"name"`
		Type domain.NodeType `json:"type"`
		Size int             `json:"size"`
	}

	itemDTO struct {
		Path     string          `json:"path"`
		Type     domain.NodeType `json:"type"`
		Content  *string         `json:"content,omitempty"`
		Children []entryDTO      `json:"children,omitempty"`
	}

	fileContentDTO struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}

	createItemRequest struct {
		Path    string          `json:"path"`
		Type    domain.NodeType `json:"type"`
		Content string          `json:"content"`
	}

	// A null content clears the file; an absent one leaves it alone.
	modifyItemRequest struct {
		Path    string                    `json:"path"`
		Content nullable.Nullable[string] `json:"content,omitempty"`
		Name    string                    `json:"name,omitempty"`
	}

	openFileRequest struct {
		Path string `json:"path"`
	}

	// A null or empty path clears the current file.
	setCurrentFileRequest struct {
		Path nullable.Nullable[string] `json:"path"`
	}
)

func mapTab(t domain.Tab) tabDTO {
	return tabDTO{ID: types.UUID(t.ID), Path: t.Path, Name: t.Name}
}

// mapTabWithContent reads the tab's content from the tree.
func mapTabWithContent(ws *domain.Workspace, t domain.Tab) tabDTO {
	dto := mapTab(t)
	if p, err := domain.ParsePath(t.Path); err == nil {
		if content, err := ws.FileContent(p); err == nil {
			dto.Content = &content
		}
	}
	return dto
}

func mapTabs(ws *domain.Workspace) tabsDTO {
	out := tabsDTO{OpenFiles: make([]tabDTO, 0, len(ws.OpenFiles))}
	for _, t := range ws.OpenFiles {
		out.OpenFiles = append(out.OpenFiles, mapTabWithContent(ws, t))
	}
	if ws.CurrentFile == "" {
		out.CurrentFile = nullable.NewNullNullable[string]()
	} else {
		out.CurrentFile = nullable.NewNullableWithValue(ws.CurrentFile)
	}
	return out
}

func mapWorkspace(ws *domain.Workspace) workspaceDTO {
	tabs := make([]tabDTO, 0, len(ws.OpenFiles))
	for _, t := range ws.OpenFiles {
		tabs = append(tabs, mapTab(t))
	}
	files := ws.Files
	if files == nil {
		files = domain.Tree{}
	}
	return workspaceDTO{
		ID:          types.UUID(ws.ID),
		Version:     ws.Version,
		UpdatedAt:   ws.UpdatedAt,
		Files:       files,
		OpenFiles:   tabs,
		CurrentFile: ws.CurrentFile,
	}
}

func mapItem(p string, n *domain.Node, entries []domain.Entry) itemDTO {
	item := itemDTO{Path: p, Type: n.Type}
	switch n.Type {
	case domain.NodeFile:
		content := n.Content
		item.Content = &content
	case domain.NodeFolder:
		item.Children = make([]entryDTO, 0, len(entries))
		for _, e := range entries {
			item.Children = append(item.Children, entryDTO{Name: e.Name, Type: e.Type, Size: e.Size})
		}
	}
	return item
}
