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
package persistence

import (
	"context"
	"fmt"

	"remixfs/core/workspace/domain"
	"remixfs/modules/db"

	"github.com/gofrs/uuid/v5"
)

var _ domain.WorkspaceStore = (*KVWorkspaceStore)(nil)

// KVWorkspaceStore keeps each workspace as one JSON blob in a db.KV.
type KVWorkspaceStore struct {
	kv db.JSONKV[domain.Workspace]
}

func NewKVWorkspaceStore(kv db.KV) *KVWorkspaceStore {
	return &KVWorkspaceStore{kv: db.NewJSONKV[domain.Workspace](kv)}
}

func workspaceKey(id uuid.UUID) string {
	return "workspace:" + id.String()
}

// Load implements domain.WorkspaceStore.
func (s *KVWorkspaceStore) Load(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	ws, err := s.kv.Get(ctx, workspaceKey(id))
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", id, err)
	}
	if ws == nil {
		return nil, domain.ErrWorkspaceNotFound
	}
	if ws.ID != id {
		return nil, fmt.Errorf("load workspace %s: stored snapshot belongs to %s", id, ws.ID)
	}
	if ws.OpenFiles == nil {
		ws.OpenFiles = []domain.Tab{}
	}
	if ws.Files == nil {
		ws.Files = domain.Tree{}
	}
	return ws, nil
}

// Save implements domain.WorkspaceStore.
func (s *KVWorkspaceStore) Save(ctx context.Context, ws *domain.Workspace) error {
	if ws == nil || ws.ID.IsNil() {
		return domain.ErrInvalidData
	}
	if _, err := s.kv.Set(ctx, workspaceKey(ws.ID), *ws); err != nil {
		return fmt.Errorf("save workspace %s: %w", ws.ID, err)
	}
	return nil
}
