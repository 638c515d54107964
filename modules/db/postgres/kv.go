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
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"remixfs/modules/db"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ db.KV = (*KV)(nil)

const kvTable = "kv_blobs"

// KV stores opaque values in the kv_blobs table. Reads go to a replica
// when one is configured; writes always hit the primary.
type KV struct {
	pool   db.ConnectionPool
	prefix string
}

func NewKV(pool db.ConnectionPool, prefix string) *KV {
	return &KV{pool: pool, prefix: prefix}
}

func (k *KV) key(raw string) string {
	if k.prefix == "" {
		return raw
	}
	return k.prefix + ":" + raw
}

// AtomicGet implements db.KV. A missing key yields (nil, nil).
func (k *KV) AtomicGet(ctx context.Context, key string) (any, error) {
	query := psql.Select(
		sm.Columns("value"),
		sm.From(kvTable),
		sm.Where(psql.Quote("key").EQ(psql.Arg(k.key(key)))),
	)

	value, err := bob.One(ctx, k.pool.Reader(), query, scan.SingleColumnMapper[[]byte])
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres kv get %q: %w", key, err)
	}
	return value, nil
}

// upsertReturningPrev locks the current row, replaces it and hands back
// what was there before, all in one statement.
const upsertReturningPrev = `
WITH prev AS (
    SELECT value FROM kv_blobs WHERE key = $1 FOR UPDATE
)
INSERT INTO kv_blobs (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
    SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
RETURNING (SELECT value FROM prev)`

// AtomicSet implements db.KV and returns the previous value, or nil.
func (k *KV) AtomicSet(ctx context.Context, key string, value any) (any, error) {
	bs, err := db.EncodeValue(value)
	if err != nil {
		return nil, err
	}

	fullKey := k.key(key)
	var prev []byte
	err = k.pool.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		var err error
		prev, err = bob.One(ctx, q, psql.RawQuery(upsertReturningPrev, fullKey, bs), scan.SingleColumnMapper[[]byte])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres kv set %q: %w", key, err)
	}
	if prev == nil {
		return nil, nil
	}
	return prev, nil
}

// Delete removes key. Missing keys are not an error.
func (k *KV) Delete(ctx context.Context, key string) error {
	_, err := k.pool.Writer().ExecContext(ctx, "DELETE FROM "+kvTable+" WHERE key = $1", k.key(key))
	return err
}
