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

package main

import (
	"context"
	"errors"
	"fmt"

	"remixfs/modules/db/postgres"
)

const migrateUsage = "usage: remixfs migrate up|down|new <name>"

// runMigrate manages the postgres schema without starting the server.
func runMigrate(ctx context.Context, cfg *postgres.PostgresConfig, args []string) (err error) {
	if len(args) == 0 {
		return errors.New(migrateUsage)
	}
	pool, err := postgres.New(ctx, cfg, postgres.PostgresOptions{})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, pool.Shutdown(ctx))
	}()

	switch args[0] {
	case "up":
		return pool.MigrateUp()
	case "down":
		return pool.MigrateDown()
	case "new":
		if len(args) < 2 {
			return errors.New(migrateUsage)
		}
		return pool.GenerateMigration(args[1])
	default:
		return fmt.Errorf("unknown migrate command %q; %s", args[0], migrateUsage)
	}
}
