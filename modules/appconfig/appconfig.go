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

package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"remixfs/modules/db/postgres"
	"remixfs/modules/db/redis"
	"remixfs/modules/hmac"
	"remixfs/modules/middleware/ratelimit"
	"remixfs/modules/telemetry"

	"github.com/caarlos0/env/v11"
	"github.com/gofrs/uuid/v5"
)

type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendFile     StoreBackend = "file"
	BackendRedis    StoreBackend = "redis"
	BackendPostgres StoreBackend = "postgres"
)

type (
	HTTPConfig struct {
		Host         string        `env:"HOST" envDefault:"0.0.0.0"`
		Port         int           `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	}

	StoreConfig struct {
		Backend   StoreBackend `env:"BACKEND" envDefault:"memory"`
		KeyPrefix string       `env:"KEY_PREFIX" envDefault:"remix-clone-filesystem"`
		// zero keeps workspaces forever; only the redis backend expires keys
		TTL         time.Duration `env:"TTL"`
		FileDir     string        `env:"FILE_DIR" envDefault:"data"`
		FileBackups int           `env:"FILE_BACKUPS" envDefault:"3"`
	}

	WorkspaceConfig struct {
		// empty seeds the built-in default files
		TemplateDir   string        `env:"TEMPLATE_DIR"`
		ImportWorkers int           `env:"IMPORT_WORKERS" envDefault:"4"`
		LockTimeout   time.Duration `env:"LOCK_TIMEOUT" envDefault:"5s"`
		MaxFileBytes  int           `env:"MAX_FILE_BYTES" envDefault:"10485760"`
	}

	MountConfig struct {
		Dir         string `env:"DIR"`
		WorkspaceID string `env:"WORKSPACE_ID"`
	}

	Config struct {
		Env      string     `env:"ENV" envDefault:"dev"`
		LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

		HTTP      HTTPConfig      `envPrefix:"HTTP_"`
		Store     StoreConfig     `envPrefix:"STORE_"`
		Workspace WorkspaceConfig `envPrefix:"WORKSPACE_"`
		Mount     MountConfig     `envPrefix:"MOUNT_"`

		// --- core infra ----
		HMAC     hmac.HMACConfig         `envPrefix:"HMAC_"`
		Redis    redis.RueidisOptions    `envPrefix:"REDIS_"`
		Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`

		// --- middlewares ----
		RateLimit ratelimit.RestHTTPConfig `envPrefix:"RATE_LIMIT_"`

		// --- otel ----
		// since it has special naming conventions, we do not use prefix here
		Otel telemetry.Config
	}
)

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MountWorkspace returns the id of the workspace to mount, or uuid.Nil when
// mounting is off.
func (c *Config) MountWorkspace() uuid.UUID {
	if c.Mount.Dir == "" {
		return uuid.Nil
	}
	return uuid.FromStringOrNil(c.Mount.WorkspaceID)
}

func validate(c *Config) error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND: unknown backend %q", c.Store.Backend))
	}
	if c.Store.Backend == BackendFile && c.Store.FileDir == "" {
		errs = append(errs, errors.New("STORE_FILE_DIR: required by the file backend"))
	}
	if c.Store.FileBackups < 0 {
		errs = append(errs, errors.New("STORE_FILE_BACKUPS: must not be negative"))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("STORE_TTL: must not be negative"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT: %d is out of range", c.HTTP.Port))
	}
	if c.Workspace.ImportWorkers <= 0 {
		errs = append(errs, errors.New("WORKSPACE_IMPORT_WORKERS: must be positive"))
	}
	if c.Workspace.LockTimeout <= 0 {
		errs = append(errs, errors.New("WORKSPACE_LOCK_TIMEOUT: must be positive"))
	}
	if c.Workspace.MaxFileBytes <= 0 {
		errs = append(errs, errors.New("WORKSPACE_MAX_FILE_BYTES: must be positive"))
	}
	if c.Mount.Dir != "" {
		if id, err := uuid.FromString(c.Mount.WorkspaceID); err != nil || id.IsNil() {
			errs = append(errs, errors.New("MOUNT_WORKSPACE_ID: a workspace uuid is required when MOUNT_DIR is set"))
		}
	}
	if c.Env == "prod" && len(c.HMAC.Secret) < 32 {
		errs = append(errs, errors.New("HMAC_SECRET: must be at least 32 bytes in prod"))
	}

	return errors.Join(errs...)
}
