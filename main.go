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
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	workspace_fuse "remixfs/core/workspace/adapters/fuse"
	"remixfs/core/workspace/adapters/hostfs"
	"remixfs/core/workspace/adapters/persistence"
	workspace_http "remixfs/core/workspace/adapters/rest"
	"remixfs/core/workspace/domain"
	"remixfs/modules/appconfig"
	"remixfs/modules/clock"
	hmac_sign "remixfs/modules/hmac"
	"remixfs/modules/middleware"
	"remixfs/modules/middleware/ratelimit"
	"remixfs/modules/oapi"
	rl "remixfs/modules/ratelimit"
	"remixfs/modules/server"
	"remixfs/modules/services"
	"remixfs/modules/telemetry"

	"github.com/spf13/afero"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// --- application config ----
	appConfig, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		exitCode = 1
		return
	}

	// manual dependency injections, imo there's no need to over-engineer with DI frameworks like Fx or Wire
	slog.SetLogLoggerLevel(appConfig.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(ctx, &appConfig.Postgres, os.Args[2:]); err != nil {
			slog.ErrorContext(ctx, "migrate error", slog.Any("error", err))
			exitCode = 1
		}
		return
	}

	clock := clock.RealClockProvider()

	otelShutdown, err := telemetry.Init(ctx, appConfig.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry not properly configured", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := otelShutdown(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	// --- infrastructure ---

	store, err := openBackend(ctx, appConfig, clock)
	if err != nil {
		slog.ErrorContext(ctx, "store error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "store shutdown error", slog.Any("error", err))
		}
	}()

	signer, err := hmac_sign.NewHMACSigner([]byte(appConfig.HMAC.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "hmac signer setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	slog.Debug("app rate limit config", slog.Any("rate_limit_config", appConfig.RateLimit))

	rtp, err := ratelimit.ParsePolicy(
		rl.SlidingWindowFactory(clock, store.counter, appConfig.Store.KeyPrefix),
		&appConfig.RateLimit,
		ratelimit.PatternRouteInfo,
		ratelimit.DefaultKeyStrategies(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "ratelimit config not properly parsed", slog.Any("error", err))
		exitCode = 1
		return
	}

	// --- application layer ---

	appOpts := []domain.Option{
		domain.WithClock(clock),
		domain.WithMaxFileBytes(appConfig.Workspace.MaxFileBytes),
	}
	if dir := appConfig.Workspace.TemplateDir; dir != "" {
		appOpts = append(appOpts, domain.WithSeeder(hostfs.TemplateSeeder(
			afero.NewReadOnlyFs(afero.NewOsFs()), dir, appConfig.Workspace.ImportWorkers)))
		slog.InfoContext(ctx, "seeding workspaces from template", slog.String("template.dir", dir))
	}
	if m, err := telemetry.NewWorkspaceMetrics(appConfig.Otel.ServiceName); err != nil {
		slog.WarnContext(ctx, "failed to initialize workspace metrics, continuing without metrics", slog.Any("error", err))
	} else {
		appOpts = append(appOpts, domain.WithRecorder(m))
	}

	app := domain.NewApp(persistence.NewKVWorkspaceStore(store.kv), store.locker, appOpts...)

	// Initialize HTTP metrics for middleware-based instrumentation
	httpMetrics, err := telemetry.NewHTTPMetrics(appConfig.Otel.ServiceName)
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
		httpMetrics = nil
	}

	workspaceSvc := services.NewWorkspaceAPIService(
		workspace_http.NewWorkspaceAPI(app, signer),
		oapi.SpecFS,
		oapi.WorkspaceSpecPath,
		// route middlewares see r.Pattern and path values
		ratelimit.NewRateLimitMiddleware(rtp),
	)

	server, err := server.New(
		appConfig.HTTP.Host, appConfig.HTTP.Port,
		server.WithReadTimeout(appConfig.HTTP.ReadTimeout),
		server.WithWriteTimeout(appConfig.HTTP.WriteTimeout),
		server.WithServices(workspaceSvc),
		server.WithGlobalMiddlewares(
			middleware.Telemetry(httpMetrics),
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		exitCode = 1
		return
	}

	if id := appConfig.MountWorkspace(); !id.IsNil() {
		if _, err := app.LoadOrSeed(ctx, id); err != nil {
			slog.ErrorContext(ctx, "mounted workspace unavailable", slog.Any("error", err))
			exitCode = 1
			return
		}
		go func() {
			err := workspace_fuse.Mount(ctx, appConfig.Mount.Dir, workspace_fuse.NewFS(app, id))
			if err != nil {
				slog.ErrorContext(ctx, "fuse mount error", slog.Any("error", err))
				cancel()
			}
		}()
	}

	if err := server.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		exitCode = 1
		return
	}
}
