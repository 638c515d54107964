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

// Package hostfs seeds workspaces from a template directory on the host.
package hostfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"remixfs/core/workspace/domain"
	"remixfs/modules/worker"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/afero"
)

type fileJob struct {
	host string
	path domain.Path
}

// TemplateSeeder returns a seeder that copies the tree under dir. Entries whose
// name starts with a dot are skipped, and so are files that are not UTF-8 text.
// File contents are read by a pool of workers.
func TemplateSeeder(fs afero.Fs, dir string, workers int) domain.Seeder {
	return func(ctx context.Context) (domain.Tree, error) {
		ws := domain.NewWorkspace(uuid.Nil, nil, time.Time{})
		var files []fileJob

		err := afero.Walk(fs, dir, func(host string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, host)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			p, err := domain.ParsePath(filepath.ToSlash(rel))
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			switch {
			case info.IsDir():
				return ws.CreateItem(p, domain.NodeFolder, "")
			case info.Mode().IsRegular():
				files = append(files, fileJob{host: host, path: p})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking template %s: %w", dir, err)
		}

		contents, err := readAll(ctx, fs, files, workers)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			content, ok := contents[f.host]
			if !ok {
				continue
			}
			if err := ws.CreateItem(f.path, domain.NodeFile, content); err != nil {
				return nil, fmt.Errorf("seeding %s: %w", f.path, err)
			}
		}

		slog.DebugContext(ctx, "seeded from template",
			slog.String("template.dir", dir),
			slog.Int("template.files", len(files)))
		return ws.Files, nil
	}
}

// readAll reads the text files among files. Binary files are logged and left
// out of the result.
func readAll(ctx context.Context, fs afero.Fs, files []fileJob, workers int) (map[string]string, error) {
	jobs := make(chan fileJob, len(files))
	for _, f := range files {
		jobs <- f
	}
	close(jobs)

	var (
		mu       sync.Mutex
		contents = make(map[string]string, len(files))
		read     = make(map[string]bool, len(files))
		errs     []error
	)
	worker.BlockingPool(ctx, workers, jobs, func(ctx context.Context, f fileJob) {
		b, err := afero.ReadFile(fs, f.host)
		mu.Lock()
		defer mu.Unlock()
		read[f.host] = true
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("reading %s: %w", f.host, err))
		case !utf8.Valid(b):
			slog.WarnContext(ctx, "skipping binary template file", slog.String("template.file", f.host))
		default:
			contents[f.host] = string(b)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// a job that panicked never marks its file as read
	for _, f := range files {
		if !read[f.host] {
			errs = append(errs, fmt.Errorf("reading %s: no result", f.host))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return contents, nil
}
