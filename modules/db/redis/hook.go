// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidishook"
)

var _ rueidishook.Hook = (*LogHook)(nil)

// LogHook logs command names, latency and errors at debug level.
// Arguments are never logged since they carry workspace blobs.
type LogHook struct {
	logger *slog.Logger
}

func NewLogHook(logger *slog.Logger) *LogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHook{logger: logger}
}

func commandName(cmd []string) string {
	if len(cmd) == 0 {
		return ""
	}
	return cmd[0]
}

func (h *LogHook) log(ctx context.Context, name string, start time.Time, err error) {
	if err != nil && !rueidis.IsRedisNil(err) {
		h.logger.WarnContext(ctx, "redis command failed",
			slog.String("redis.command", name),
			slog.Duration("redis.latency", time.Since(start)),
			slog.Any("error", err))
		return
	}
	h.logger.DebugContext(ctx, "redis command",
		slog.String("redis.command", name),
		slog.Duration("redis.latency", time.Since(start)))
}

func (h *LogHook) Do(client rueidis.Client, ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	start := time.Now()
	res := client.Do(ctx, cmd)
	h.log(ctx, commandName(cmd.Commands()), start, res.Error())
	return res
}

func (h *LogHook) DoMulti(client rueidis.Client, ctx context.Context, multi ...rueidis.Completed) []rueidis.RedisResult {
	start := time.Now()
	resps := client.DoMulti(ctx, multi...)
	for i, r := range resps {
		h.log(ctx, commandName(multi[i].Commands()), start, r.Error())
	}
	return resps
}

func (h *LogHook) DoCache(client rueidis.Client, ctx context.Context, cmd rueidis.Cacheable, ttl time.Duration) rueidis.RedisResult {
	start := time.Now()
	res := client.DoCache(ctx, cmd, ttl)
	h.log(ctx, commandName(cmd.Commands()), start, res.Error())
	return res
}

func (h *LogHook) DoMultiCache(client rueidis.Client, ctx context.Context, multi ...rueidis.CacheableTTL) []rueidis.RedisResult {
	start := time.Now()
	resps := client.DoMultiCache(ctx, multi...)
	for i, r := range resps {
		h.log(ctx, commandName(multi[i].Cmd.Commands()), start, r.Error())
	}
	return resps
}

func (h *LogHook) Receive(client rueidis.Client, ctx context.Context, subscribe rueidis.Completed, fn func(msg rueidis.PubSubMessage)) error {
	start := time.Now()
	err := client.Receive(ctx, subscribe, fn)
	h.log(ctx, commandName(subscribe.Commands()), start, err)
	return err
}

func (h *LogHook) DoStream(client rueidis.Client, ctx context.Context, cmd rueidis.Completed) rueidis.RedisResultStream {
	h.log(ctx, commandName(cmd.Commands()), time.Now(), nil)
	return client.DoStream(ctx, cmd)
}

func (h *LogHook) DoMultiStream(client rueidis.Client, ctx context.Context, multi ...rueidis.Completed) rueidis.MultiRedisResultStream {
	for _, c := range multi {
		h.log(ctx, commandName(c.Commands()), time.Now(), nil)
	}
	return client.DoMultiStream(ctx, multi...)
}
