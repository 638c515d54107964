package worker

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"runtime/pprof"
	"strconv"
	"testing"
)

func Benchmark_BlockingPool_SHA256(b *testing.B) {
	payload := make([]byte, 1024)
	_, _ = rand.Read(payload)

	worker := func(ctx context.Context, p []byte) {
		_ = sha256.Sum256(p)
	}

	for _, s := range []int{1, 4, 8, 16, 32} {
		b.Run(fmt.Sprintf("pool_size=%d", s), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			b.ReportAllocs()

			ctx := context.Background()
			jobs := make(chan []byte, 1024)

			// label profiles taken while benchmarking with the pool size
			labels := pprof.Labels("pool_size", strconv.Itoa(s))
			pprof.Do(ctx, labels, func(ctx context.Context) {
				b.ResetTimer()
				go func(n int) {
					for range n {
						jobs <- payload
					}
					close(jobs)
				}(b.N)

				BlockingPool(ctx, s, jobs, worker)
			})
		})
	}
}
