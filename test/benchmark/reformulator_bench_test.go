// Package benchmark contains Go benchmarks for query reformulation,
// measuring per-line throughput and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/reformulator"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/sink"
)

var sampleQueries = map[string]string{
	"short":  "10:obama family tree",
	"medium": "42:french lick resort and casino indiana history of the hotel",
	"long":   "99:" + strings.TrimSpace(strings.Repeat("distributed retrieval ranking ", 20)),
}

type discard struct{}

func (discard) Name() string                           { return "discard" }
func (discard) Write(context.Context, sink.Entry) error { return nil }
func (discard) Flush(context.Context) error             { return nil }
func (discard) Close() error                            { return nil }

func BenchmarkFormatLine(b *testing.B) {
	r := reformulator.New(reformulator.Options{})
	for name, line := range sampleQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(line)))
			for i := 0; i < b.N; i++ {
				if _, err := r.FormatLine(line); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRun measures a full pass over 1 000 queries.
func BenchmarkRun(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "%d:query number %d about search engines\n", i, i)
	}
	input := sb.String()
	r := reformulator.New(reformulator.Options{})

	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Run(context.Background(), strings.NewReader(input), discard{}); err != nil {
			b.Fatal(err)
		}
	}
}
