// Package reformulator rewrites "<index>:<query>" lines into weighted
// structured queries of the form
//
//	<index>:#AND(#WSUM(w0 t.f0 ... wn t.fn) #WSUM(...) ...)
//
// with one #WSUM group per query term, in term order.
package reformulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/sink"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/metrics"
)

const maxLineBytes = 1 << 20

// Options configures a Reformulator. A nil Template means DefaultTemplate.
type Options struct {
	Template *Template
	// SkipMalformed logs and skips malformed lines instead of failing.
	SkipMalformed bool
	// CollapseEmptyTerms drops empty terms produced by repeated spaces.
	CollapseEmptyTerms bool
	Metrics            *metrics.Metrics
}

// Stats summarises one Run.
type Stats struct {
	Lines   int
	Written int
	Skipped int
	Terms   int
}

type Reformulator struct {
	tmpl     *Template
	skip     bool
	collapse bool
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(opts Options) *Reformulator {
	tmpl := opts.Template
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}
	return &Reformulator{
		tmpl:     tmpl,
		skip:     opts.SkipMalformed,
		collapse: opts.CollapseEmptyTerms,
		metrics:  opts.Metrics,
		logger:   logger.WithComponent("reformulator"),
	}
}

// FormatQuery joins one #WSUM group per term inside #AND(...).
func (r *Reformulator) FormatQuery(terms []string) string {
	var b strings.Builder
	b.WriteString("#AND(")
	for i, t := range terms {
		if i > 0 {
			b.WriteByte(' ')
		}
		r.tmpl.writeWSum(&b, t)
	}
	b.WriteByte(')')
	return b.String()
}

// FormatLine parses and rewrites a single input line, without the newline.
func (r *Reformulator) FormatLine(line string) (string, error) {
	rec, err := ParseLine(line, 1, r.collapse)
	if err != nil {
		return "", err
	}
	return rec.Index + ":" + r.FormatQuery(rec.Terms), nil
}

// Run reads lines from in and writes one entry per line to out, in input
// order. Unless SkipMalformed is set, the first malformed line stops the run
// and entries already written stay written.
func (r *Reformulator) Run(ctx context.Context, in io.Reader, out sink.Sink) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("reformulation cancelled after %d lines: %w", stats.Lines, err)
		}
		stats.Lines++
		rec, err := ParseLine(sc.Text(), stats.Lines, r.collapse)
		if err != nil {
			r.metrics.ObserveLine(metrics.StatusMalformed, 0)
			if r.skip && errors.Is(err, apperrors.ErrMalformedLine) {
				stats.Skipped++
				r.logger.Warn("skipping malformed line", "line", stats.Lines, "error", err)
				continue
			}
			return stats, err
		}
		r.metrics.ObserveLine(metrics.StatusOK, len(rec.Terms))

		entry := sink.Entry{
			Index:      rec.Index,
			Query:      rec.Query,
			Structured: r.FormatQuery(rec.Terms),
		}
		if err := out.Write(ctx, entry); err != nil {
			return stats, fmt.Errorf("line %d: %w", stats.Lines, err)
		}
		stats.Written++
		stats.Terms += len(rec.Terms)
		r.logger.Debug("query reformulated", "index", rec.Index, "terms", len(rec.Terms))
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading input after line %d: %w", stats.Lines, err)
	}
	return stats, nil
}
