package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const lineA = "1:#AND(#WSUM(0.1 a.url 0.1 a.keywords 0.1 a.title 0.9 a.body 0.1 a.inlink))\n"

// testConfig points the default config at files under a fresh temp dir.
// A nil input leaves the input file absent.
func testConfig(t *testing.T, input *string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Reformat.InputPath = filepath.Join(dir, "queries.txt")
	cfg.Reformat.OutputPath = filepath.Join(dir, "queriesNew.txt")
	if input != nil {
		if err := os.WriteFile(cfg.Reformat.InputPath, []byte(*input), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func readOutput(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Reformat.OutputPath)
	if err != nil {
		t.Fatalf("output file should exist: %v", err)
	}
	return string(data)
}

func sinkWrites(t *testing.T, reg *prometheus.Registry, sinkName, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "reformulate_sink_writes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, sinkName, status) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, sinkName, status string) bool {
	var gotSink, gotStatus string
	for _, lp := range m.GetLabel() {
		switch lp.GetName() {
		case "sink":
			gotSink = lp.GetValue()
		case "status":
			gotStatus = lp.GetValue()
		}
	}
	return gotSink == sinkName && gotStatus == status
}

func strp(s string) *string { return &s }

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		input      *string
		wantCode   int
		wantOutput string
		wantWrites float64
	}{
		{
			name:       "empty input leaves empty output",
			input:      strp(""),
			wantCode:   apperrors.ExitOK,
			wantOutput: "",
		},
		{
			name:       "well formed input",
			input:      strp("1:a\n"),
			wantCode:   apperrors.ExitOK,
			wantOutput: lineA,
			wantWrites: 1,
		},
		{
			name:       "malformed line keeps earlier output",
			input:      strp("1:a\nbad\n3:never\n"),
			wantCode:   apperrors.ExitMalformed,
			wantOutput: lineA,
			wantWrites: 1,
		},
		{
			name:       "missing input still creates output",
			input:      nil,
			wantCode:   apperrors.ExitInput,
			wantOutput: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.input)
			reg := prometheus.NewRegistry()

			err := run(context.Background(), cfg, reg)
			if code := apperrors.ExitCode(err); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (err=%v)", code, tt.wantCode, err)
			}
			if got := readOutput(t, cfg); got != tt.wantOutput {
				t.Errorf("output = %q, want %q", got, tt.wantOutput)
			}
			if got := sinkWrites(t, reg, "file", "success"); got != tt.wantWrites {
				t.Errorf("file sink writes = %v, want %v", got, tt.wantWrites)
			}
		})
	}
}

func TestRunTruncatesExistingOutput(t *testing.T) {
	cfg := testConfig(t, strp("1:a\n"))
	if err := os.WriteFile(cfg.Reformat.OutputPath, []byte("stale\nstale\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), cfg, prometheus.NewRegistry()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := readOutput(t, cfg); got != lineA {
		t.Errorf("output = %q", got)
	}
}
