package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/reformulator"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/resilience"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	inPath := flag.String("in", "", "input query file, overrides config")
	outPath := flag.String("out", "", "output query file, overrides config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
	if *inPath != "" {
		cfg.Reformat.InputPath = *inPath
	}
	if *outPath != "" {
		cfg.Reformat.OutputPath = *outPath
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, strconv.FormatInt(time.Now().UnixNano(), 36))

	if err := run(ctx, cfg, prometheus.DefaultRegisterer); err != nil {
		logger.FromContext(ctx).Error("reformulation failed", "error", err)
		stop()
		os.Exit(apperrors.ExitCode(err))
	}
}

// run executes one reformulation and returns an error whose exit code is
// given by apperrors.ExitCode. Metrics are registered with reg.
func run(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	tmpl, err := reformulator.NewTemplate(cfg.Reformat.Weights, cfg.Reformat.Fields)
	if err != nil {
		return err
	}

	// The output file is created before anything else can fail on input.
	out, err := buildSinks(cfg, m)
	if err != nil {
		return err
	}

	r := reformulator.New(reformulator.Options{
		Template:           tmpl,
		SkipMalformed:      cfg.Reformat.OnMalformed == config.OnMalformedSkip,
		CollapseEmptyTerms: cfg.Reformat.EmptyTerms == config.EmptyTermsCollapse,
		Metrics:            m,
	})

	log.Info("reformulating queries",
		"input", cfg.Reformat.InputPath,
		"output", cfg.Reformat.OutputPath,
		"fields", len(cfg.Reformat.Fields),
		"on_malformed", cfg.Reformat.OnMalformed,
	)
	stats, runErr := r.RunFile(ctx, cfg.Reformat.InputPath, out)

	// Lines written before a failure are kept, so flush in both cases.
	flushErr := out.Flush(context.WithoutCancel(ctx))
	closeErr := out.Close()
	m.ObserveRun(time.Since(start))

	log.Info("reformulation finished",
		"lines", stats.Lines,
		"written", stats.Written,
		"skipped", stats.Skipped,
		"terms", stats.Terms,
		"duration", time.Since(start),
	)
	switch {
	case runErr != nil:
		return runErr
	case flushErr != nil:
		return flushErr
	default:
		return closeErr
	}
}

// buildSinks opens the output file first, then any enabled mirrors. A
// mirror that cannot connect fails the run before input is read.
func buildSinks(cfg *config.Config, m *metrics.Metrics) (*sink.Multi, error) {
	file, err := sink.NewFile(cfg.Reformat.OutputPath)
	if err != nil {
		return nil, err
	}
	sinks := []sink.Sink{file}
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	}
	mirror := func(s sink.Sink) {
		sinks = append(sinks, sink.WithRetry(s, retryCfg, cfg.Retry.AttemptTimeout))
		slog.Info("mirror sink enabled", "sink", s.Name())
	}
	fail := func(name string, err error) (*sink.Multi, error) {
		sink.NewMulti(sinks...).Close()
		return nil, apperrors.Newf(apperrors.ErrSinkUnavailable, apperrors.ExitUnavailable, "%s: %v", name, err)
	}

	if cfg.Kafka.Enabled {
		mirror(sink.NewKafka(kafka.NewProducer(cfg.Kafka), 0))
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return fail("redis", err)
		}
		mirror(sink.NewRedis(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, 0))
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return fail("postgres", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = client.EnsureTable(ctx)
		cancel()
		if err != nil {
			client.Close()
			return fail("postgres", err)
		}
		mirror(sink.NewPostgres(client, 0))
	}
	return sink.NewMulti(sinks...).WithObserver(m.ObserveSinkWrite), nil
}
