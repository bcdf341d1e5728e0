package profiling

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

// Config is the profiler configuration, filled from the command line.
type Config struct {
	Size            int
	Iters           int
	Seed            uint64
	Output          string
	Workers         int
	SQLite          string
	Archive         string
	Metrics         string
	MetricsInterval time.Duration
	PrometheusAddr  string
	LogLevel        string
	CPUProfile      string
	MemProfile      string
	Subjects        []string
	Cases           []string
}

func DefaultConfig() Config {
	return Config{
		Size:            10000,
		Iters:           50,
		Seed:            DefaultSeed,
		Output:          "results",
		Workers:         1,
		Metrics:         string(observability.NoneExporter),
		MetricsInterval: 10 * time.Second,
		PrometheusAddr:  ":9464",
	}
}

func (cfg Config) Validate() error {
	var merr error
	if cfg.Size <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("size must be positive, got %d", cfg.Size))
	}
	if cfg.Iters <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("iters must be positive, got %d", cfg.Iters))
	}
	if cfg.Workers <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("workers must be positive, got %d", cfg.Workers))
	}
	if len(strings.TrimSpace(cfg.Output)) == 0 {
		merr = multierr.Append(merr, errors.New("empty output directory"))
	}
	if _, err := observability.ParseExporterKind(cfg.Metrics); err != nil {
		merr = multierr.Append(merr, err)
	}
	if cfg.MetricsInterval <= 0 {
		merr = multierr.Append(merr, fmt.Errorf("invalid metrics interval %s", cfg.MetricsInterval))
	}
	if merr != nil {
		return infra.WrapErrorStackWithMessage(merr, "[profiling] invalid config")
	}
	return nil
}

// Sinks groups every configured result sink.
type Sinks struct {
	CSV    *CSVSink
	SQLite *SQLiteSink
}

func (s Sinks) All() []Sink {
	sinks := []Sink{s.CSV}
	if s.SQLite != nil {
		sinks = append(sinks, s.SQLite)
	}
	return sinks
}

// Module provides the runner and everything it writes to. The caller
// supplies a Config and an xlog.XLogger.
var Module = fx.Module("profiling",
	fx.Provide(
		newSinks,
		newRunnerFromConfig,
	),
	fx.Invoke(startMetrics),
)

// NewApp builds the profiler application graph. The targets are
// populated once the graph is resolved, see fx.Populate.
func NewApp(cfg Config, logger xlog.XLogger, targets ...any) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(func() xlog.XLogger { return logger }),
		fx.WithLogger(func(l xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(l)
		}),
		Module,
		fx.Populate(targets...),
	)
}

func newSinks(lc fx.Lifecycle, cfg Config, logger xlog.XLogger) (Sinks, error) {
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return Sinks{}, infra.WrapErrorStackWithMessage(err, "create output directory "+cfg.Output)
	}
	csvSink, err := NewCSVSink(cfg.Output)
	if err != nil {
		return Sinks{}, err
	}
	sinks := Sinks{CSV: csvSink}
	if len(cfg.SQLite) > 0 {
		db, err := OpenSQLite(cfg.SQLite, logger)
		if err != nil {
			return Sinks{}, err
		}
		gen, err := id.NewNanoID(21)
		if err != nil {
			return Sinks{}, err
		}
		sinks.SQLite = NewSQLiteSink(db, gen())
	}
	lc.Append(fx.StopHook(func() error {
		var merr error
		for _, s := range sinks.All() {
			merr = multierr.Append(merr, s.Close())
		}
		return merr
	}))
	return sinks, nil
}

func newRunnerFromConfig(cfg Config, logger xlog.XLogger, sinks Sinks) (*Runner, error) {
	subjects, err := SelectSubjects(DefaultSubjects(), cfg.Subjects)
	if err != nil {
		return nil, err
	}
	cases, err := SelectCases(DefaultCases(cfg.Size, cfg.Iters, cfg.Seed), cfg.Cases)
	if err != nil {
		return nil, err
	}
	return NewRunner(
		WithRunnerSubjects(subjects...),
		WithRunnerCases(cases...),
		WithRunnerSinks(sinks.All()...),
		WithRunnerWorkers(cfg.Workers),
		WithRunnerLogger(logger),
	)
}

// startMetrics installs the exporter, the process stats and, for the
// prometheus exporter, the scrape endpoint.
func startMetrics(lc fx.Lifecycle, cfg Config, logger xlog.XLogger) error {
	kind, err := observability.ParseExporterKind(cfg.Metrics)
	if err != nil {
		return err
	}
	if kind == observability.NoneExporter {
		return nil
	}
	shutdown, err := observability.InitMetricsExporter(kind,
		observability.WithExportInterval(cfg.MetricsInterval),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(ctx, "xtree-prof", nil)

	var server *observability.MetricsServer
	if kind == observability.PrometheusExporter {
		if server, err = observability.NewMetricsServer(cfg.PrometheusAddr); err != nil {
			cancel()
			return err
		}
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if server == nil {
				return nil
			}
			errCh := make(chan error, 1)
			server.Start(errCh)
			go func() {
				select {
				case err := <-errCh:
					logger.Error(err, "metrics server stopped")
				case <-ctx.Done():
				}
			}()
			logger.Info("metrics served on " + server.Addr())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			var merr error
			if server != nil {
				merr = multierr.Append(merr, server.Shutdown(ctx))
			}
			return multierr.Append(merr, shutdown(ctx))
		},
	})
	return nil
}

// Execute runs a whole profiling session: it starts the application
// graph, performs the cases under the optional pprof profiles, archives
// the CSV files and reports the sqlite averages.
func Execute(ctx context.Context, cfg Config, logger xlog.XLogger) (results []Result, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		runner *Runner
		sinks  Sinks
	)
	app := NewApp(cfg, logger, &runner, &sinks)
	if err = app.Err(); err != nil {
		return nil, err
	}
	if err = app.Start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
	}()

	logger.Info("profiling environment", zap.Object("env", observability.DetectEnvironment()))
	stop, err := startProfiles(cfg)
	if err != nil {
		return nil, err
	}
	results, err = runner.Run(ctx)
	err = multierr.Append(err, stop())
	if err != nil {
		return results, err
	}

	if len(cfg.Archive) > 0 {
		files := lo.Map(results, func(res Result, _ int) string { return res.FileName() })
		n, aerr := ArchiveResults(cfg.Output, cfg.Archive, files)
		if aerr != nil {
			return results, aerr
		}
		logger.Info("results archived", zap.String("archive", cfg.Archive), zap.Int("entries", n))
	}
	if sinks.SQLite != nil {
		for _, caseName := range lo.Uniq(lo.Map(results, func(res Result, _ int) string { return res.Case })) {
			avgs, aerr := sinks.SQLite.Averages(ctx, caseName)
			if aerr != nil {
				return results, aerr
			}
			logger.Info("case averages", zap.String(CaseField, caseName), zap.Any("bySubject", avgs))
		}
	}
	return results, nil
}

func startProfiles(cfg Config) (func() error, error) {
	stops := make([]func() error, 0, 2)
	stopAll := func() error {
		var merr error
		for _, stop := range stops {
			merr = multierr.Append(merr, stop())
		}
		return merr
	}
	for typ, path := range map[observability.ProfileType]string{
		observability.CPUProfile: cfg.CPUProfile,
		observability.MemProfile: cfg.MemProfile,
	} {
		if len(path) == 0 {
			continue
		}
		stop, err := observability.StartProfile(typ, path)
		if err != nil {
			return nil, multierr.Append(err, stopAll())
		}
		stops = append(stops, stop)
	}
	return stopAll, nil
}
