package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/profiling"
	"github.com/benz9527/xtree/xlog"
)

type banner struct{}

func (banner) PlainText() string {
	return `
       _
__  __| |_ _ __ ___  ___
\ \/ /| __| '__/ _ \/ _ \
 >  < | |_| | |  __/  __/
/_/\_\ \__|_|  \___|\___|  prof
`
}

func (banner) JSON() string {
	return `{"app":"xtree-prof"}`
}

func newRootCmd() *cobra.Command {
	cfg := profiling.DefaultConfig()
	var plainText bool
	cmd := &cobra.Command{
		Use:           "xtree-prof",
		Short:         "Profile the unbalanced and red-black trees",
		Long:          "Runs the insertion, depth and erase cases on every tree and writes one <subject>_<case>.csv per pair.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []xlog.XLoggerOption{
				xlog.WithXLoggerStdOutWriter(),
				xlog.WithXLoggerContextFieldExtract(profiling.SubjectField),
				xlog.WithXLoggerContextFieldExtract(profiling.CaseField),
			}
			if len(cfg.LogLevel) > 0 {
				opts = append(opts, xlog.WithXLoggerLevel(xlog.ParseLogLevel(cfg.LogLevel)))
			}
			if plainText {
				opts = append(opts, xlog.WithXLoggerEncoder(xlog.PlainText))
			}
			logger := xlog.NewXLogger(opts...)
			defer func() { _ = logger.Sync() }()
			logger.Banner(banner{})

			results, err := profiling.Execute(cmd.Context(), cfg, logger)
			if err != nil {
				logger.ErrorStack(err, "profiling failed")
				return err
			}
			logger.Info(fmt.Sprintf("%d results written to %s", len(results), cfg.Output))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Size, "size", cfg.Size, "number of keys per case")
	flags.IntVar(&cfg.Iters, "iters", cfg.Iters, "repetitions averaged by the timing cases")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed of the shuffled input")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "directory of the CSV results")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent jobs, timings are only comparable with 1")
	flags.StringVar(&cfg.SQLite, "sqlite", cfg.SQLite, "also store the samples in this sqlite database")
	flags.StringVar(&cfg.Archive, "archive", cfg.Archive, "zip the CSV results into this file of the output directory")
	flags.StringVar(&cfg.Metrics, "metrics", cfg.Metrics, "metrics exporter: none, console or prometheus")
	flags.DurationVar(&cfg.MetricsInterval, "metrics-interval", cfg.MetricsInterval, "export interval of the console exporter")
	flags.StringVar(&cfg.PrometheusAddr, "prometheus-addr", cfg.PrometheusAddr, "listen address of the /metrics endpoint")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR, falls back to $XLOG_LVL")
	flags.BoolVar(&plainText, "plain", false, "plain text logs instead of JSON")
	flags.StringVar(&cfg.CPUProfile, "cpuprofile", cfg.CPUProfile, "write a cpu profile to this file")
	flags.StringVar(&cfg.MemProfile, "memprofile", cfg.MemProfile, "write a heap profile to this file")
	flags.StringSliceVar(&cfg.Subjects, "subjects", cfg.Subjects,
		fmt.Sprintf("trees to profile (%s,%s), all by default", profiling.SimpleSubject, profiling.RedBlackSubject))
	flags.StringSliceVar(&cfg.Cases, "cases", cfg.Cases, "cases to run, all by default")

	cmd.AddCommand(newExportersCmd())
	return cmd
}

func newExportersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exporters",
		Short: "List the supported metrics exporters",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, kind := range []observability.ExporterKind{
				observability.NoneExporter,
				observability.ConsoleExporter,
				observability.PrometheusExporter,
			} {
				cmd.Println(kind)
			}
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
