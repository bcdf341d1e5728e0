package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type ExporterKind string

const (
	NoneExporter       ExporterKind = "none"
	ConsoleExporter    ExporterKind = "console"
	PrometheusExporter ExporterKind = "prometheus"
)

func ParseExporterKind(kind string) (ExporterKind, error) {
	switch k := ExporterKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "", NoneExporter:
		return NoneExporter, nil
	case ConsoleExporter, PrometheusExporter:
		return k, nil
	default:
	}
	return NoneExporter, infra.NewErrorStack("unknown metrics exporter " + kind)
}

type exporterCfg struct {
	interval time.Duration
	timeout  time.Duration
	writer   io.Writer
}

type ExporterOption func(cfg *exporterCfg)

func WithExportInterval(interval time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

func WithExportTimeout(timeout time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithConsoleWriter redirects the console exporter, stdout by default.
func WithConsoleWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.writer = w
	}
}

// InitMetricsExporter installs the global meter provider. The returned
// callback flushes and shuts the provider down.
func InitMetricsExporter(kind ExporterKind, opts ...ExporterOption) (func(ctx context.Context) error, error) {
	cfg := &exporterCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
	}
	for _, o := range opts {
		o(cfg)
	}
	switch kind {
	case ConsoleExporter:
		var stdOpts []stdoutmetric.Option
		if cfg.writer != nil {
			stdOpts = append(stdOpts, stdoutmetric.WithWriter(cfg.writer))
		}
		return newConsoleMetricsExporter(cfg.interval, cfg.timeout, stdOpts...)
	case PrometheusExporter:
		return newPrometheusMetricsExporter()
	default:
	}
	return func(context.Context) error { return nil }, nil
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// MetricsServer exposes the default prometheus registry on /metrics.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

func NewMetricsServer(addr string) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "listen metrics address "+addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &MetricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}, nil
}

func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Start serves in the background until Shutdown.
func (s *MetricsServer) Start(errCh chan<- error) {
	go func() {
		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) && errCh != nil {
			errCh <- err
		}
	}()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
