package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestParseExporterKind(t *testing.T) {
	testcases := []struct {
		in      string
		kind    ExporterKind
		wantErr bool
	}{
		{"", NoneExporter, false},
		{"none", NoneExporter, false},
		{" Console ", ConsoleExporter, false},
		{"prometheus", PrometheusExporter, false},
		{"jaeger", NoneExporter, true},
	}
	for _, tc := range testcases {
		kind, err := ParseExporterKind(tc.in)
		require.Equal(t, tc.kind, kind)
		if tc.wantErr {
			require.Error(t, err)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := InitMetricsExporter(ConsoleExporter,
		WithConsoleWriter(buf),
		WithExportInterval(time.Hour),
		WithExportTimeout(time.Second),
	)
	require.NoError(t, err)

	counter, err := otel.Meter("xtree/test").Int64Counter("xtree.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "xtree.test.counter")
}

func TestPrometheusMetricsServer(t *testing.T) {
	shutdown, err := InitMetricsExporter(PrometheusExporter)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	counter, err := otel.Meter("xtree/test").Int64Counter("xtree.test.scraped")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	srv, err := NewMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	srv.Start(errCh)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "xtree_test_scraped")
}

func TestNoneExporter(t *testing.T) {
	shutdown, err := InitMetricsExporter(NoneExporter)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))
}

func TestStartProfile(t *testing.T) {
	dir := t.TempDir()
	for _, typ := range []ProfileType{CPUProfile, MemProfile} {
		path := filepath.Join(dir, typ.String()+".pprof")
		stop, err := StartProfile(typ, path)
		require.NoError(t, err)
		sum := 0
		for i := 0; i < 1_000_000; i++ {
			sum += i
		}
		require.NotZero(t, sum)
		require.NoError(t, stop())
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}

	_, err := StartProfile(CPUProfile, filepath.Join(dir, "missing", "cpu.pprof"))
	require.Error(t, err)
}
