package profiling

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/safearchive/zip"
	"github.com/stretchr/testify/require"
)

func TestCSVSink(t *testing.T) {
	_, err := NewCSVSink(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewCSVSink(file)
	require.ErrorContains(t, err, "is not a directory")

	dir := t.TempDir()
	sink, err := NewCSVSink(dir)
	require.NoError(t, err)
	require.Equal(t, dir, sink.Dir())

	res := Result{Subject: RedBlackSubject, Case: InsertionCase, Values: []int64{5, 7, 11}}
	require.Equal(t, "red-black_insertion.csv", res.FileName())
	require.NoError(t, sink.Write(context.Background(), res))
	data, err := os.ReadFile(filepath.Join(dir, res.FileName()))
	require.NoError(t, err)
	require.Equal(t, "index,result\n1,5\n2,7\n3,11\n", string(data))

	// Rewritten, not appended.
	res.Values = []int64{1}
	require.NoError(t, sink.Write(context.Background(), res))
	data, err = os.ReadFile(filepath.Join(dir, res.FileName()))
	require.NoError(t, err)
	require.Equal(t, "index,result\n1,1\n", string(data))
	require.NoError(t, sink.Close())
}

func TestSQLiteSink(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	ctx := context.Background()

	sink := NewSQLiteSink(db, "run-a")
	require.NoError(t, sink.Write(ctx, Result{Subject: SimpleSubject, Case: DepthCase, Values: []int64{1, 2, 3}}))
	require.NoError(t, sink.Write(ctx, Result{Subject: RedBlackSubject, Case: DepthCase, Values: []int64{1, 2, 2, 3}}))
	require.NoError(t, sink.Write(ctx, Result{Subject: SimpleSubject, Case: EraseCase, Values: []int64{100}}))
	require.NoError(t, sink.Write(ctx, Result{Subject: SimpleSubject, Case: EraseCase}))

	// Another run in the same table does not leak into run-a.
	other := NewSQLiteSink(db, "run-b")
	require.NoError(t, other.Write(ctx, Result{Subject: SimpleSubject, Case: DepthCase, Values: []int64{50}}))

	var count int64
	require.NoError(t, db.Model(&ProfResult{}).Where("run_id = ?", "run-a").Count(&count).Error)
	require.Equal(t, int64(8), count)

	var last ProfResult
	require.NoError(t, db.Where("run_id = ? AND subject = ? AND case_name = ?", "run-a", RedBlackSubject, DepthCase).
		Order("idx DESC").First(&last).Error)
	require.Equal(t, 4, last.Idx)
	require.Equal(t, int64(3), last.Result)

	avgs, err := sink.Averages(ctx, DepthCase)
	require.NoError(t, err)
	require.Equal(t, map[string]float64{SimpleSubject: 2, RedBlackSubject: 2}, avgs)

	avgs, err = other.Averages(ctx, DepthCase)
	require.NoError(t, err)
	require.Equal(t, map[string]float64{SimpleSubject: 50}, avgs)

	require.NoError(t, sink.Close())
}

func readZip(t *testing.T, path string) map[string]string {
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()
	entries := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(data)
	}
	return entries
}

func TestArchiveResults(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a.csv", "a1")
	write("b.csv", "b1")

	n, err := ArchiveResults(dir, "results.zip", []string{"a.csv", "b.csv"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, map[string]string{"a.csv": "a1", "b.csv": "b1"}, readZip(t, filepath.Join(dir, "results.zip")))

	write("a.csv", "a2")
	write("c.csv", "c1")
	n, err = ArchiveResults(dir, "results.zip", []string{"a.csv", "c.csv"})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, map[string]string{"a.csv": "a2", "b.csv": "b1", "c.csv": "c1"}, readZip(t, filepath.Join(dir, "results.zip")))

	// A missing file keeps the previous archive untouched.
	_, err = ArchiveResults(dir, "results.zip", []string{"missing.csv"})
	require.Error(t, err)
	require.Len(t, readZip(t, filepath.Join(dir, "results.zip")), 3)

	_, err = ArchiveResults(dir, "escape.zip", []string{"../a.csv"})
	require.Error(t, err)

	names, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	sort.Strings(names)
	require.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.csv"),
		filepath.Join(dir, "results.zip"),
	}, names)
}
