package profiling

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

// Result is the outcome of one case performed on one subject.
type Result struct {
	Subject string
	Case    string
	Kind    CaseKind
	Iters   int
	Values  []int64
	Elapsed time.Duration
}

func (r Result) FileName() string {
	return r.Subject + "_" + r.Case + ".csv"
}

// Sink persists results. Write may be called from several workers.
type Sink interface {
	Write(ctx context.Context, res Result) error
	Close() error
}

// CSVSink writes one "<subject>_<case>.csv" file per result with the
// header "index,result" and 1-based indexes.
type CSVSink struct {
	dir string
}

func NewCSVSink(dir string) (*CSVSink, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "output directory "+dir)
	}
	if !info.IsDir() {
		return nil, infra.NewErrorStack("output path " + dir + " is not a directory")
	}
	return &CSVSink{dir: dir}, nil
}

func (s *CSVSink) Dir() string {
	return s.dir
}

func (s *CSVSink) Write(_ context.Context, res Result) (err error) {
	f, err := safeopen.OpenFileBeneath(s.dir, res.FileName(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "open "+res.FileName())
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err = w.Write([]string{"index", "result"}); err != nil {
		return err
	}
	for i, v := range res.Values {
		if err = w.Write([]string{strconv.Itoa(i + 1), strconv.FormatInt(v, 10)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVSink) Close() error {
	return nil
}
