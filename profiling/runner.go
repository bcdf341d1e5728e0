package profiling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/hrtime"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

// Context fields attached to every job's log records.
const (
	SubjectField = "subject"
	CaseField    = "case"
)

// Runner performs every case on every subject. Each (subject, case)
// pair is a job with a fresh tree, jobs are spread over a worker pool.
type Runner struct {
	subjects []Subject
	cases    []Case
	sinks    []Sink
	workers  int
	clock    hrtime.Clock
	logger   xlog.XLogger
	stats    *runnerStats
}

type RunnerOption func(r *Runner) error

func WithRunnerSubjects(subjects ...Subject) RunnerOption {
	return func(r *Runner) error {
		if len(subjects) == 0 {
			return infra.NewErrorStack("[profiling] no subjects")
		}
		r.subjects = subjects
		return nil
	}
}

func WithRunnerCases(cases ...Case) RunnerOption {
	return func(r *Runner) error {
		if len(cases) == 0 {
			return infra.NewErrorStack("[profiling] no cases")
		}
		r.cases = cases
		return nil
	}
}

func WithRunnerSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) error {
		r.sinks = append(r.sinks, sinks...)
		return nil
	}
}

// WithRunnerWorkers sets the pool size. Timing results are only
// comparable with a single worker.
func WithRunnerWorkers(workers int) RunnerOption {
	return func(r *Runner) error {
		if workers <= 0 {
			return infra.NewErrorStack(fmt.Sprintf("[profiling] invalid workers %d", workers))
		}
		r.workers = workers
		return nil
	}
}

func WithRunnerClock(clock hrtime.Clock) RunnerOption {
	return func(r *Runner) error {
		if clock == nil {
			return infra.NewErrorStack("[profiling] nil clock")
		}
		r.clock = clock
		return nil
	}
}

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(r *Runner) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		workers: 1,
		clock:   hrtime.SysClock,
	}
	for _, o := range opts {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	if len(r.cases) == 0 {
		return nil, infra.NewErrorStack("[profiling] no cases")
	}
	if len(r.subjects) == 0 {
		r.subjects = DefaultSubjects()
	}
	if r.logger == nil {
		r.logger = NewRunnerLogger("INFO")
	}
	r.stats = newRunnerStats()
	return r, nil
}

// NewRunnerLogger builds a logger which prints the job's subject and
// case from the context.
func NewRunnerLogger(level string) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.ParseLogLevel(level)),
		xlog.WithXLoggerStdOutWriter(),
		xlog.WithXLoggerContextFieldExtract(SubjectField),
		xlog.WithXLoggerContextFieldExtract(CaseField),
	)
}

// Run blocks until all jobs are done. Results come back in subject
// major order regardless of the worker count. A failed job does not
// stop the others, all failures are returned together.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	pool, err := ants.NewPool(r.workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(r.logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		merr    error
		results = make([]Result, len(r.subjects)*len(r.cases))
		done    = make([]bool, len(results))
	)
	for si, s := range r.subjects {
		for ci, c := range r.cases {
			idx, s, c := si*len(r.cases)+ci, s, c
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				res, err := r.perform(ctx, s, c)
				lock.Lock()
				defer lock.Unlock()
				if err != nil {
					merr = multierr.Append(merr, err)
					return
				}
				results[idx], done[idx] = res, true
			})
			if err != nil {
				wg.Done()
				lock.Lock()
				merr = multierr.Append(merr, infra.WrapErrorStack(err))
				lock.Unlock()
			}
		}
	}
	wg.Wait()

	out := make([]Result, 0, len(results))
	for i, res := range results {
		if done[i] {
			out = append(out, res)
		}
	}
	if err := ctx.Err(); err != nil {
		merr = multierr.Append(merr, err)
	}
	return out, merr
}

func (r *Runner) perform(ctx context.Context, s Subject, c Case) (res Result, err error) {
	ctx = context.WithValue(ctx, xlog.ContextKey(SubjectField), s.Name)
	ctx = context.WithValue(ctx, xlog.ContextKey(CaseField), c.Name)
	defer func() {
		if p := recover(); p != nil {
			perr, ok := p.(error)
			if !ok {
				perr = fmt.Errorf("%v", p)
			}
			err = infra.WrapErrorStackWithMessage(perr, "[profiling] "+s.Name+"/"+c.Name+" panicked")
			r.logger.ErrorContext(ctx, err, "case failed")
		}
	}()

	r.logger.DebugContext(ctx, "case start", zap.Int("iters", c.iterations()))
	var values []int64
	elapsed := hrtime.Measure(r.clock, func() {
		values, err = c.Perform(ctx, s.New(), r.clock)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, err, "case aborted")
		return Result{}, err
	}
	res = Result{
		Subject: s.Name,
		Case:    c.Name,
		Kind:    c.Kind,
		Iters:   c.iterations(),
		Values:  values,
		Elapsed: elapsed,
	}
	r.stats.record(ctx, res)

	for _, sink := range r.sinks {
		if serr := sink.Write(ctx, res); serr != nil {
			err = multierr.Append(err, serr)
		}
	}
	if err != nil {
		r.logger.ErrorContext(ctx, err, "case results not saved")
		return res, err
	}

	fields := []zap.Field{
		zap.Int("samples", len(values)),
		zap.Duration("elapsed", elapsed.Round(time.Microsecond)),
	}
	if rss, rerr := observability.ProcessRSS(); rerr == nil {
		fields = append(fields, zap.String("rss", humanize.Bytes(rss)))
	}
	r.logger.InfoContext(ctx, "case done", fields...)
	return res, nil
}
