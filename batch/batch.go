// Package batch recolors a list of images, isolating the failure of one
// image from the others.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"factory/codec"
	"factory/palette"
	"factory/recolor"
	"factory/report"

	"golang.org/x/sync/errgroup"
)

type Status int

const (
	// StatusNothingToDo means no job was attempted.
	StatusNothingToDo Status = iota
	StatusSuccess
	StatusPartial
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusNothingToDo:
		return "nothing to do"
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial success"
	case StatusFailure:
		return "failure"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result summarizes a run. Failures and Skipped follow job input order.
type Result struct {
	Succeeded int
	Failed    int
	Failures  []Failure
	// Skipped lists the sources of jobs never started because the run was
	// cancelled.
	Skipped []string
}

func (r Result) Status() Status {
	switch {
	case r.Succeeded+r.Failed == 0:
		return StatusNothingToDo
	case r.Failed == 0:
		return StatusSuccess
	case r.Succeeded > 0:
		return StatusPartial
	default:
		return StatusFailure
	}
}

// Interrupted reports whether cancellation kept some jobs from starting.
func (r Result) Interrupted() bool {
	return len(r.Skipped) > 0
}

// Err joins every failure, or returns nil when none occurred.
func (r Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Runner processes jobs: decode, recolor, encode.
type Runner struct {
	Codec  codec.Codec
	Sink   report.Sink
	Logger *slog.Logger
	// Concurrency is the number of jobs in flight; 1 when less than 1.
	Concurrency int
	Engine      recolor.Options
}

type outcome struct {
	stage   Stage
	failure *Failure
}

// Run processes jobs against p and returns once every started job reached a
// terminal stage. Once ctx is done no further job starts; jobs already
// running still finish writing their destination.
func (r *Runner) Run(ctx context.Context, p *palette.Palette, jobs []Job) Result {
	logger := r.logger()
	limit := max(r.Concurrency, 1)
	logger.Info("running batch", "jobs", len(jobs), "concurrency", limit, "colors", p.Len(),
		"parallel", r.Engine.Parallel, "metric", r.Engine.Metric)

	outcomes := make([]outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.runJob(logger.With("file", job.Source), job, p)
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, o := range outcomes {
		switch o.stage {
		case Succeeded:
			res.Succeeded++
		case Failed:
			res.Failed++
			res.Failures = append(res.Failures, *o.failure)
		default:
			res.Skipped = append(res.Skipped, jobs[i].Source)
		}
	}

	if res.Interrupted() {
		logger.Warn("batch interrupted", "skipped", len(res.Skipped))
	}
	r.sink().Report(report.Event{
		Kind:      report.Summary,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Skipped:   len(res.Skipped),
	})
	return res
}

func (r *Runner) runJob(logger *slog.Logger, job Job, p *palette.Palette) (res outcome) {
	sink := r.sink()
	stage := Pending

	fail := func(kind FailureKind, err error) outcome {
		f := &Failure{Path: job.Source, Kind: kind, Stage: stage, Err: err}
		sink.Report(report.Event{
			Kind:        report.Failed,
			Path:        job.Source,
			Destination: job.Destination,
			Failure:     kind.String(),
			Reason:      err,
		})
		return outcome{stage: Failed, failure: f}
	}

	defer func() {
		if v := recover(); v != nil {
			logger.Error("recolor job panicked", "stage", stage, "panic", v, "stack", string(debug.Stack()))
			res = fail(KindInternal, fmt.Errorf("%w: panic: %v", recolor.ErrPrecondition, v))
		}
	}()

	sink.Report(report.Event{Kind: report.Started, Path: job.Source, Destination: job.Destination})

	stage = Decoding
	img, err := r.Codec.Decode(job.Source)
	if err != nil {
		return fail(KindIO, err)
	}

	stage = Recoloring
	out, err := recolor.Apply(img, p, r.Engine)
	if err != nil {
		if errors.Is(err, recolor.ErrPrecondition) {
			logger.Error("recolor contract violated", "error", err)
		}
		return fail(KindInternal, err)
	}

	stage = Encoding
	if err = r.Codec.Encode(out, job.Destination); err != nil {
		return fail(KindIO, err)
	}

	sink.Report(report.Event{Kind: report.Succeeded, Path: job.Source, Destination: job.Destination})
	return outcome{stage: Succeeded}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) sink() report.Sink {
	if r.Sink == nil {
		return report.Discard
	}
	return r.Sink
}
