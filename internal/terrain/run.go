package terrain

import (
	"context"
	"fmt"
	"time"

	"polyterrain/internal/config"
	"polyterrain/internal/profiling"
)

// Status is the state of a Run.
type Status uint8

const (
	InProgress Status = iota
	Done
	Failed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Run is a resumable generation run. Step does a bounded amount of work so
// a host loop can spread a run over frames. A Run is not safe for
// concurrent use.
type Run struct {
	gc     *GenerationContext
	ctx    context.Context
	cancel context.CancelFunc
	stages []stage
	next   int
	status Status
	err    error
	start  time.Time
}

// NewRun validates p and prepares a run. Nothing is generated until Step.
func NewRun(parent context.Context, p config.Params, opts Options) (*Run, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	gc, err := newContext(p, opts)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	return &Run{
		gc:     gc,
		ctx:    ctx,
		cancel: cancel,
		stages: pipeline(p),
		start:  time.Now(),
	}, nil
}

// Context returns the run's output so far.
func (r *Run) Context() *GenerationContext { return r.gc }

// Status returns the current status.
func (r *Run) Status() Status { return r.status }

// Err returns the error that stopped the run, if any.
func (r *Run) Err() error { return r.err }

// Stage names the stage the next Step will work on, or "" when finished.
func (r *Run) Stage() string {
	if r.next >= len(r.stages) || r.status != InProgress {
		return ""
	}
	return r.stages[r.next].name
}

// Progress returns completed and total stage counts.
func (r *Run) Progress() (done, total int) { return r.next, len(r.stages) }

// Cancel stops the run. The next Step reports Cancelled.
func (r *Run) Cancel() { r.cancel() }

// Step works until the budget is spent or the run ends. A budget <= 0
// runs to completion. Whole non-placement stages always finish once
// started, so a step may overrun its budget by one stage.
func (r *Run) Step(budget time.Duration) Status {
	if r.status != InProgress {
		return r.status
	}
	var deadline time.Time
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	for r.next < len(r.stages) {
		if err := r.ctx.Err(); err != nil {
			return r.finish(Cancelled, err)
		}
		st := r.stages[r.next]
		stop := profiling.Track("terrain." + st.name)
		done, err := st.fn(r.ctx, r.gc, deadline)
		stop()
		if err != nil {
			if r.ctx.Err() != nil {
				return r.finish(Cancelled, r.ctx.Err())
			}
			return r.finish(Failed, fmt.Errorf("terrain: stage %s: %w", st.name, err))
		}
		if done {
			r.next++
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
	}
	if r.next >= len(r.stages) {
		return r.finish(Done, nil)
	}
	return InProgress
}

func (r *Run) finish(s Status, err error) Status {
	r.status = s
	r.err = err
	r.cancel()
	switch s {
	case Done:
		r.gc.Log.Printf("terrain: seed %d done in %s (%d instances) [%s]",
			r.gc.Params.Seed, time.Since(r.start).Round(time.Millisecond), len(r.gc.Instances), profiling.TopN(5))
	case Cancelled:
		r.gc.Log.Printf("terrain: seed %d cancelled at %s", r.gc.Params.Seed, r.stages[min(r.next, len(r.stages)-1)].name)
	default:
		r.gc.Log.Printf("terrain: seed %d failed: %v", r.gc.Params.Seed, err)
	}
	return s
}

// Generate runs the whole pipeline and returns its output.
func Generate(ctx context.Context, p config.Params, opts Options) (*GenerationContext, error) {
	r, err := NewRun(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if s := r.Step(0); s != Done {
		return r.gc, r.Err()
	}
	return r.gc, nil
}
