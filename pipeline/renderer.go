package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/effects"
	"github.com/soypat/pixfx/histogram"
)

// Options configures a [Renderer].
type Options struct {
	// Applier runs the pixel transform. Nil uses the CPU transformer.
	Applier Applier
	// Budget is the render duration above which a warning is logged.
	// Zero disables the warning.
	Budget time.Duration
}

type request struct {
	seq    uint64
	params effects.Params
}

// Renderer recomputes the pipeline on a background goroutine whenever new
// parameters are submitted. Only the most recent submission is observable:
// pending submissions are replaced by newer ones and a result whose
// parameters were superseded while it was being computed is dropped.
//
// Submit may be called from any goroutine. Run must be called exactly once.
type Renderer struct {
	src     *pixfx.Buffer
	opts    Options
	latency *LatencyStats
	started atomic.Bool

	mu      sync.Mutex
	seq     uint64
	pending *request

	wake    chan struct{}
	results chan Result
}

// NewRenderer creates a renderer for the session source buffer src.
func NewRenderer(src *pixfx.Buffer, opts Options) (*Renderer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", pixfx.ErrInvalidBuffer)
	}
	if err := src.Dims().Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		src:     src,
		opts:    opts,
		latency: newLatencyStats(),
		wake:    make(chan struct{}, 1),
		results: make(chan Result, 1),
	}, nil
}

// Submit records p as the latest parameter snapshot and returns its
// sequence number. p is copied; later edits to it have no effect.
func (r *Renderer) Submit(p effects.Params) uint64 {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.pending = &request{seq: seq, params: p.Clone()}
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
	return seq
}

// Latest returns the sequence number of the most recent submission.
func (r *Renderer) Latest() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Results returns the channel results are published on. It holds at most
// one result; an unread result is replaced by a newer one.
func (r *Renderer) Results() <-chan Result { return r.results }

// Latency returns the render duration statistics.
func (r *Renderer) Latency() *LatencyStats { return r.latency }

// Run processes submissions until ctx is done. Before handling any
// submission it publishes the histogram of the untransformed source with
// sequence number zero.
func (r *Renderer) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return errors.New("renderer already running")
	}
	log := pixfx.Logger()
	log.Info("renderer started", "width", r.src.Width(), "height", r.src.Height())
	defer log.Info("renderer stopped")

	h, err := histogram.Compute(r.src)
	if r.Latest() == 0 {
		r.publish(Result{
			Params:    effects.DefaultParams(),
			Matrix:    pixfx.IdentityMatrix(),
			Image:     r.src,
			Histogram: h,
			Err:       err,
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		}
		r.mu.Lock()
		req := r.pending
		r.pending = nil
		r.mu.Unlock()
		if req == nil {
			continue
		}

		res, err := Render(r.src, req.params, r.opts.Applier)
		res.Seq = req.seq
		res.Params = req.params
		res.Err = err
		if err == nil {
			r.latency.Record(res.Elapsed)
			if r.opts.Budget > 0 && res.Elapsed > r.opts.Budget {
				log.Warn("render over budget", "seq", req.seq, "elapsed", res.Elapsed, "budget", r.opts.Budget)
			}
		}
		if latest := r.Latest(); latest != req.seq {
			log.Warn("dropping superseded result", "seq", req.seq, "latest", latest)
			continue
		}
		log.Debug("render complete", "seq", req.seq, "elapsed", res.Elapsed, "err", err)
		r.publish(res)
	}
}

// publish replaces any unread result with res. The worker is the only
// sender so the loop ends after at most one drain.
func (r *Renderer) publish(res Result) {
	for {
		select {
		case r.results <- res:
			return
		default:
		}
		select {
		case <-r.results:
		default:
		}
	}
}
