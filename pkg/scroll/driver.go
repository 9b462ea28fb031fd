package scroll

import (
	"sync"
	"time"

	"xscraper/pkg/logger"
)

// StepFunc performs one scroll step against the timeline view and reports
// whether the step surfaced new content. The browser side of scrolling is
// external; this package only owns the timing loop.
type StepFunc func() (advanced bool, err error)

// Driver paces scroll steps on a fixed interval and decides when scrolling is
// done: either the step budget is exhausted or the view has been idle (no new
// content) for a configured number of consecutive steps.
//
// Each Start opens a new run identified by a monotonically increasing token.
// Completion is reported exactly once per run through the onFinished callback,
// which receives that run's token so the consumer can reject completions from
// a superseded run. A driver that has been stopped never reports completion,
// even if its loop was already past the stopping point.
type Driver struct {
	step       StepFunc
	interval   time.Duration
	idleLimit  int
	onFinished func(run uint64)
	log        logger.Logger

	mu       sync.Mutex
	cancel   chan struct{}
	run      uint64
	running  bool
	stopped  bool
	finished bool
}

// NewDriver creates a scroll driver. onFinished is invoked from the driver's
// own goroutine when scrolling ends on its own; it is never invoked after
// Stop, and carries the token of the run that finished.
func NewDriver(step StepFunc, interval time.Duration, idleLimit int, onFinished func(run uint64)) *Driver {
	return &Driver{
		step:       step,
		interval:   interval,
		idleLimit:  idleLimit,
		onFinished: onFinished,
		log:        logger.GetLogger(),
	}
}

// Start begins a new scroll run and returns its token. budget caps the number
// of steps; 0 means no cap, scrolling ends on idle detection alone. Starting
// an already running driver is a no-op that returns the active run's token.
func (d *Driver) Start(budget int) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return d.run
	}
	d.run++
	d.running = true
	d.stopped = false
	d.finished = false
	d.cancel = make(chan struct{})

	go d.loop(d.run, budget, d.cancel)
	return d.run
}

// Stop cancels the scroll loop. After Stop returns, the driver will not
// report completion for the cancelled run.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running || d.stopped {
		return
	}
	d.stopped = true
	d.running = false
	close(d.cancel)
}

func (d *Driver) loop(run uint64, budget int, cancel <-chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	steps := 0
	idle := 0

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}

		advanced, err := d.step()
		if err != nil {
			d.log.WithError(err).Warn("scroll step failed")
			advanced = false
		}

		steps++
		if advanced {
			idle = 0
		} else {
			idle++
		}

		if budget > 0 && steps >= budget {
			d.log.WithField("steps", steps).Debug("scroll budget exhausted")
			break
		}
		if idle >= d.idleLimit {
			d.log.WithField("steps", steps).Debug("scroll idle limit reached")
			break
		}
	}

	d.finish(run)
}

// finish reports completion unless the driver was stopped first or the run
// has been superseded by a newer Start.
func (d *Driver) finish(run uint64) {
	d.mu.Lock()
	if d.stopped || d.finished || run != d.run {
		d.mu.Unlock()
		return
	}
	d.finished = true
	d.running = false
	d.mu.Unlock()

	if d.onFinished != nil {
		d.onFinished(run)
	}
}

// Manual is a driver for externally paced runs (replayed event streams,
// tests): Start and Stop do nothing, scrolling ends only when the operator
// issues a stop.
type Manual struct{}

// NewManual creates a manual driver.
func NewManual() *Manual { return &Manual{} }

// Start is a no-op.
func (*Manual) Start(budget int) uint64 { return 0 }

// Stop is a no-op.
func (*Manual) Stop() {}
