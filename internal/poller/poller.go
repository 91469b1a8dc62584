package poller

import (
	"context"
	"sync"
	"time"
)

const DefaultInterval = 30 * time.Second

type PollFunc = func(ctx context.Context)

// Ticker is the subset of *time.Ticker the poller needs.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) Chan() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()                  { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker { return stdTicker{t: time.NewTicker(d)} }

// Poller runs a function on a fixed interval for the lifetime of a session.
// Ticks are neither skipped nor deduplicated: every tick starts its own call,
// so a slow call can still be in flight when the next one starts.
type Poller struct {
	interval  time.Duration
	fn        PollFunc
	newTicker func(time.Duration) Ticker

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	doneCh chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	timers  map[uint64]*time.Timer
	nextID  uint64
	calls   sync.WaitGroup
}

func New(interval time.Duration, fn PollFunc) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fn == nil {
		fn = func(context.Context) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		interval:  interval,
		fn:        fn,
		newTicker: newStdTicker,
		ctx:       ctx,
		cancel:    cancel,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	ticker := p.newTicker(p.interval)
	go func() {
		defer close(p.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.Chan():
				p.run(p.fn)
			}
		}
	}()
}

// After runs fn once after d unless the poller is stopped first.
func (p *Poller) After(d time.Duration, fn PollFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || fn == nil {
		return
	}
	if p.timers == nil {
		p.timers = map[uint64]*time.Timer{}
	}
	id := p.nextID
	p.nextID++
	p.timers[id] = time.AfterFunc(d, func() {
		p.mu.Lock()
		delete(p.timers, id)
		p.mu.Unlock()
		p.run(fn)
	})
}

// Pending reports how many one-shot calls have not fired yet.
func (p *Poller) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

// Stop ends the interval, cancels pending one-shot calls and the context of
// in-flight calls, and waits for those calls to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	p.mu.Unlock()

	close(p.stopCh)
	if started {
		<-p.doneCh
	}
	p.cancel()
	p.calls.Wait()
}

func (p *Poller) run(fn PollFunc) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.calls.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.calls.Done()
		fn(p.ctx)
	}()
}
