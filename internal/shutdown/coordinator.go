// Package shutdown coordinates process-wide cancellation of in-flight
// shortcut invocations when the server receives a termination request.
package shutdown

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultGracePeriod is the window allotted for in-flight work to finish
// after shutdown is requested before the process is terminated forcibly.
const DefaultGracePeriod = 10 * time.Second

// Coordinator owns the single process-wide cancellation state. It is the
// sole writer of that state; invocations only read it through Context.
// Once tripped it is never reset — the process exits after the shutdown
// sequence completes or times out.
type Coordinator struct {
	grace  time.Duration
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	requested bool
	deadline  time.Time

	inflight sync.WaitGroup
	active   atomic.Int64
}

// NewCoordinator creates a coordinator with the given grace period.
func NewCoordinator(grace time.Duration) *Coordinator {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		grace:  grace,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is the shared cancellation scope passed to every invocation.
// It is cancelled exactly once, on the first RequestShutdown call.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Track registers an in-flight invocation. The returned func must be called
// when the invocation finishes; calling it more than once is harmless.
func (c *Coordinator) Track() (done func()) {
	c.inflight.Add(1)
	c.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			c.active.Add(-1)
			c.inflight.Done()
		})
	}
}

// InFlight returns the number of invocations currently tracked.
func (c *Coordinator) InFlight() int64 {
	return c.active.Load()
}

// RequestShutdown flips the shutdown flag, fixes the forced-exit deadline a
// grace period in the future and cancels the shared context. Idempotent: a
// second call only re-confirms the existing deadline.
func (c *Coordinator) RequestShutdown() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requested {
		return c.deadline
	}
	c.requested = true
	c.deadline = time.Now().Add(c.grace)
	c.cancel()
	slog.Info("shutdown requested", "grace_period", c.grace, "in_flight", c.active.Load())
	return c.deadline
}

// ShutdownRequested reports whether shutdown has begun.
func (c *Coordinator) ShutdownRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requested
}

// ForcedExitDeadlinePassed reports whether the grace period has elapsed.
// Always false before shutdown is requested.
func (c *Coordinator) ForcedExitDeadlinePassed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requested && time.Now().After(c.deadline)
}

// Drain blocks until all in-flight invocations finish or the forced-exit
// deadline passes, whichever comes first, and reports whether everything
// drained in time. Requests shutdown first if that has not happened yet.
func (c *Coordinator) Drain() bool {
	deadline := c.RequestShutdown()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
