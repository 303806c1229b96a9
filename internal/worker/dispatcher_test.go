package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubRunner struct {
	answer string
	err    error

	gate    chan struct{} // when set, Run blocks until closed
	started chan struct{} // buffered; receives one token per Run entry

	concurrent int32
	peak       int32
}

func (r *stubRunner) Run(ctx context.Context, question string) (string, error) {
	cur := atomic.AddInt32(&r.concurrent, 1)
	for {
		p := atomic.LoadInt32(&r.peak)
		if cur <= p || atomic.CompareAndSwapInt32(&r.peak, p, cur) {
			break
		}
	}
	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
	}
	if r.gate != nil {
		<-r.gate
	}
	atomic.AddInt32(&r.concurrent, -1)
	return r.answer, r.err
}

func TestSubmitReturnsRunnerAnswer(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{MinWorkers: 1, MaxWorkers: 2, QueueSize: 4}, &stubRunner{answer: "Day 1: Colosseum"})

	answer, err := d.Submit(context.Background(), "Plan a trip to Rome")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if answer != "Day 1: Colosseum" {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestSubmitPropagatesRunnerError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	d := NewDispatcher(DispatcherConfig{MinWorkers: 1, MaxWorkers: 1, QueueSize: 1}, &stubRunner{err: wantErr})

	_, err := d.Submit(context.Background(), "q")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected runner error, got %v", err)
	}
}

func TestSubmitReportsBusyWhenSaturated(t *testing.T) {
	runner := &stubRunner{
		answer:  "ok",
		gate:    make(chan struct{}),
		started: make(chan struct{}, 8),
	}
	d := NewDispatcher(DispatcherConfig{MinWorkers: 1, MaxWorkers: 1, QueueSize: 1}, runner)

	errCh := make(chan error, 8)
	submit := func() {
		_, err := d.Submit(context.Background(), "q")
		errCh <- err
	}

	go submit()
	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first job never started")
	}

	// One more can be in flight in the dispatch loop and one can sit in the
	// queue; anything beyond that must be rejected.
	for i := 0; i < 4; i++ {
		go submit()
	}

	var busy bool
	deadline := time.After(2 * time.Second)
	for !busy {
		select {
		case err := <-errCh:
			if !errors.Is(err, ErrDispatcherBusy) {
				t.Fatalf("unexpected submit error: %v", err)
			}
			busy = true
		case <-deadline:
			t.Fatal("saturated dispatcher never reported busy")
		}
	}

	close(runner.gate)
}

func TestPoolNeverExceedsMaxWorkers(t *testing.T) {
	const maxWorkers = 3
	runner := &stubRunner{answer: "ok", gate: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{MinWorkers: 1, MaxWorkers: maxWorkers, QueueSize: 32}, runner)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Submit(context.Background(), "q")
		}()
	}

	// Let the pool grow under load before opening the gate.
	waitUntil(t, func() bool { return atomic.LoadInt32(&runner.concurrent) == maxWorkers })
	close(runner.gate)
	wg.Wait()

	if peak := atomic.LoadInt32(&runner.peak); peak > maxWorkers {
		t.Fatalf("pool ran %d jobs concurrently, max is %d", peak, maxWorkers)
	}
	if running := d.RunningWorkers(); running > maxWorkers {
		t.Fatalf("pool kept %d workers, max is %d", running, maxWorkers)
	}
}

func TestIdleWorkersRetireDownToMinimum(t *testing.T) {
	runner := &stubRunner{answer: "ok"}
	d := NewDispatcher(DispatcherConfig{
		MinWorkers:        1,
		MaxWorkers:        4,
		QueueSize:         16,
		WorkerIdleTimeout: 50 * time.Millisecond,
	}, runner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Submit(context.Background(), "q")
		}()
	}
	wg.Wait()

	waitUntil(t, func() bool { return d.RunningWorkers() <= 1 })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}
