package worker

import (
	"context"
	"errors"
	"time"
)

// ErrDispatcherBusy signals that the job queue is saturated; the endpoint
// maps it to 429.
var ErrDispatcherBusy = errors.New("dispatcher queue is full")

type DispatcherConfig struct {
	MinWorkers        int
	MaxWorkers        int
	QueueSize         int
	WorkerIdleTimeout time.Duration
}

// Dispatcher feeds query jobs into a bounded worker pool so a burst of
// slow agent runs cannot spawn unbounded goroutines.
type Dispatcher struct {
	pool     *jobChannelPool
	jobQueue chan Job
}

func NewDispatcher(cfg DispatcherConfig, runner Runner) *Dispatcher {
	if cfg.MinWorkers <= 0 {
		cfg.MinWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	pool := newJobChannelPool(cfg.MinWorkers, cfg.MaxWorkers, cfg.WorkerIdleTimeout, runner)
	d := &Dispatcher{
		pool:     pool,
		jobQueue: make(chan Job, cfg.QueueSize),
	}

	for i := 0; i < cfg.MinWorkers; i++ {
		d.pool.spawnWorker()
	}

	go d.run()
	return d
}

func (d *Dispatcher) run() {
	for job := range d.jobQueue {
		workerChan := d.pool.acquire()
		workerChan <- job
	}
}

// Submit runs one question through the pool and waits for the answer.
// Cancellation of ctx propagates into the agent run via the task context.
func (d *Dispatcher) Submit(ctx context.Context, question string) (string, error) {
	task := &queryTask{
		ctx:      ctx,
		question: question,
		resultCh: make(chan queryResult, 1),
	}

	select {
	case d.jobQueue <- Job{Type: Query, Task: task}:
	default:
		return "", ErrDispatcherBusy
	}

	res := <-task.resultCh
	return res.answer, res.err
}

// RunningWorkers reports current pool size, mostly for tests and debugging.
func (d *Dispatcher) RunningWorkers() int {
	return d.pool.runningWorkers()
}
