package worker

import "context"

// Runner executes one travel query end to end. Satisfied by agent.Planner.
type Runner interface {
	Run(ctx context.Context, question string) (string, error)
}

// JobType discriminates pool work from shutdown signals.
type JobType int

const (
	Query JobType = iota
	Stop
)

type queryResult struct {
	answer string
	err    error
}

type queryTask struct {
	ctx      context.Context
	question string
	resultCh chan queryResult
}

// Job is the unit of work passed through worker channels.
type Job struct {
	Type JobType
	Task *queryTask
}

type worker struct {
	pool       *jobChannelPool
	runner     Runner
	jobChannel chan Job
}

func newWorker(pool *jobChannelPool, runner Runner) *worker {
	return &worker{
		pool:       pool,
		runner:     runner,
		jobChannel: make(chan Job),
	}
}

func (w *worker) start() {
	go func() {
		for job := range w.jobChannel {
			switch job.Type {
			case Query:
				w.handle(job.Task)
				w.pool.release(w.jobChannel)
			case Stop:
				w.pool.retire(w.jobChannel)
				return
			}
		}
	}()
}

func (w *worker) handle(task *queryTask) {
	if task == nil {
		return
	}
	answer, err := w.runner.Run(task.ctx, task.question)
	task.resultCh <- queryResult{answer: answer, err: err}
}
