package reminder

import (
	"context"
	"fmt"

	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes sweep tasks from the queue and executes them behind the
// distributed lock.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sweep  *Sweep
	lock   *Lock
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweep *Sweep, lock *Lock, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sweep:  sweep,
		lock:   lock,
		log:    log,
	}

	mux.HandleFunc(TaskReminderSweep, w.handleSweep)

	return w, nil
}

func (w *Worker) handleSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPayload(task)
	if err != nil {
		return err
	}

	release, ok, err := w.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Debug("sweep already running, skipping", "requested_at", payload.RequestedAt)
		return nil
	}
	defer release()

	sum, err := w.sweep.Run(ctx)
	if err != nil {
		return err
	}

	w.log.Info("reminder sweep completed",
		"processed", sum.Processed,
		"sent_10m", sum.Sent10m,
		"sent_1h", sum.Sent1h,
		"sent_24h", sum.Sent24h,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("reminder worker stopped", "error", err)
		return err
	}
	return nil
}
