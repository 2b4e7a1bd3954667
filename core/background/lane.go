// Package background runs work after the HTTP response has been sent.
package background

import (
	"context"
	"time"

	"event-service/core/logger"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Task is one unit of post-response work. Run must acquire any store handle it
// needs itself, after the lane has scheduled it.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// Lane executes tasks on goroutines, at most workers at a time.
type Lane struct {
	wg  conc.WaitGroup
	sem chan struct{}
}

func NewLane(workers int) *Lane {
	if workers <= 0 {
		workers = 1
	}
	return &Lane{sem: make(chan struct{}, workers)}
}

// Submit schedules task and returns immediately.
func (l *Lane) Submit(task Task) {
	l.wg.Go(func() {
		l.sem <- struct{}{}
		defer func() { <-l.sem }()

		started := time.Now()
		var pc panics.Catcher
		pc.Try(func() { task.Run(context.Background()) })
		if r := pc.Recovered(); r != nil {
			logger.Error("BackgroundLane: task panicked",
				"task", task.Name,
				"panic", r.Value,
				"stack", string(r.Stack),
			)
			return
		}
		logger.Debug("BackgroundLane: task finished", "task", task.Name, "duration", time.Since(started).String())
	})
}

// Wait blocks until every submitted task has returned.
func (l *Lane) Wait() {
	l.wg.Wait()
}
