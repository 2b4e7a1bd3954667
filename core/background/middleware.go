package background

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"

	"event-service/core/logger"

	"github.com/labstack/echo/v4"
)

var ErrNoTaskList = stderrors.New("background: no task list in context")

type tasksKey struct{}

type taskList struct {
	mu    sync.Mutex
	tasks []Task
}

func (l *taskList) add(t Task) {
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
}

func (l *taskList) drain() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.tasks
	l.tasks = nil
	return tasks
}

// Enqueue defers task until the current request's response has been sent.
func Enqueue(ctx context.Context, task Task) error {
	list, ok := ctx.Value(tasksKey{}).(*taskList)
	if !ok {
		return ErrNoTaskList
	}
	list.add(task)
	return nil
}

// Middleware gives each request a task list and hands it to lane once the
// handler has succeeded and the response is flushed. Tasks of a failed
// request are discarded.
func Middleware(lane *Lane) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			list := &taskList{}
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), tasksKey{}, list)))

			err := next(c)
			tasks := list.drain()
			if len(tasks) == 0 {
				return err
			}

			if err != nil {
				for _, t := range tasks {
					logger.Warn("BackgroundMiddleware: discarding task of failed request", "task", t.Name)
				}
				return err
			}

			if flushErr := http.NewResponseController(c.Response().Writer).Flush(); flushErr != nil {
				logger.Debug("BackgroundMiddleware: flush unsupported", "error", flushErr)
			}
			for _, t := range tasks {
				lane.Submit(t)
			}
			return nil
		}
	}
}
