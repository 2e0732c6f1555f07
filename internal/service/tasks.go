package service

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// TaskGroup tracks background work spawned by a request, such as saving a
// rendered chart. Failures are logged as they happen; Wait is the join
// point and returns the first one.
type TaskGroup struct {
	g      errgroup.Group
	logger *slog.Logger
}

func NewTaskGroup(logger *slog.Logger) *TaskGroup {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskGroup{logger: logger}
}

// Go runs fn on its own goroutine. A panic inside fn becomes an error.
func (t *TaskGroup) Go(name string, fn func() error) {
	t.g.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("task %s panicked: %v", name, p)
			}
			if err != nil {
				t.logger.Error("background_task_failed", "task", name, "error", err)
			}
		}()
		return fn()
	})
}

// Wait blocks until every task finishes. A nil group has nothing to wait on.
func (t *TaskGroup) Wait() error {
	if t == nil {
		return nil
	}
	return t.g.Wait()
}
