package service

import (
	"context"
	"fmt"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
)

// Task is a side effect queued behind a successful export.
type Task struct {
	Stage string
	Run   func(ctx context.Context) error
}

// Dispatcher runs queued side effects after the certificate has been
// delivered. A failing or panicking task becomes a warning; it never fails
// the export and never stops the remaining tasks.
type Dispatcher struct {
	tasks []Task
}

func (d *Dispatcher) Enqueue(task Task) {
	d.tasks = append(d.tasks, task)
}

func (d *Dispatcher) Len() int {
	return len(d.tasks)
}

// Run executes the tasks in queue order and empties the queue.
func (d *Dispatcher) Run(ctx context.Context) []Warning {
	tasks := d.tasks
	d.tasks = nil

	var warnings []Warning
	for _, task := range tasks {
		if err := runTask(ctx, task); err != nil {
			logger.Warn(ctx, "side effect failed", "stage", task.Stage, "error", err)
			warnings = append(warnings, Warning{Stage: task.Stage, Message: err.Error()})
		}
	}
	return warnings
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}
