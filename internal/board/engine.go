package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
)

// ErrInFlight is returned when a task already has a mutation in flight.
var ErrInFlight = errors.New("board: task has an operation in flight")

// TaskMutator sends task mutations to the server.
type TaskMutator interface {
	UpdateTaskStatus(ctx context.Context, id uint, u client.StatusUpdate) (*models.SprintTask, error)
	DeleteTask(ctx context.Context, id uint) error
}

// Reloader refreshes the task panel.
type Reloader interface {
	Reload(ctx context.Context) error
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a user-facing outcome of an engine operation, e.g. a toast.
type Notice struct {
	Kind    NoticeKind
	TaskID  uint
	Message string
	Err     error
}

// Engine applies start, complete, fail and delete to sprint tasks. Illegal
// moves and missing inputs are rejected before any request. Each task has
// at most one operation in flight; other tasks are not blocked. Every
// request, successful or not, is followed by one panel reload.
type Engine struct {
	tasks  TaskMutator
	panel  Reloader
	notice func(Notice)

	mu       sync.Mutex
	inFlight map[uint]bool
}

// NewEngine creates an Engine. notice may be nil.
func NewEngine(tasks TaskMutator, panel Reloader, notice func(Notice)) *Engine {
	if notice == nil {
		notice = func(Notice) {}
	}
	return &Engine{
		tasks:    tasks,
		panel:    panel,
		notice:   notice,
		inFlight: make(map[uint]bool),
	}
}

// Start moves a PENDING task to IN_PROGRESS.
func (e *Engine) Start(ctx context.Context, task models.SprintTask) error {
	return e.transition(ctx, task, kanban.ActionStart, client.StatusUpdate{})
}

// Complete moves an IN_PROGRESS task to DONE.
func (e *Engine) Complete(ctx context.Context, task models.SprintTask) error {
	return e.transition(ctx, task, kanban.ActionComplete, client.StatusUpdate{})
}

// Fail moves an IN_PROGRESS task to FAILED with a reason and an optional
// observation.
func (e *Engine) Fail(ctx context.Context, task models.SprintTask, reasonID uint, observation string) error {
	if reasonID == 0 {
		err := apperr.Required("nonExecutionReasonId")
		e.notice(Notice{Kind: NoticeError, TaskID: task.ID, Message: apperr.UserMessage(err), Err: err})
		return err
	}
	return e.transition(ctx, task, kanban.ActionFail, client.StatusUpdate{
		NonExecutionReasonID:     &reasonID,
		NonExecutionObservations: observation,
	})
}

// Delete removes a task regardless of its status.
func (e *Engine) Delete(ctx context.Context, taskID uint) error {
	if !e.acquire(taskID) {
		return ErrInFlight
	}
	defer e.release(taskID)

	err := e.tasks.DeleteTask(ctx, taskID)
	rerr := e.reload(ctx)
	e.report(taskID, fmt.Sprintf("Task #%d deleted", taskID), err)
	e.reportReload(taskID, rerr)
	return err
}

// InFlight reports whether taskID has an operation in flight.
func (e *Engine) InFlight(taskID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight[taskID]
}

func (e *Engine) transition(ctx context.Context, task models.SprintTask, action kanban.Action, u client.StatusUpdate) error {
	target, err := kanban.Target(task.StatusCode, action)
	if err != nil {
		// Rejected locally: nothing was sent, so nothing is reloaded.
		e.notice(Notice{Kind: NoticeError, TaskID: task.ID, Message: err.Error(), Err: err})
		return err
	}
	if !e.acquire(task.ID) {
		return ErrInFlight
	}
	defer e.release(task.ID)

	u.StatusCode = target
	_, err = e.tasks.UpdateTaskStatus(ctx, task.ID, u)
	rerr := e.reload(ctx)
	e.report(task.ID, fmt.Sprintf("%s: %s", task.DisplayName(), target.Meta().Label), err)
	e.reportReload(task.ID, rerr)
	return err
}

func (e *Engine) reload(ctx context.Context) error {
	err := e.panel.Reload(ctx)
	if err != nil {
		log.Printf("board: reload: %v", err)
	}
	return err
}

// reportReload tells the user the board may be stale after a failed reload.
func (e *Engine) reportReload(taskID uint, err error) {
	if err == nil {
		return
	}
	e.notice(Notice{Kind: NoticeError, TaskID: taskID, Message: apperr.UserMessage(err), Err: err})
}

func (e *Engine) report(taskID uint, success string, err error) {
	if err != nil {
		e.notice(Notice{Kind: NoticeError, TaskID: taskID, Message: apperr.UserMessage(err), Err: err})
		return
	}
	e.notice(Notice{Kind: NoticeSuccess, TaskID: taskID, Message: success})
}

func (e *Engine) acquire(id uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[id] {
		return false
	}
	e.inFlight[id] = true
	return true
}

func (e *Engine) release(id uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)
}
