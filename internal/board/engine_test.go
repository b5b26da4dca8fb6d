package board

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPanel wraps a Panel and counts reloads.
type countingPanel struct {
	*Panel
	mu      sync.Mutex
	reloads int
}

func (c *countingPanel) Reload(ctx context.Context) error {
	c.mu.Lock()
	c.reloads++
	c.mu.Unlock()
	return c.Panel.Reload(ctx)
}

func (c *countingPanel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloads
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) add(x Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, x)
}

func (n *noticeLog) last() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notices[len(n.notices)-1]
}

func newEngine(t *testing.T, statuses ...models.TaskStatus) (*Engine, *fakeServer, *countingPanel, *noticeLog) {
	t.Helper()
	src := newFakeServer(statuses...)
	panel := &countingPanel{Panel: NewPanel(src, 1, client.PanelFilter{})}
	require.NoError(t, panel.Panel.Reload(context.Background()))
	notices := &noticeLog{}
	return NewEngine(src, panel, notices.add), src, panel, notices
}

func taskOf(t *testing.T, p *countingPanel, id uint) models.SprintTask {
	t.Helper()
	task, ok := p.Snapshot().Board.Find(id)
	require.True(t, ok, "task %d not on board", id)
	return task
}

func TestEngine_StartIssuesOneUpdateAndOneReload(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusPending)

	require.NoError(t, e.Start(context.Background(), taskOf(t, panel, 1)))
	require.Len(t, src.updates, 1)
	assert.Equal(t, client.StatusUpdate{StatusCode: models.StatusInProgress}, src.updates[0])
	assert.Equal(t, 1, panel.count())
	assert.Len(t, panel.Snapshot().Board.InProgress, 1)
	assert.Equal(t, NoticeSuccess, notices.last().Kind)
}

func TestEngine_DoubleStartIsNoOp(t *testing.T) {
	e, src, panel, _ := newEngine(t, models.StatusPending)
	src.block = make(chan struct{})
	src.entered = make(chan struct{}, 1)
	task := taskOf(t, panel, 1)

	done := make(chan error, 1)
	go func() { done <- e.Start(context.Background(), task) }()
	<-src.entered
	assert.True(t, e.InFlight(1))

	assert.ErrorIs(t, e.Start(context.Background(), task), ErrInFlight)
	close(src.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, src.updateCount())
	assert.Equal(t, 1, panel.count())
	assert.False(t, e.InFlight(1))
}

func TestEngine_OtherTasksNotBlocked(t *testing.T) {
	e, src, panel, _ := newEngine(t, models.StatusPending, models.StatusPending)
	src.block = make(chan struct{})
	src.entered = make(chan struct{}, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{1, 2} {
		task := taskOf(t, panel, id)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Start(context.Background(), task)
		}(i)
	}
	<-src.entered
	<-src.entered
	assert.True(t, e.InFlight(1))
	assert.True(t, e.InFlight(2))
	close(src.block)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Len(t, panel.Snapshot().Board.InProgress, 2)
}

func TestEngine_IllegalTransitionsSendNothing(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusPending, models.StatusInProgress, models.StatusDone, models.StatusInspection)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"fail pending", func() error { return e.Fail(ctx, taskOf(t, panel, 1), 7, "") }},
		{"fail done", func() error { return e.Fail(ctx, taskOf(t, panel, 3), 7, "") }},
		{"start in progress", func() error { return e.Start(ctx, taskOf(t, panel, 2)) }},
		{"complete pending", func() error { return e.Complete(ctx, taskOf(t, panel, 1)) }},
		{"start inspection", func() error { return e.Start(ctx, taskOf(t, panel, 4)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
			n := notices.last()
			assert.Equal(t, NoticeError, n.Kind)
			assert.Contains(t, n.Message, "cannot")
			assert.NotContains(t, n.Message, "reloaded")
		})
	}
	assert.Zero(t, src.updateCount())
	assert.Zero(t, panel.count())
}

func TestEngine_FailRequiresReason(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusInProgress)

	err := e.Fail(context.Background(), taskOf(t, panel, 1), 0, "material missing")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "nonExecutionReasonId", apperr.FieldsOf(err)[0].Field)
	assert.Zero(t, src.updateCount())
	assert.Zero(t, panel.count())
	assert.Equal(t, NoticeError, notices.last().Kind)
}

func TestEngine_FailMovesToFailedBucket(t *testing.T) {
	e, src, panel, _ := newEngine(t, models.StatusPending, models.StatusInProgress)

	require.NoError(t, e.Fail(context.Background(), taskOf(t, panel, 2), 7, "material missing"))
	require.Len(t, src.updates, 1)
	u := src.updates[0]
	assert.Equal(t, models.StatusFailed, u.StatusCode)
	require.NotNil(t, u.NonExecutionReasonID)
	assert.Equal(t, uint(7), *u.NonExecutionReasonID)
	assert.Equal(t, "material missing", u.NonExecutionObservations)

	snap := panel.Snapshot()
	assert.Empty(t, snap.Board.InProgress)
	require.Len(t, snap.Board.Failed, 1)
	assert.Equal(t, uint(2), snap.Board.Failed[0].ID)
}

func TestEngine_ServerRejectionReloads(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusInProgress)
	src.updateErr = apperr.Conflict("task already completed")

	err := e.Complete(context.Background(), taskOf(t, panel, 1))
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, panel.count(), "an error reconciles with one reload")
	n := notices.last()
	assert.Equal(t, NoticeError, n.Kind)
	assert.Contains(t, n.Message, "task already completed")
	assert.False(t, e.InFlight(1))
}

func TestEngine_Delete(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusDone, models.StatusPending)

	require.NoError(t, e.Delete(context.Background(), 1))
	assert.Equal(t, []uint{1}, src.deletes)
	assert.Equal(t, 1, panel.count())
	assert.Equal(t, 1, panel.Snapshot().Board.Total())
	assert.Equal(t, NoticeSuccess, notices.last().Kind)

	err := e.Delete(context.Background(), 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, 2, panel.count())
}

func TestEngine_ReloadFailureIsReported(t *testing.T) {
	e, src, panel, notices := newEngine(t, models.StatusPending)
	task := taskOf(t, panel, 1)

	src.mu.Lock()
	src.sprintErr = apperr.Network(errors.New("connection reset"))
	src.mu.Unlock()

	require.NoError(t, e.Start(context.Background(), task))
	require.Len(t, src.updates, 1)
	require.Len(t, notices.notices, 2)
	assert.Equal(t, NoticeSuccess, notices.notices[0].Kind, "the mutation itself succeeded")
	reloadNotice := notices.last()
	assert.Equal(t, NoticeError, reloadNotice.Kind)
	assert.Equal(t, uint(1), reloadNotice.TaskID)
	assert.Equal(t, apperr.UserMessage(src.sprintErr), reloadNotice.Message)
	assert.True(t, apperr.Is(reloadNotice.Err, apperr.KindNetwork))
}
