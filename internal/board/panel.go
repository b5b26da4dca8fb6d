package board

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"golang.org/x/sync/errgroup"
)

// PanelSource is what the task panel reads from.
type PanelSource interface {
	GetSprint(ctx context.Context, id uint) (*models.Sprint, error)
	FullPanel(ctx context.Context, sprintID uint, f client.PanelFilter) (*client.TaskSet, error)
	Chart(ctx context.Context, sprintID uint, teamID *uint) (*kanban.Summary, error)
}

// Snapshot is one consistent view of a sprint's board. It is replaced
// wholesale on every reload and never modified in place.
type Snapshot struct {
	Sprint   models.Sprint
	Board    kanban.Board
	Burndown []kanban.Point
	// ServerBurndown is true when Burndown came from the chart endpoint.
	ServerBurndown bool
	Progress       int
	HasTeamCreated bool
	// Integrity is set when some tasks carry an unknown status.
	Integrity error
	LoadedAt  time.Time
}

// Panel holds the latest snapshot of one sprint's task board.
type Panel struct {
	src      PanelSource
	sprintID uint
	filter   client.PanelFilter
	now      func() time.Time

	mu       sync.Mutex
	snap     *Snapshot
	loading  int
	closed   bool
	onReload func(*Snapshot)
}

// NewPanel creates a panel for one sprint. Call Reload to fill it.
func NewPanel(src PanelSource, sprintID uint, filter client.PanelFilter) *Panel {
	return &Panel{src: src, sprintID: sprintID, filter: filter, now: time.Now}
}

// OnReload registers fn to run with every applied snapshot.
func (p *Panel) OnReload(fn func(*Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReload = fn
}

// Reload fetches the sprint, its complete task set and its chart
// concurrently and replaces the snapshot. A failing chart falls back to
// the locally projected burndown. Concurrent reloads all apply; the last
// to finish wins. Results that arrive after Close are dropped.
func (p *Panel) Reload(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.loading++
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.loading--
		p.mu.Unlock()
	}()

	var (
		sprint   *models.Sprint
		tasks    *client.TaskSet
		chart    *kanban.Summary
		chartErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sprint, err = p.src.GetSprint(gctx, p.sprintID)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = p.src.FullPanel(gctx, p.sprintID, p.filter)
		return err
	})
	g.Go(func() error {
		chart, chartErr = p.src.Chart(gctx, p.sprintID, p.filter.TeamID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := &Snapshot{
		Sprint:         *sprint,
		HasTeamCreated: tasks.HasTeamCreated,
		LoadedAt:       p.now(),
	}
	snap.Board, snap.Integrity = kanban.Classify(tasks.Tasks)
	if snap.Integrity != nil {
		log.Printf("board: sprint %d: %v", p.sprintID, snap.Integrity)
	}
	snap.Progress = snap.Board.Progress()
	if chartErr == nil && chart != nil && len(chart.Burndown) > 0 {
		snap.Burndown = chart.Burndown
		snap.ServerBurndown = true
	} else {
		if chartErr != nil {
			log.Printf("board: sprint %d chart: %v", p.sprintID, chartErr)
		}
		snap.Burndown = kanban.Burndown(sprint.StartDate, sprint.EndDate, tasks.Tasks)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.snap = snap
	fn := p.onReload
	p.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
	return nil
}

// Snapshot returns the latest snapshot, nil before the first reload.
func (p *Panel) Snapshot() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Loading reports whether any reload is in flight.
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading > 0
}

// Close detaches the panel; later reload results are ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
