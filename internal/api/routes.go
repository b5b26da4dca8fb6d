package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"github.com/industryview/industryview/internal/notify"
	"github.com/industryview/industryview/internal/resource"
	"github.com/industryview/industryview/internal/sprint"
	"gorm.io/gorm"
)

type handler struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier notify.Notifier
}

// registerRoutes sets up every API route on the group.
func registerRoutes(g *gin.RouterGroup, h *handler) {
	g.GET("/health", h.health)

	g.GET("/sprints", h.listSprints)
	g.POST("/sprints", h.createSprint)
	g.GET("/sprints/tasks", h.panel)
	g.POST("/sprints/tasks", h.createTask)
	g.GET("/sprints/tasks/:id", h.getTask)
	g.PATCH("/sprints/tasks/:id/status", h.updateTaskStatus)
	g.POST("/sprints/tasks/:id/inspection", h.reviewInspection)
	g.DELETE("/sprints/tasks/:id", h.deleteTask)
	g.GET("/sprints/:id", h.getSprint)
	g.PATCH("/sprints/:id", h.updateSprint)
	g.DELETE("/sprints/:id", h.deleteSprint)
	g.GET("/sprints/:id/chart", h.chart)

	g.GET("/non-execution-reasons", h.listReasons)

	registerResource(g, "/employees", resource.Employees(h.db), h.cfg.Pagination)
	registerResource(g, "/safety-incidents", resource.Incidents(h.db), h.cfg.Pagination)
	registerResource(g, "/backlogs", resource.Backlogs(h.db), h.cfg.Pagination)
	registerResource(g, "/teams", resource.Teams(h.db), h.cfg.Pagination)
}

func (h *handler) dbc(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context())
}

func (h *handler) health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pageParams reads page and per_page, rejecting sizes outside the
// configured set.
func pageParams(c *gin.Context, pag config.PaginationConfig, pageKey, perPageKey string) (int, int, error) {
	page, err := queryInt(c, pageKey, 1)
	if err != nil {
		return 0, 0, err
	}
	perPage, err := queryInt(c, perPageKey, pag.DefaultPerPage)
	if err != nil {
		return 0, 0, err
	}
	if !pag.Allows(perPage) {
		return 0, 0, apperr.Validation("invalid "+perPageKey, apperr.FieldError{
			Field:   perPageKey,
			Message: fmt.Sprintf("must be one of %v", pag.AllowedPerPage),
		})
	}
	return page, perPage, nil
}

func (h *handler) listSprints(c *gin.Context) {
	projectID, err := queryID(c, "projectId")
	if err != nil {
		renderError(c, err)
		return
	}
	page, perPage, err := pageParams(c, h.cfg.Pagination, "page", "per_page")
	if err != nil {
		renderError(c, err)
		return
	}
	groups, err := sprint.List(h.dbc(c), projectID, page, perPage)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *handler) createSprint(c *gin.Context) {
	var opts sprint.CreateOpts
	if err := c.ShouldBindJSON(&opts); err != nil {
		renderError(c, bindError(err))
		return
	}
	s, err := sprint.Create(h.dbc(c), opts)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *handler) getSprint(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	s, err := sprint.Get(h.dbc(c), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) updateSprint(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	var p sprint.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		renderError(c, bindError(err))
		return
	}
	s, err := sprint.Update(h.dbc(c), id, p)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handler) deleteSprint(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := sprint.Delete(h.dbc(c), id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) chart(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	teamID, err := queryID(c, "teamId")
	if err != nil {
		renderError(c, err)
		return
	}
	var team *uint
	if teamID != 0 {
		team = &teamID
	}
	summary, err := sprint.Chart(h.dbc(c), id, team)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *handler) panel(c *gin.Context) {
	q := sprint.PanelQuery{Pages: map[models.TaskStatus]sprint.PageReq{}}
	var err error
	if q.ProjectID, err = queryID(c, "projectId"); err != nil {
		renderError(c, err)
		return
	}
	if q.SprintID, err = queryID(c, "sprintId"); err != nil {
		renderError(c, err)
		return
	}
	if q.Search, err = queryID(c, "search"); err != nil {
		renderError(c, err)
		return
	}
	teamID, err := queryID(c, "teamId")
	if err != nil {
		renderError(c, err)
		return
	}
	if teamID != 0 {
		q.TeamID = &teamID
	}
	if v := c.Query("scheduledFor"); v != "" {
		day, err := time.Parse(kanban.DateLayout, v)
		if err != nil {
			renderError(c, apperr.Validation("invalid scheduledFor", apperr.FieldError{Field: "scheduledFor", Message: "must be YYYY-MM-DD"}))
			return
		}
		q.ScheduledFor = &day
	}
	for _, s := range models.AllTaskStatuses() {
		key := s.BucketKey()
		page, perPage, err := pageParams(c, h.cfg.Pagination, key+"Page", key+"PerPage")
		if err != nil {
			renderError(c, err)
			return
		}
		q.Pages[s] = sprint.PageReq{Page: page, PerPage: perPage}
	}

	panel, err := sprint.Panel(h.dbc(c), q)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (h *handler) createTask(c *gin.Context) {
	var opts sprint.TaskOpts
	if err := c.ShouldBindJSON(&opts); err != nil {
		renderError(c, bindError(err))
		return
	}
	t, err := sprint.CreateTask(h.dbc(c), opts)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handler) getTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	t, err := sprint.GetTask(h.dbc(c), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) updateTaskStatus(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	var u sprint.StatusUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		renderError(c, bindError(err))
		return
	}
	t, err := sprint.UpdateTaskStatus(h.dbc(c), id, u)
	if err != nil {
		renderError(c, err)
		return
	}
	if t.StatusCode == models.StatusFailed {
		h.announceFailure(c.Request.Context(), t)
	}
	c.JSON(http.StatusOK, t)
}

// announceFailure posts a failed-task notice. Delivery errors are logged
// and never fail the request.
func (h *handler) announceFailure(ctx context.Context, t *models.SprintTask) {
	if h.notifier == nil || !h.cfg.Notify.NotifyTaskFailed() {
		return
	}
	s, err := sprint.Get(h.db.WithContext(ctx), t.SprintID)
	if err != nil {
		log.Printf("api: notify task %d failed: %v", t.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := h.notifier.Send(ctx, notify.FormatTaskFailed(*s, *t)); err != nil {
		log.Printf("api: notify task %d failed: %v", t.ID, err)
	}
}

type inspectionBody struct {
	Approved *bool `json:"approved"`
}

func (h *handler) reviewInspection(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	var body inspectionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		renderError(c, bindError(err))
		return
	}
	if body.Approved == nil {
		renderError(c, apperr.Required("approved"))
		return
	}
	t, err := sprint.ReviewInspection(h.dbc(c), id, *body.Approved)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) deleteTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := sprint.DeleteTask(h.dbc(c), id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listReasons(c *gin.Context) {
	reasons, err := sprint.ListReasons(h.dbc(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}
