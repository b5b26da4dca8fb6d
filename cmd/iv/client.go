package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/kanban"
)

// remote bundles what API-backed commands need.
type remote struct {
	cfg     *config.Config
	client  *client.Client
	scope   client.Scope
	sprints *client.Sprints
}

func loadRemote(configPath string) (*remote, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c, err := client.FromConfig(cfg.API)
	if err != nil {
		return nil, err
	}
	scope := client.Scope{ProjectID: cfg.ProjectID, UserID: cfg.UserID}
	return &remote{
		cfg:     cfg,
		client:  c,
		scope:   scope,
		sprints: client.NewSprints(c, scope).WithPanelPerPage(cfg.Pagination.Largest()),
	}, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func parseDate(flag, v string) (time.Time, error) {
	t, err := time.Parse(kanban.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, v)
	}
	return t, nil
}

func optionalDate(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(flag, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
