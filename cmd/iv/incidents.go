package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"github.com/spf13/cobra"
)

func incidentsResource(r *remote) *client.Resource[models.SafetyIncident] {
	return client.Incidents(r.client, r.scope, r.cfg.Pagination.AllowedPerPage)
}

func newIncidentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "Safety incident commands",
	}

	cmd.AddCommand(newIncidentsListCmd())
	cmd.AddCommand(newIncidentsAddCmd())
	cmd.AddCommand(newRemoveCmd("safety incident", incidentsResource))
	return cmd
}

func incidentRow(i models.SafetyIncident) string {
	return fmt.Sprintf("  #%-4d %s  %s  %s",
		i.ID, i.OccurredAt.Format(kanban.DateLayout), badge(models.SeverityMeta[i.Severity]), truncate(i.Title, 48))
}

func newIncidentsListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List safety incidents",
	}
	flags := newListFlags(cmd, map[string]string{
		"search":   "title contains",
		"severity": "MINOR, MODERATE, SERIOUS or FATAL",
	})
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := loadRemote(configPath)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), cmd.OutOrStdout(), incidentsResource(r), r.cfg.Pagination.DefaultPerPage, flags, incidentRow)
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newIncidentsAddCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		severity    string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a safety incident",
		RunE: func(cmd *cobra.Command, args []string) error {
			occurred := time.Now()
			if date != "" {
				var err error
				if occurred, err = parseDate("date", date); err != nil {
					return err
				}
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			saved, err := runCreate(cmd.Context(), cmd.OutOrStdout(), incidentsResource(r), models.SafetyIncident{
				ProjectID:   r.scope.ProjectID,
				Title:       title,
				Severity:    models.Severity(strings.ToUpper(severity)),
				OccurredAt:  occurred,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded incident #%d %s\n", saved.ID, saved.Title)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&title, "title", "", "short title")
	cmd.Flags().StringVar(&severity, "severity", "", "MINOR, MODERATE, SERIOUS or FATAL")
	cmd.Flags().StringVar(&date, "date", "", "day it occurred YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "desc", "", "what happened")
	return cmd
}
