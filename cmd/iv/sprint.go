package main

import (
	"context"
	"fmt"
	"io"

	"github.com/industryview/industryview/internal/board"
	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/models"
	"github.com/spf13/cobra"
)

func newSprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Sprint commands",
	}

	cmd.AddCommand(newSprintListCmd())
	cmd.AddCommand(newSprintShowCmd())
	cmd.AddCommand(newSprintBoardCmd())
	cmd.AddCommand(newSprintChartCmd())
	cmd.AddCommand(newSprintCreateCmd())
	return cmd
}

func newSprintListCmd() *cobra.Command {
	var (
		configPath string
		page       int
		perPage    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's sprints grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			if perPage == 0 {
				perPage = r.cfg.Pagination.DefaultPerPage
			}
			groups, err := r.sprints.List(cmd.Context(), page, perPage)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSprintGroup(out, "Active", groups.Active)
			printSprintGroup(out, "Future", groups.Future)
			printSprintGroup(out, "Completed", groups.Completed)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "sprints per group (default from config)")
	return cmd
}

func printSprintGroup(w io.Writer, title string, p models.Page[models.Sprint]) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(title), mutedStyle.Render(fmt.Sprintf("(%d, page %d/%d)", p.ItemsTotal, p.CurPage, max(p.PageTotal, 1))))
	if len(p.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
	}
	for _, s := range p.Items {
		fmt.Fprintf(w, "  #%-4d %-28s %s  %s  %3d%%\n",
			s.ID, truncate(s.Name, 28), badge(models.SprintStatusMeta[s.Status]), sprintRange(s), s.ProgressPercentage)
	}
	fmt.Fprintln(w)
}

func newSprintShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <sprint-id>",
		Short: "Show a sprint and its task counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			s, err := r.sprints.GetSprint(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", headerStyle.Render(fmt.Sprintf("#%d %s", s.ID, s.Name)), badge(models.SprintStatusMeta[s.Status]))
			fmt.Fprintf(out, "%s\n", mutedStyle.Render(sprintRange(*s)))
			if s.Objective != "" {
				fmt.Fprintf(out, "Objective: %s\n", s.Objective)
			}
			sum, err := r.sprints.Chart(cmd.Context(), id, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			printSummary(out, *sum)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// panelFlags are the board filters shared by board and chart.
type panelFlags struct {
	team   uint
	date   string
	search uint
}

func (f *panelFlags) register(cmd *cobra.Command) {
	cmd.Flags().UintVar(&f.team, "team", 0, "only tasks of this team")
	cmd.Flags().StringVar(&f.date, "date", "", "only tasks scheduled for this day (YYYY-MM-DD)")
	cmd.Flags().UintVar(&f.search, "task", 0, "only the task with this ID")
}

func (f *panelFlags) filter() (client.PanelFilter, error) {
	day, err := optionalDate("date", f.date)
	if err != nil {
		return client.PanelFilter{}, err
	}
	return client.PanelFilter{TeamID: optionalID(f.team), ScheduledFor: day, Search: f.search}, nil
}

// loadSnapshot reloads a board panel once and returns its snapshot.
func loadSnapshot(ctx context.Context, r *remote, sprintID uint, f client.PanelFilter) (*board.Snapshot, error) {
	panel := board.NewPanel(r.sprints, sprintID, f)
	defer panel.Close()
	if err := panel.Reload(ctx); err != nil {
		return nil, err
	}
	return panel.Snapshot(), nil
}

func newSprintBoardCmd() *cobra.Command {
	var (
		configPath string
		flags      panelFlags
	)

	cmd := &cobra.Command{
		Use:   "board <sprint-id>",
		Short: "Show the sprint's task board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := flags.filter()
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd.Context(), r, id, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderBoard(snap, terminalWidth(out)))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	flags.register(cmd)
	return cmd
}

func newSprintChartCmd() *cobra.Command {
	var (
		configPath string
		flags      panelFlags
	)

	cmd := &cobra.Command{
		Use:   "chart <sprint-id>",
		Short: "Show the sprint's burndown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := flags.filter()
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd.Context(), r, id, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n\n", headerStyle.Render(snap.Sprint.Name), mutedStyle.Render(sprintRange(snap.Sprint)))
			renderBurndown(out, snap.Burndown)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	flags.register(cmd)
	return cmd
}

func newSprintCreateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		objective  string
		start      string
		end        string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			endDate, err := parseDate("end", end)
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			s, err := r.sprints.CreateSprint(cmd.Context(), client.SprintInput{
				Name:      name,
				Objective: objective,
				StartDate: startDate,
				EndDate:   endDate,
				Status:    models.SprintStatus(status),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sprint #%d %s (%s)\n", s.ID, s.Name, sprintRange(*s))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "sprint name (required)")
	cmd.Flags().StringVar(&objective, "objective", "", "sprint objective")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "end date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&status, "status", "", "FUTURE, ACTIVE, COMPLETED or CANCELLED")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}
