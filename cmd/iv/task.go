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

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Sprint task commands",
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskTransitionCmd("start", "Move a pending task to in progress"))
	cmd.AddCommand(newTaskTransitionCmd("complete", "Mark an in-progress task done"))
	cmd.AddCommand(newTaskFailCmd())
	cmd.AddCommand(newTaskInspectCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskReasonsCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		configPath string
		sprintID   uint
		backlogID  uint
		teamID     uint
		date       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a backlog item to a sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := optionalDate("date", date)
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			t, err := r.sprints.CreateTask(cmd.Context(), client.TaskInput{
				SprintID:     sprintID,
				BacklogID:    backlogID,
				TeamID:       optionalID(teamID),
				ScheduledFor: day,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task #%d %s %s\n", t.ID, t.DisplayName(), badge(t.StatusCode.Meta()))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().UintVar(&sprintID, "sprint", 0, "sprint ID (required)")
	cmd.Flags().UintVar(&backlogID, "backlog", 0, "backlog item ID (required)")
	cmd.Flags().UintVar(&teamID, "team", 0, "team ID")
	cmd.Flags().StringVar(&date, "date", "", "scheduled day YYYY-MM-DD")
	cmd.MarkFlagRequired("sprint")
	cmd.MarkFlagRequired("backlog")
	return cmd
}

// taskSession loads a task and a board engine bound to its sprint's panel.
type taskSession struct {
	task   models.SprintTask
	panel  *board.Panel
	engine *board.Engine
}

func openTaskSession(ctx context.Context, r *remote, taskID uint, out io.Writer) (*taskSession, error) {
	t, err := r.sprints.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	panel := board.NewPanel(r.sprints, t.SprintID, client.PanelFilter{})
	engine := board.NewEngine(r.sprints, panel, func(n board.Notice) {
		if n.Kind == board.NoticeError {
			fmt.Fprintf(out, "%s %s\n", warnStyle.Render("✗"), n.Message)
			return
		}
		fmt.Fprintf(out, "✓ %s\n", n.Message)
	})
	return &taskSession{task: *t, panel: panel, engine: engine}, nil
}

// report prints where the task landed after the engine's reload.
func (s *taskSession) report(out io.Writer) {
	snap := s.panel.Snapshot()
	if snap == nil {
		return
	}
	if t, ok := snap.Board.Find(s.task.ID); ok {
		fmt.Fprintf(out, "Task #%d is now %s\n", t.ID, badge(t.StatusCode.Meta()))
	}
	fmt.Fprintf(out, "%s %s\n", snap.Sprint.Name, progressBar(snap.Progress, 20))
}

func newTaskTransitionCmd(action, short string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   action + " <task-id>",
		Short: short,
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
			out := cmd.OutOrStdout()
			s, err := openTaskSession(cmd.Context(), r, id, out)
			if err != nil {
				return err
			}
			if action == "start" {
				err = s.engine.Start(cmd.Context(), s.task)
			} else {
				err = s.engine.Complete(cmd.Context(), s.task)
			}
			s.report(out)
			return err
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newTaskFailCmd() *cobra.Command {
	var (
		configPath  string
		reasonID    uint
		observation string
	)

	cmd := &cobra.Command{
		Use:   "fail <task-id>",
		Short: "Mark an in-progress task as not executed",
		Long:  "Moves an in-progress task to failed. A non-execution reason is required; list them with 'iv task reasons'.",
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
			out := cmd.OutOrStdout()
			s, err := openTaskSession(cmd.Context(), r, id, out)
			if err != nil {
				return err
			}
			err = s.engine.Fail(cmd.Context(), s.task, reasonID, observation)
			s.report(out)
			return err
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().UintVar(&reasonID, "reason", 0, "non-execution reason ID")
	cmd.Flags().StringVar(&observation, "obs", "", "free-text observation")
	return cmd
}

func newTaskInspectCmd() *cobra.Command {
	var (
		configPath string
		reject     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <task-id>",
		Short: "Approve or reject a task awaiting inspection",
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
			t, err := r.sprints.ReviewInspection(cmd.Context(), id, !reject)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is now %s\n", t.ID, badge(t.StatusCode.Meta()))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the work and send the task back to pending")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Remove a task from its sprint",
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
			out := cmd.OutOrStdout()
			s, err := openTaskSession(cmd.Context(), r, id, out)
			if err != nil {
				return err
			}
			err = s.engine.Delete(cmd.Context(), id)
			s.report(out)
			return err
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newTaskReasonsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reasons",
		Short: "List non-execution reasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			reasons, err := r.sprints.Reasons(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, reason := range reasons {
				fmt.Fprintf(out, "  %3d  %-24s %s\n", reason.ID, reason.Name, mutedStyle.Render(reason.Category))
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
