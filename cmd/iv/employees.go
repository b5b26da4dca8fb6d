package main

import (
	"fmt"

	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/models"
	"github.com/spf13/cobra"
)

func employeesResource(r *remote) *client.Resource[models.Employee] {
	return client.Employees(r.client, r.scope, r.cfg.Pagination.AllowedPerPage)
}

func newEmployeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Project workforce commands",
	}

	cmd.AddCommand(newEmployeesListCmd())
	cmd.AddCommand(newEmployeesAddCmd())
	cmd.AddCommand(newEmployeesEditCmd())
	cmd.AddCommand(newRemoveCmd("employee", employeesResource))
	return cmd
}

func employeeRow(e models.Employee) string {
	status := ""
	if !e.Active {
		status = mutedStyle.Render(" (inactive)")
	}
	return fmt.Sprintf("  #%-4d %-24s %-28s %s%s", e.ID, truncate(e.Name, 24), truncate(e.Email, 28), e.Role, status)
}

func newEmployeesListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
	}
	flags := newListFlags(cmd, map[string]string{
		"search": "name contains",
		"role":   "exact role",
		"active": "true or false",
	})
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := loadRemote(configPath)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), cmd.OutOrStdout(), employeesResource(r), r.cfg.Pagination.DefaultPerPage, flags, employeeRow)
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newEmployeesAddCmd() *cobra.Command {
	var (
		configPath string
		e          models.Employee
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			e.ProjectID = r.scope.ProjectID
			e.Active = true
			saved, err := runCreate(cmd.Context(), cmd.OutOrStdout(), employeesResource(r), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added employee #%d %s\n", saved.ID, saved.Name)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&e.Name, "name", "", "full name")
	cmd.Flags().StringVar(&e.Email, "email", "", "email address")
	cmd.Flags().StringVar(&e.Role, "role", "", "job role")
	return cmd
}

func newEmployeesEditCmd() *cobra.Command {
	var (
		configPath string
		name       string
		email      string
		role       string
		active     bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an employee's details",
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
			changed := cmd.Flags().Changed
			saved, err := runEdit(cmd.Context(), cmd.OutOrStdout(), employeesResource(r), id, func(e *models.Employee) {
				if changed("name") {
					e.Name = name
				}
				if changed("email") {
					e.Email = email
				}
				if changed("role") {
					e.Role = role
				}
				if changed("active") {
					e.Active = active
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated employee #%d %s\n", saved.ID, saved.Name)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "job role")
	cmd.Flags().BoolVar(&active, "active", true, "whether the employee is active")
	return cmd
}
