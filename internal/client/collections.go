package client

import "github.com/industryview/industryview/internal/models"

// Employees returns the employee collection client.
func Employees(c *Client, scope Scope, allowed []int) *Resource[models.Employee] {
	return NewResource(c, "/employees", ResourceOpts[models.Employee]{
		Scope:          scope,
		AllowedPerPage: allowed,
		Required: func(e models.Employee) []string {
			return missing(
				field{"projectId", e.ProjectID == 0},
				field{"name", e.Name == ""},
				field{"email", e.Email == ""},
			)
		},
	})
}

// Incidents returns the safety incident collection client.
func Incidents(c *Client, scope Scope, allowed []int) *Resource[models.SafetyIncident] {
	return NewResource(c, "/safety-incidents", ResourceOpts[models.SafetyIncident]{
		Scope:          scope,
		AllowedPerPage: allowed,
		Required: func(i models.SafetyIncident) []string {
			return missing(
				field{"projectId", i.ProjectID == 0},
				field{"title", i.Title == ""},
				field{"severity", i.Severity == ""},
				field{"occurredAt", i.OccurredAt.IsZero()},
			)
		},
	})
}

// Backlogs returns the backlog collection client.
func Backlogs(c *Client, scope Scope, allowed []int) *Resource[models.Backlog] {
	return NewResource(c, "/backlogs", ResourceOpts[models.Backlog]{
		Scope:          scope,
		AllowedPerPage: allowed,
		Required: func(b models.Backlog) []string {
			return missing(
				field{"projectId", b.ProjectID == 0},
				field{"description", b.Description == ""},
			)
		},
	})
}

// Teams returns the team collection client.
func Teams(c *Client, scope Scope, allowed []int) *Resource[models.Team] {
	return NewResource(c, "/teams", ResourceOpts[models.Team]{
		Scope:          scope,
		AllowedPerPage: allowed,
		Required: func(t models.Team) []string {
			return missing(
				field{"projectId", t.ProjectID == 0},
				field{"name", t.Name == ""},
			)
		},
	})
}

type field struct {
	name  string
	empty bool
}

func missing(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if f.empty {
			out = append(out, f.name)
		}
	}
	return out
}
