package kanban

import (
	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
)

// Action is a user-driven task transition.
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionFail     Action = "fail"
)

type edge struct {
	from models.TaskStatus
	to   models.TaskStatus
}

// Transitions maps every action to its single legal source and target.
// INSPECTION is never a source or target: backend rules own it.
var Transitions = map[Action]edge{
	ActionStart:    {from: models.StatusPending, to: models.StatusInProgress},
	ActionComplete: {from: models.StatusInProgress, to: models.StatusDone},
	ActionFail:     {from: models.StatusInProgress, to: models.StatusFailed},
}

// Target returns the status an action moves a task to, or a conflict error
// when the action is illegal from the task's current status.
func Target(from models.TaskStatus, a Action) (models.TaskStatus, error) {
	e, ok := Transitions[a]
	if !ok {
		return "", apperr.Validation("unknown action " + string(a))
	}
	if from != e.from {
		return "", apperr.Conflict("cannot %s a task that is %s", a, label(from))
	}
	return e.to, nil
}

// Allowed lists the actions legal from status s.
func Allowed(s models.TaskStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionStart, ActionComplete, ActionFail} {
		if Transitions[a].from == s {
			out = append(out, a)
		}
	}
	return out
}

// ActionFor maps a requested target status back to the action that
// produces it.
func ActionFor(to models.TaskStatus) (Action, bool) {
	for a, e := range Transitions {
		if e.to == to {
			return a, true
		}
	}
	return "", false
}

func label(s models.TaskStatus) string {
	if m, ok := models.TaskStatusMeta[s]; ok {
		return m.Label
	}
	return string(s)
}
