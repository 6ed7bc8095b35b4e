package taskmgr

import (
	"errors"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/tasks"
	"github.com/boshu2/taskmcp/internal/wizard"
)

// statusDocuments are reported by status, in order.
var statusDocuments = []string{
	formatter.RequirementsFile,
	formatter.DesignedFile,
	formatter.TechnicalSpecFile,
	formatter.ProjectTaskFile,
	formatter.DesignFile,
}

// Snapshot is a point-in-time view of the work directory.
type Snapshot struct {
	Wizard    *WizardProgress  `json:"wizard,omitempty"`
	Documents []DocumentStatus `json:"documents"`
	Plan      *PlanProgress    `json:"plan,omitempty"`
}

// WizardProgress describes an unfinished question session.
type WizardProgress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// DocumentStatus reports whether a generated document exists.
type DocumentStatus struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// PlanProgress summarizes project_task.md.
type PlanProgress struct {
	Counts  tasks.Counts `json:"counts"`
	Current string       `json:"current,omitempty"`
}

// HasWork reports whether anything exists in the work directory.
func (s Snapshot) HasWork() bool {
	if s.Wizard != nil || s.Plan != nil {
		return true
	}
	for _, d := range s.Documents {
		if d.Present {
			return true
		}
	}
	return false
}

// Snapshot collects wizard, document and plan status.
func (m *Manager) Snapshot() (Snapshot, error) {
	var snap Snapshot

	state, err := m.wizard.Load()
	switch {
	case errors.Is(err, wizard.ErrNotStarted):
	case err != nil:
		return Snapshot{}, err
	default:
		snap.Wizard = &WizardProgress{Answered: state.CurrentQuestion, Total: state.Total()}
	}

	for _, name := range statusDocuments {
		snap.Documents = append(snap.Documents, DocumentStatus{
			Name:    name,
			Path:    m.store.Path(name),
			Present: m.store.Exists(name),
		})
	}

	plan, _, err := m.loadPlan("")
	if err != nil {
		return Snapshot{}, err
	}
	if plan != nil {
		snap.Plan = &PlanProgress{Counts: plan.Counts()}
		if cur := plan.Current(); cur != nil {
			snap.Plan.Current = cur.ID + " " + cur.Name
		}
	}
	return snap, nil
}
