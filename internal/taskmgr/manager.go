// Package taskmgr implements the task manager operations and the dispatcher
// that maps operation names onto them. Every operation reads and writes the
// work directory through storage and returns user-facing text.
package taskmgr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/progress"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/tasks"
	"github.com/boshu2/taskmcp/internal/wizard"
)

// designKeywords mark a task that gets a design.md note when started.
var designKeywords = []string{"UI", "UX", "화면", "디자인", "인터페이스"}

// requirementDocuments must all exist before a plan can be made.
var requirementDocuments = []string{
	formatter.RequirementsFile,
	formatter.DesignedFile,
	formatter.TechnicalSpecFile,
}

// Recorder receives per-operation measurements.
type Recorder interface {
	RecordOperation(operation, result string, duration time.Duration)
	RecordWizardFinished()
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string, time.Duration) {}
func (nopRecorder) RecordWizardFinished()                         {}

// Manager owns the operations. It keeps no workflow state in memory.
type Manager struct {
	store    storage.Storage
	wizard   *wizard.Wizard
	renderer *formatter.Renderer
	tracker  *progress.Tracker
	recorder Recorder
	now      func() time.Time

	wizardOpts []wizard.Option
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithTracker shares a progress tracker between managers.
func WithTracker(t *progress.Tracker) Option {
	return func(m *Manager) {
		if t != nil {
			m.tracker = t
		}
	}
}

// WithClock overrides the time source used for generated notes.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithWizardOptions passes options through to the question wizard.
func WithWizardOptions(opts ...wizard.Option) Option {
	return func(m *Manager) {
		m.wizardOpts = append(m.wizardOpts, opts...)
	}
}

// New creates a Manager over store.
func New(store storage.Storage, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		renderer: formatter.MustNewRenderer(),
		tracker:  progress.NewTracker(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.wizard = wizard.New(store, append([]wizard.Option{wizard.WithRenderer(m.renderer)}, m.wizardOpts...)...)
	return m
}

// Wizard returns the question wizard backing start and submit-answer.
func (m *Manager) Wizard() *wizard.Wizard {
	return m.wizard
}

// Tracker returns the progress tracker.
func (m *Manager) Tracker() *progress.Tracker {
	return m.tracker
}

// Start begins a new question session.
func (m *Manager) Start(ctx context.Context) (string, error) {
	reply, err := m.wizard.Start(ctx)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// SubmitAnswer records answer for the current question.
func (m *Manager) SubmitAnswer(ctx context.Context, answer string) (string, error) {
	reply, err := m.wizard.SubmitAnswer(ctx, answer)
	if err != nil {
		return "", err
	}
	if reply.Outcome == wizard.OutcomeFinished {
		m.recorder.RecordWizardFinished()
	}
	return reply.Text, nil
}

// Plan writes project_task.md once the requirement documents exist.
func (m *Manager) Plan(ctx context.Context) (string, error) {
	var missing []string
	for _, name := range requirementDocuments {
		if !m.store.Exists(name) {
			missing = append(missing, missingDocumentText(m.store.Path(name)))
		}
	}
	if len(missing) > 0 {
		return strings.Join(missing, "\n"), nil
	}

	requirements, err := m.store.ReadFile(formatter.RequirementsFile)
	if err != nil {
		return "", err
	}
	name := projectNameFrom(requirements)

	content, err := m.renderer.ProjectPlan(name)
	if err != nil {
		return "", err
	}
	if err := m.store.WriteFile(formatter.ProjectTaskFile, content); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("project", name).Msg("task plan written")
	return planCreatedText, nil
}

// StartTask reports the task in progress, or starts the next pending one.
func (m *Manager) StartTask(ctx context.Context) (string, error) {
	plan, text, err := m.loadPlan(noPlanText)
	if plan == nil {
		return text, err
	}

	if cur := plan.Current(); cur != nil {
		return taskInProgressText(cur), nil
	}
	return m.startNext(ctx, plan)
}

func (m *Manager) startNext(ctx context.Context, plan *tasks.Plan) (string, error) {
	next := plan.NextPending()
	if next == nil {
		return allDoneText, nil
	}

	if _, err := plan.Start(next.ID); err != nil {
		return "", err
	}
	if err := m.store.WriteFile(formatter.ProjectTaskFile, plan.Bytes()); err != nil {
		return "", err
	}

	note := ""
	if needsDesign(next.Name) {
		content, err := m.renderer.DesignNote(next.Name, m.now())
		if err != nil {
			return "", err
		}
		if err := m.store.WriteFile(formatter.DesignFile, content); err != nil {
			return "", err
		}
		note = fmt.Sprintf(designUpdatedText, m.store.Path(formatter.DesignFile))
	}

	zerolog.Ctx(ctx).Info().Str("task", next.ID).Msg("task started")
	return taskStartedText(next, note), nil
}

// Complete marks the task in progress as done.
func (m *Manager) Complete(ctx context.Context) (string, error) {
	plan, text, err := m.loadPlan(noPlanText)
	if plan == nil {
		return text, err
	}

	cur := plan.Current()
	if cur == nil {
		return nothingActiveText, nil
	}
	if _, err := plan.Complete(cur.ID); err != nil {
		return "", err
	}
	if err := m.store.WriteFile(formatter.ProjectTaskFile, plan.Bytes()); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("task", cur.ID).Msg("task completed")
	return taskCompletedText(cur, plan.Counts()), nil
}

// Resume reports the task in progress, or starts the next one.
func (m *Manager) Resume(ctx context.Context) (string, error) {
	plan, text, err := m.loadPlan(noProjectText)
	if plan == nil {
		return text, err
	}
	if cur := plan.Current(); cur != nil {
		return resumeText(cur), nil
	}
	return m.startNext(ctx, plan)
}

// Status summarizes the work directory.
func (m *Manager) Status(context.Context) (string, error) {
	snap, err := m.Snapshot()
	if err != nil {
		return "", err
	}
	return statusText(snap), nil
}

// Reset deletes the work directory.
func (m *Manager) Reset(ctx context.Context) (string, error) {
	reply, err := m.wizard.Reset(ctx)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// loadPlan reads project_task.md. When there is no usable plan it returns a
// nil plan and the text to show instead.
func (m *Manager) loadPlan(missingText string) (*tasks.Plan, string, error) {
	data, err := m.store.ReadFile(formatter.ProjectTaskFile)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, missingText, nil
	}
	if err != nil {
		return nil, "", err
	}

	plan, err := tasks.Parse(data)
	if errors.Is(err, tasks.ErrNoPlanItems) {
		return nil, allDoneText, nil
	}
	if err != nil {
		return nil, "", err
	}
	return plan, "", nil
}

func needsDesign(name string) bool {
	for _, kw := range designKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// projectNameFrom reads the purpose answer back out of requirements.md. A
// multi-line answer runs up to the next heading and is joined into one line.
func projectNameFrom(requirements []byte) string {
	const (
		purposeHeading = "### 1. 앱의 목적"
		contentPrefix  = "**내용**:"
	)

	var (
		inPurpose, inContent bool
		parts                []string
	)
	sc := bufio.NewScanner(bytes.NewReader(requirements))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == purposeHeading:
			inPurpose = true
		case inPurpose && strings.HasPrefix(line, "#"):
			return joinProjectName(parts)
		case inContent:
			if line != "" {
				parts = append(parts, line)
			}
		case inPurpose && strings.HasPrefix(line, contentPrefix):
			inContent = true
			if first := strings.TrimSpace(strings.TrimPrefix(line, contentPrefix)); first != "" {
				parts = append(parts, first)
			}
		}
	}
	return joinProjectName(parts)
}

func joinProjectName(parts []string) string {
	name := strings.Join(parts, " ")
	if name == "" || name == formatter.Undetermined {
		return formatter.DefaultProjectName
	}
	return name
}
