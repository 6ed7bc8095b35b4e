// Package formatter renders the task manager's markdown documents from the
// embedded templates and formats command output for the terminal.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/boshu2/taskmcp/embedded"
)

// Document file names inside the work directory.
const (
	RequirementsFile  = "requirements.md"
	DesignedFile      = "designed.md"
	TechnicalSpecFile = "technical_spec.md"
	ProjectTaskFile   = "project_task.md"
	DesignFile        = "design.md"
)

// Undetermined is substituted for questions that were never answered.
const Undetermined = "미정"

// DefaultProjectName is used when no purpose answer is available.
const DefaultProjectName = "새 프로젝트"

// Fallbacks for the technical spec when the related answer is empty.
const (
	defaultFrontend         = "React/Next.js"
	defaultBackend          = "Node.js/Express"
	defaultDatabase         = "PostgreSQL"
	defaultExternalServices = "Google, Facebook"
	defaultFrontendCore     = "React 18 + TypeScript"
	defaultBackendRuntime   = "Node.js 18 + TypeScript"
	databaseKeyword         = "데이터베이스"
)

// Document is one rendered file.
type Document struct {
	Name    string
	Content []byte
}

// Answers maps question keys to the collected answers.
type Answers map[string]string

// Answer returns the answer for key, or Undetermined when it was never given.
// An empty answer is kept as is.
func (a Answers) Answer(key string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return Undetermined
}

// ProjectName returns the purpose answer, or DefaultProjectName.
func (a Answers) ProjectName() string {
	if v := strings.TrimSpace(a["purpose"]); v != "" {
		return v
	}
	return DefaultProjectName
}

// techSpecData carries the derived stack hints for technical_spec.md.
type techSpecData struct {
	Answers
	Frontend         string
	Backend          string
	Database         string
	ExternalServices string
	FrontendCore     string
	BackendRuntime   string
}

type planData struct {
	ProjectName string
}

type designData struct {
	TaskName  string
	StartedAt time.Time
}

// Renderer executes the embedded document templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("documents").Option("missingkey=zero").ParseFS(embedded.TemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustNewRenderer is like NewRenderer but panics on a template error.
// The templates are compiled into the binary, so failure is a build defect.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// RequirementDocuments renders requirements.md, designed.md and
// technical_spec.md from the wizard answers, in that order.
func (r *Renderer) RequirementDocuments(answers Answers) ([]Document, error) {
	if answers == nil {
		answers = Answers{}
	}
	inputs := []struct {
		name string
		data any
	}{
		{RequirementsFile, answers},
		{DesignedFile, answers},
		{TechnicalSpecFile, newTechSpecData(answers)},
	}

	docs := make([]Document, 0, len(inputs))
	for _, in := range inputs {
		content, err := r.execute(in.name, in.data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Name: in.name, Content: content})
	}
	return docs, nil
}

// ProjectPlan renders the five-phase project_task.md.
func (r *Renderer) ProjectPlan(projectName string) ([]byte, error) {
	if strings.TrimSpace(projectName) == "" {
		projectName = DefaultProjectName
	}
	return r.execute(ProjectTaskFile, planData{ProjectName: projectName})
}

// DesignNote renders design.md for a UI related task.
func (r *Renderer) DesignNote(taskName string, startedAt time.Time) ([]byte, error) {
	return r.execute(DesignFile, designData{TaskName: taskName, StartedAt: startedAt})
}

func newTechSpecData(a Answers) techSpecData {
	techStack := a["tech_stack"]
	server := a["server"]

	d := techSpecData{
		Answers:          a,
		Frontend:         orDefault(firstPart(techStack), defaultFrontend),
		Backend:          orDefault(firstPart(server), defaultBackend),
		Database:         defaultDatabase,
		ExternalServices: orDefault(strings.TrimSpace(a["external_services"]), defaultExternalServices),
		FrontendCore:     orDefault(firstPart(techStack), defaultFrontendCore),
		BackendRuntime:   orDefault(firstPart(server), defaultBackendRuntime),
	}
	if strings.Contains(techStack, databaseKeyword) {
		d.Database = orDefault(lastPart(techStack), defaultDatabase)
	}
	return d
}

// firstPart returns the first comma separated element of s, trimmed.
func firstPart(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}

// lastPart returns the last comma separated element of s, trimmed.
func lastPart(s string) string {
	return strings.TrimSpace(s[strings.LastIndex(s, ",")+1:])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
