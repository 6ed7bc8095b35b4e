// Package wizard implements the requirement question wizard: a fixed,
// ordered list of questions whose progress is persisted between independent
// invocations and which renders the requirement documents once every
// question is answered.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/worker"
)

// Outcome classifies a wizard reply.
type Outcome string

const (
	OutcomeQuestion        Outcome = "question"
	OutcomeFinished        Outcome = "finished"
	OutcomeNotStarted      Outcome = "not_started"
	OutcomeAlreadyComplete Outcome = "already_complete"
	OutcomeReset           Outcome = "reset"
	OutcomeNothingToReset  Outcome = "nothing_to_reset"
)

// Reply is the user-facing result of a wizard operation.
type Reply struct {
	Outcome Outcome
	Text    string

	// Index is the 0-based question now awaiting an answer (OutcomeQuestion only).
	Index int
	Total int

	// Documents lists the written document paths (OutcomeFinished only).
	Documents []string
}

// Wizard drives the question sequence against a Storage.
// It holds no session state in memory; every call loads and stores the record.
type Wizard struct {
	store     storage.Storage
	renderer  *formatter.Renderer
	pool      *worker.Pool[formatter.Document, string]
	stateFile string
	questions []Question
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithStateFile overrides the state record name.
func WithStateFile(name string) Option {
	return func(w *Wizard) {
		if name != "" {
			w.stateFile = name
		}
	}
}

// WithQuestions replaces the default question list.
func WithQuestions(qs []Question) Option {
	return func(w *Wizard) {
		if len(qs) > 0 {
			w.questions = qs
		}
	}
}

// WithRenderer sets the document renderer.
func WithRenderer(r *formatter.Renderer) Option {
	return func(w *Wizard) {
		if r != nil {
			w.renderer = r
		}
	}
}

// New creates a Wizard persisting to store.
func New(store storage.Storage, opts ...Option) *Wizard {
	w := &Wizard{
		store:     store,
		stateFile: DefaultStateFile,
		questions: DefaultQuestions(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.renderer == nil {
		w.renderer = formatter.MustNewRenderer()
	}
	w.pool = worker.NewPool[formatter.Document, string](3)
	return w
}

// StateFile returns the state record name.
func (w *Wizard) StateFile() string {
	return w.stateFile
}

// Start discards any previous session and returns the first question.
func (w *Wizard) Start(ctx context.Context) (Reply, error) {
	if err := w.store.Init(); err != nil {
		return Reply{}, fmt.Errorf("start wizard: %w", err)
	}

	state := NewState(w.questions)
	if err := w.save(state); err != nil {
		return Reply{}, fmt.Errorf("start wizard: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("total", state.Total()).Msg("wizard started")
	return w.questionReply(state), nil
}

// Load returns the persisted state, or ErrNotStarted when there is none.
func (w *Wizard) Load() (*State, error) {
	if !w.store.Exists(w.stateFile) {
		return nil, ErrNotStarted
	}
	var state State
	if err := w.store.ReadJSON(w.stateFile, &state); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotStarted
		}
		return nil, fmt.Errorf("load wizard state: %w", err)
	}
	return &state, nil
}

// SubmitAnswer records answer for the current question. It returns the next
// question, or renders the documents and deletes the record after the last one.
// Workflow conditions (not started, already complete) are reported through
// Reply.Outcome, never as errors.
func (w *Wizard) SubmitAnswer(ctx context.Context, answer string) (Reply, error) {
	logger := zerolog.Ctx(ctx)

	state, err := w.Load()
	if errors.Is(err, ErrNotStarted) {
		return Reply{Outcome: OutcomeNotStarted, Text: notStartedText}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	if err := state.Record(answer); err != nil {
		if errors.Is(err, ErrAlreadyComplete) {
			// A record at the terminal index is stale; drop it so a new
			// start is not confused by it.
			if rmErr := w.store.Remove(w.stateFile); rmErr != nil {
				logger.Warn().Err(rmErr).Msg("remove stale wizard state")
			}
			return Reply{Outcome: OutcomeAlreadyComplete, Text: alreadyCompleteText}, nil
		}
		return Reply{}, fmt.Errorf("submit answer: %w", err)
	}

	if !state.Done() {
		if err := w.save(state); err != nil {
			return Reply{}, fmt.Errorf("submit answer: %w", err)
		}
		logger.Debug().Int("question", state.CurrentQuestion).Msg("answer recorded")
		return w.questionReply(state), nil
	}

	paths, err := w.finalize(ctx, state)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Outcome: OutcomeFinished, Text: finishedText(paths), Total: state.Total(), Documents: paths}, nil
}

// finalize writes the three documents and deletes the record. The record
// still holds the previous index, so a failed write can be retried.
func (w *Wizard) finalize(ctx context.Context, state *State) ([]string, error) {
	docs, err := w.renderer.RequirementDocuments(formatter.Answers(state.Answers))
	if err != nil {
		return nil, fmt.Errorf("render documents: %w", err)
	}

	results := w.pool.Process(ctx, docs, func(_ context.Context, d formatter.Document) (string, error) {
		if err := w.store.WriteFile(d.Name, d.Content); err != nil {
			return "", err
		}
		return w.store.Path(d.Name), nil
	})
	if err := worker.FirstError(results); err != nil {
		return nil, fmt.Errorf("write documents: %w", err)
	}

	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Value
	}

	if err := w.store.Remove(w.stateFile); err != nil {
		// Documents are complete; the record still points at the last
		// question, so a repeated answer regenerates them.
		zerolog.Ctx(ctx).Warn().Err(err).Msg("remove wizard state")
	}

	zerolog.Ctx(ctx).Info().Strs("documents", paths).Msg("requirement documents written")
	return paths, nil
}

// Reset deletes the whole work directory. Calling it again reports that
// nothing was left to delete.
func (w *Wizard) Reset(ctx context.Context) (Reply, error) {
	removed, err := w.store.RemoveAll()
	if err != nil {
		return Reply{}, fmt.Errorf("reset: %w", err)
	}
	if !removed {
		return Reply{Outcome: OutcomeNothingToReset, Text: nothingToCleanText}, nil
	}
	zerolog.Ctx(ctx).Info().Str("dir", w.store.BaseDir()).Msg("work directory removed")
	return Reply{Outcome: OutcomeReset, Text: resetText(w.store.BaseDir())}, nil
}

func (w *Wizard) save(state *State) error {
	return w.store.WriteJSON(w.stateFile, state)
}

func (w *Wizard) questionReply(state *State) Reply {
	q := state.Questions[state.CurrentQuestion]
	return Reply{
		Outcome: OutcomeQuestion,
		Text:    questionText(q, state.CurrentQuestion, state.Total()),
		Index:   state.CurrentQuestion,
		Total:   state.Total(),
	}
}
