package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
)

// AskFunc asks one question interactively and returns the answer.
type AskFunc func(ctx context.Context, q Question, index, total int) (string, error)

// HuhAsk asks q with a multi-line huh text field.
func HuhAsk(ctx context.Context, q Question, index, total int) (string, error) {
	var answer string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(q.Question).
				Description(q.Example).
				Value(&answer),
		).Title(fmt.Sprintf("새 프로젝트 요구사항 (%d/%d)", index+1, total)),
	).RunWithContext(ctx)

	if errors.Is(err, huh.ErrUserAborted) {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

// RunInteractive answers the remaining questions through ask. A session in
// progress is resumed unless fresh is set, in which case it starts over.
// A record left at the terminal index is stale and also starts over.
// Cancelling leaves the record at the last answered question.
func (w *Wizard) RunInteractive(ctx context.Context, ask AskFunc, fresh bool) (Reply, error) {
	state, err := w.Load()
	stale := err == nil && state.Done()
	if stale {
		zerolog.Ctx(ctx).Debug().Int("question", state.CurrentQuestion).Msg("stale wizard state, starting over")
	}
	if fresh || stale || errors.Is(err, ErrNotStarted) {
		if _, err := w.Start(ctx); err != nil {
			return Reply{}, err
		}
		state, err = w.Load()
	}
	if err != nil {
		return Reply{}, err
	}

	for {
		q, err := state.Current()
		if err != nil {
			return Reply{}, err
		}

		answer, err := ask(ctx, q, state.CurrentQuestion, state.Total())
		if err != nil {
			return Reply{}, err
		}

		reply, err := w.SubmitAnswer(ctx, answer)
		if err != nil {
			return Reply{}, err
		}
		if reply.Outcome != OutcomeQuestion {
			return reply, nil
		}

		if state, err = w.Load(); err != nil {
			return Reply{}, err
		}
	}
}
