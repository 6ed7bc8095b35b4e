package taskmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/boshu2/taskmcp/internal/metrics"
	"github.com/boshu2/taskmcp/internal/progress"
)

// Operation is a canonical operation name.
type Operation string

const (
	OpStart        Operation = "start"
	OpSubmitAnswer Operation = "submit-answer"
	OpPlan         Operation = "plan"
	OpStartTask    Operation = "start-task"
	OpComplete     Operation = "complete"
	OpResume       Operation = "resume"
	OpStatus       Operation = "status"
	OpReset        Operation = "reset"
)

// ArgAnswer is the argument carrying the submitted answer.
const ArgAnswer = "answer"

// unknownLabel keeps arbitrary names out of metric labels.
const unknownLabel = "unknown"

// Info describes an operation for registration in outer surfaces.
type Info struct {
	Name        Operation
	Alias       string
	Description string
	// Arguments lists required string arguments.
	Arguments []string
}

type handler func(m *Manager, ctx context.Context, args map[string]any) (string, error)

type operation struct {
	Info
	run handler
}

var operations = []operation{
	{Info{OpStart, "task-new", "새 프로젝트 요구사항 생성 (첫 질문부터 시작)", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Start(ctx) }},
	{Info{OpSubmitAnswer, "task-new-answer", "현재 질문에 대한 답변 제출", []string{ArgAnswer}},
		func(m *Manager, ctx context.Context, args map[string]any) (string, error) {
			return m.SubmitAnswer(ctx, args[ArgAnswer].(string))
		}},
	{Info{OpPlan, "task-plan", "프로젝트 계획 수립", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Plan(ctx) }},
	{Info{OpStartTask, "task-start", "작업 시작", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.StartTask(ctx) }},
	{Info{OpComplete, "task-complete", "진행중인 작업 완료 처리", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Complete(ctx) }},
	{Info{OpResume, "task-resume", "작업 재개", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Resume(ctx) }},
	{Info{OpStatus, "task-status", "진행 상황 확인", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Status(ctx) }},
	{Info{OpReset, "task-clean", "프로젝트 초기화 (작업 디렉토리 삭제)", nil},
		func(m *Manager, ctx context.Context, _ map[string]any) (string, error) { return m.Reset(ctx) }},
}

var byName = func() map[string]*operation {
	idx := make(map[string]*operation, 2*len(operations))
	for i := range operations {
		op := &operations[i]
		idx[string(op.Name)] = op
		idx[op.Alias] = op
	}
	return idx
}()

// Operations lists every operation in canonical order.
func Operations() []Info {
	infos := make([]Info, len(operations))
	for i, op := range operations {
		infos[i] = op.Info
	}
	return infos
}

// Resolve maps a canonical name or alias to its operation.
func Resolve(name string) (Operation, bool) {
	op, ok := byName[name]
	if !ok {
		return "", false
	}
	return op.Name, true
}

// Result is the outcome of one dispatched operation.
type Result struct {
	Operation Operation
	Text      string
	// IsError marks an I/O failure reported as text.
	IsError   bool
	SessionID string
	Duration  time.Duration
}

type callConfig struct {
	sink progress.Sink
}

// CallOption configures a single dispatch.
type CallOption func(*callConfig)

// WithSink forwards the call's progress updates to sink.
func WithSink(sink progress.Sink) CallOption {
	return func(c *callConfig) { c.sink = sink }
}

// Dispatch runs the operation named name. Workflow conditions and storage
// failures come back as Result text; an unknown name or a missing argument
// is returned as an error. Calls are serialized: a second call waits for the
// first to finish, or returns the context error.
func (m *Manager) Dispatch(ctx context.Context, name string, args map[string]any, opts ...CallOption) (Result, error) {
	op, ok := byName[name]
	if !ok {
		m.recorder.RecordOperation(unknownLabel, metrics.ResultUnknown, 0)
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	for _, arg := range op.Arguments {
		if _, ok := args[arg].(string); !ok {
			return Result{}, fmt.Errorf("%w: %s requires string argument %q", ErrMissingArgument, op.Name, arg)
		}
	}

	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	session, err := m.tracker.Begin(ctx, string(op.Name), cfg.sink)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch %s: %w", op.Name, err)
	}
	// End is idempotent; this only fires when run panics.
	defer session.End(ctx, failureText(op.Name, errInterrupted))

	logger := zerolog.Ctx(ctx).With().
		Str("operation", string(op.Name)).
		Str("session", session.ID).
		Logger()
	ctx = logger.WithContext(ctx)

	if name != string(op.Name) {
		logger.Debug().Str("alias", name).Msg("resolved alias")
	}
	_ = session.Publish(ctx, fmt.Sprintf("%s 실행 중...", op.Name)) //nolint:errcheck // session is fresh

	text, err := op.run(m, ctx, args)
	res := Result{Operation: op.Name, Text: text, SessionID: session.ID}
	outcome := metrics.ResultOK
	if err != nil {
		logger.Error().Err(err).Msg("operation failed")
		res.Text = failureText(op.Name, err)
		res.IsError = true
		outcome = metrics.ResultFailed
	}
	res.Duration = session.Elapsed()
	session.End(ctx, res.Text)

	m.recorder.RecordOperation(string(op.Name), outcome, res.Duration)
	logger.Debug().Dur("duration", res.Duration).Bool("is_error", res.IsError).Msg("operation finished")
	return res, nil
}
