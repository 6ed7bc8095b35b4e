package taskmgr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/progress"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/wizard"
)

var answers = []string{
	"재고 관리 앱",
	"바코드 스캔, 재고 알림",
	"간단한 기본 디자인으로 시작",
	"새로 개발 필요",
	"카카오 로그인",
	"iOS, Android",
	"Flutter, PostgreSQL 데이터베이스",
}

type fakeRecorder struct {
	mu       sync.Mutex
	ops      []string
	finished int
}

func (r *fakeRecorder) RecordOperation(op, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op+"/"+result)
}

func (r *fakeRecorder) RecordWizardFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *storage.FileStorage, *fakeRecorder) {
	t.Helper()
	store := storage.NewFileStorage(storage.WithBaseDir(filepath.Join(t.TempDir(), "docs")))
	rec := &fakeRecorder{}
	m := New(store, WithRecorder(rec), WithClock(func() time.Time { return fixedTime }))
	return m, store, rec
}

func dispatch(t *testing.T, m *Manager, name string, args map[string]any) Result {
	t.Helper()
	res, err := m.Dispatch(context.Background(), name, args)
	require.NoError(t, err)
	require.False(t, res.IsError, "unexpected error result: %s", res.Text)
	return res
}

func readFile(t *testing.T, store *storage.FileStorage, name string) string {
	t.Helper()
	data, err := os.ReadFile(store.Path(name))
	require.NoError(t, err)
	return string(data)
}

func completeWizard(t *testing.T, m *Manager) Result {
	t.Helper()
	dispatch(t, m, "start", nil)
	var res Result
	for _, a := range answers {
		res = dispatch(t, m, "submit-answer", map[string]any{ArgAnswer: a})
	}
	return res
}

func TestDispatch_UnknownOperation(t *testing.T) {
	m, _, rec := newTestManager(t)

	_, err := m.Dispatch(context.Background(), "task-explode", nil)
	require.ErrorIs(t, err, ErrUnknownOperation)
	assert.Equal(t, []string{"unknown/unknown"}, rec.ops)
}

func TestDispatch_MissingAnswer(t *testing.T) {
	m, store, _ := newTestManager(t)

	for _, args := range []map[string]any{nil, {}, {ArgAnswer: 42}} {
		_, err := m.Dispatch(context.Background(), "submit-answer", args)
		require.ErrorIs(t, err, ErrMissingArgument)
	}
	assert.False(t, store.Exists(wizard.DefaultStateFile))
}

func TestDispatch_Aliases(t *testing.T) {
	for _, info := range Operations() {
		op, ok := Resolve(info.Alias)
		require.True(t, ok, "alias %s", info.Alias)
		assert.Equal(t, info.Name, op)

		op, ok = Resolve(string(info.Name))
		require.True(t, ok)
		assert.Equal(t, info.Name, op)
	}
	assert.Len(t, Operations(), 8)

	_, ok := Resolve("")
	assert.False(t, ok)
}

func TestDispatch_AliasRunsCanonicalOperation(t *testing.T) {
	m, _, rec := newTestManager(t)

	res := dispatch(t, m, "task-new", nil)
	assert.Equal(t, OpStart, res.Operation)
	assert.Contains(t, res.Text, "(1/7)")
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, []string{"start/ok"}, rec.ops)
}

func TestSubmitAnswer_BeforeStart(t *testing.T) {
	m, store, _ := newTestManager(t)

	res := dispatch(t, m, "submit-answer", map[string]any{ArgAnswer: "x"})
	assert.Contains(t, res.Text, "먼저 task-new")
	assert.False(t, store.Exists(wizard.DefaultStateFile))
}

func TestWizardFlow(t *testing.T) {
	m, store, rec := newTestManager(t)

	res := dispatch(t, m, "start", nil)
	assert.Contains(t, res.Text, "(1/7)")

	for i, a := range answers[:6] {
		res = dispatch(t, m, "submit-answer", map[string]any{ArgAnswer: a})
		assert.Contains(t, res.Text, "("+string(rune('2'+i))+"/7)")
	}
	res = dispatch(t, m, "task-new-answer", map[string]any{ArgAnswer: answers[6]})
	assert.Contains(t, res.Text, "✅ 요구사항 문서가 성공적으로 생성되었습니다!")

	requirements := readFile(t, store, formatter.RequirementsFile)
	for _, a := range answers {
		assert.Contains(t, requirements, a)
	}
	assert.True(t, store.Exists(formatter.DesignedFile))
	assert.True(t, store.Exists(formatter.TechnicalSpecFile))
	assert.False(t, store.Exists(wizard.DefaultStateFile))
	assert.Equal(t, 1, rec.finished)
}

func TestPlan_MissingDocuments(t *testing.T) {
	m, store, _ := newTestManager(t)

	res := dispatch(t, m, "plan", nil)
	lines := strings.Split(res.Text, "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "❌ "), line)
	}
	assert.Contains(t, res.Text, filepath.ToSlash(store.Path(formatter.TechnicalSpecFile)))
	assert.False(t, store.Exists(formatter.ProjectTaskFile))
}

func TestTaskWalk(t *testing.T) {
	m, store, _ := newTestManager(t)
	completeWizard(t, m)

	res := dispatch(t, m, "plan", nil)
	assert.Contains(t, res.Text, "작업 계획이 생성되었습니다")
	assert.Contains(t, readFile(t, store, formatter.ProjectTaskFile), "# 프로젝트: 재고 관리 앱")

	res = dispatch(t, m, "start-task", nil)
	assert.True(t, strings.HasPrefix(res.Text, "🚀 1.1.1 기술 스택 선택 및 개발 도구 설치 시작"), res.Text)
	assert.Contains(t, res.Text, "5단계 분석")
	assert.False(t, store.Exists(formatter.DesignFile))

	plan := readFile(t, store, formatter.ProjectTaskFile)
	assert.Contains(t, plan, "[-] 1. ")
	assert.Contains(t, plan, "- [-] 1.1. ")
	assert.Contains(t, plan, "  - [-] 1.1.1. ")
	assert.Contains(t, plan, "  - [ ] 1.1.2. ")

	res = dispatch(t, m, "start-task", nil)
	assert.Contains(t, res.Text, "이미 진행중인 작업이 있습니다: 1.1.1")

	res = dispatch(t, m, "resume", nil)
	assert.Contains(t, res.Text, "현재 진행중: 1.1.1")

	res = dispatch(t, m, "complete", nil)
	assert.Contains(t, res.Text, "✅ 1.1.1 기술 스택 선택 및 개발 도구 설치 완료!")
	assert.Contains(t, res.Text, "1/30 (3%)")
	assert.Contains(t, readFile(t, store, formatter.ProjectTaskFile), "  - [x] 1.1.1. ")

	res = dispatch(t, m, "status", nil)
	assert.Contains(t, res.Text, "완료 1 / 진행중 0 / 대기 29 (전체 30, 3%)")

	res = dispatch(t, m, "complete", nil)
	assert.Equal(t, nothingActiveText, res.Text)

	res = dispatch(t, m, "task-resume", nil)
	assert.Contains(t, res.Text, "🚀 1.1.2 ")
}

func TestComplete_RollsUpAndFinishes(t *testing.T) {
	m, store, _ := newTestManager(t)
	require.NoError(t, store.WriteFile(formatter.ProjectTaskFile, []byte(
		"[ ] 1. 준비\n- [ ] 1.1. 설정\n  - [ ] 1.1.1. 설치\n  - [ ] 1.1.2. 구성\n")))

	dispatch(t, m, "start-task", nil)
	dispatch(t, m, "complete", nil)
	dispatch(t, m, "start-task", nil)
	res := dispatch(t, m, "complete", nil)
	assert.Contains(t, res.Text, allDoneText)

	assert.Equal(t, "[x] 1. 준비\n- [x] 1.1. 설정\n  - [x] 1.1.1. 설치\n  - [x] 1.1.2. 구성\n",
		readFile(t, store, formatter.ProjectTaskFile))

	res = dispatch(t, m, "start-task", nil)
	assert.Equal(t, allDoneText, res.Text)
}

func TestStartTask_WritesDesignNote(t *testing.T) {
	m, store, _ := newTestManager(t)
	require.NoError(t, store.WriteFile(formatter.ProjectTaskFile, []byte("[ ] 1. 화면\n- [ ] 1.1. 메인 화면 구현\n")))

	res := dispatch(t, m, "start-task", nil)
	assert.Contains(t, res.Text, "📝 디자인 파일")

	note := readFile(t, store, formatter.DesignFile)
	assert.Contains(t, note, "## 현재 작업: 메인 화면 구현")
	assert.Contains(t, note, "작업 일시: 2026-01-02 03:04:05")
}

func TestNoPlan(t *testing.T) {
	m, _, _ := newTestManager(t)

	assert.Equal(t, noPlanText, dispatch(t, m, "start-task", nil).Text)
	assert.Equal(t, noPlanText, dispatch(t, m, "complete", nil).Text)
	assert.Equal(t, noProjectText, dispatch(t, m, "resume", nil).Text)
}

func TestStatus(t *testing.T) {
	m, _, _ := newTestManager(t)

	assert.Equal(t, emptyWorkspaceText, dispatch(t, m, "status", nil).Text)

	dispatch(t, m, "start", nil)
	dispatch(t, m, "submit-answer", map[string]any{ArgAnswer: answers[0]})
	dispatch(t, m, "submit-answer", map[string]any{ArgAnswer: answers[1]})

	res := dispatch(t, m, "task-status", nil)
	assert.Contains(t, res.Text, "요구사항 질문: 2/7")
	assert.Contains(t, res.Text, "❌ ")
	assert.NotContains(t, res.Text, "작업 계획")

	snap, err := m.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Wizard)
	assert.Equal(t, 2, snap.Wizard.Answered)
	assert.Len(t, snap.Documents, 5)
	assert.Nil(t, snap.Plan)
}

func TestReset(t *testing.T) {
	m, store, _ := newTestManager(t)
	completeWizard(t, m)

	res := dispatch(t, m, "task-clean", nil)
	assert.Contains(t, res.Text, "프로젝트 초기화 완료")
	_, err := os.Stat(store.BaseDir())
	assert.True(t, os.IsNotExist(err))

	res = dispatch(t, m, "reset", nil)
	assert.Contains(t, res.Text, "삭제할 파일이 없습니다")
}

type failingStore struct {
	*storage.FileStorage
}

var errDiskFull = errors.New("disk full")

func (failingStore) WriteFile(string, []byte) error { return errDiskFull }
func (failingStore) WriteJSON(string, any) error    { return errDiskFull }

func TestDispatch_StorageFailureIsErrorText(t *testing.T) {
	base := storage.NewFileStorage(storage.WithBaseDir(filepath.Join(t.TempDir(), "docs")))
	rec := &fakeRecorder{}
	m := New(failingStore{base}, WithRecorder(rec))

	res, err := m.Dispatch(context.Background(), "start", nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(res.Text, "❌ start 실패"), res.Text)
	assert.Contains(t, res.Text, "disk full")
	assert.Equal(t, []string{"start/failed"}, rec.ops)

	// The slot is released after a failure.
	assert.False(t, m.Tracker().Busy())
}

type panickingStore struct {
	*storage.FileStorage
}

func (panickingStore) WriteJSON(string, any) error { panic("write exploded") }

func TestDispatch_PanicReleasesSlot(t *testing.T) {
	base := storage.NewFileStorage(storage.WithBaseDir(filepath.Join(t.TempDir(), "docs")))
	m := New(panickingStore{base})

	assert.Panics(t, func() {
		_, _ = m.Dispatch(context.Background(), "start", nil)
	})
	assert.False(t, m.Tracker().Busy())

	// The next call gets the slot instead of blocking.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := m.Dispatch(ctx, "status", nil)
	require.NoError(t, err)
	assert.False(t, res.IsError, res.Text)
}

func TestDispatch_PublishesProgress(t *testing.T) {
	m, _, _ := newTestManager(t)

	var updates []progress.Update
	sink := progress.SinkFunc(func(_ context.Context, u progress.Update) {
		updates = append(updates, u)
	})

	res, err := m.Dispatch(context.Background(), "status", nil, WithSink(sink))
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, "status 실행 중...", updates[0].Message)
	assert.False(t, updates[0].Final)
	assert.Equal(t, res.Text, updates[1].Message)
	assert.True(t, updates[1].Final)
	assert.Equal(t, res.SessionID, updates[1].SessionID)
}

func TestDispatch_WaitsForActiveSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	held, err := m.Tracker().Begin(context.Background(), "hold", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Dispatch(ctx, "status", nil)
	require.ErrorIs(t, err, context.Canceled)

	held.End(context.Background(), "")
	dispatch(t, m, "status", nil)
}

func TestProjectNameFrom(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"answer", "### 1. 앱의 목적\n\n**내용**: 할일 관리\n", "할일 관리"},
		{"undetermined", "### 1. 앱의 목적\n**내용**: 미정\n", formatter.DefaultProjectName},
		{"empty", "### 1. 앱의 목적\n**내용**:\n", formatter.DefaultProjectName},
		{"no section", "# 요구사항\n", formatter.DefaultProjectName},
		{"next section first", "### 1. 앱의 목적\n### 2. 기능\n**내용**: 로그인\n", formatter.DefaultProjectName},
		{"multi-line", "### 1. 앱의 목적\n**내용**: 재고 관리\n바코드 기반 앱\n\n### 2. 필수 기능\n**내용**: 스캔\n", "재고 관리 바코드 기반 앱"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectNameFrom([]byte(tt.doc)))
		})
	}
}
