package taskmgr

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/boshu2/taskmcp/internal/tasks"
)

const (
	planCreatedText    = "✅ 작업 계획이 생성되었습니다!\n🚀 task-start로 첫 번째 작업을 시작하세요."
	noPlanText         = "❌ 작업 파일이 없습니다. 먼저 task-plan으로 계획을 수립하세요."
	noProjectText      = "❌ 프로젝트 파일이 없습니다. 먼저 task-plan으로 계획을 수립하세요."
	allDoneText        = "🎉 모든 작업이 완료되었습니다!"
	nothingActiveText  = "❌ 진행중인 작업이 없습니다. task-start로 다음 작업을 시작하세요."
	emptyWorkspaceText = "✨ 진행중인 프로젝트가 없습니다. task-new로 새 프로젝트를 시작하세요."
	designUpdatedText  = "\n📝 디자인 파일(%s)이 업데이트되었습니다!"
)

func missingDocumentText(path string) string {
	return fmt.Sprintf("❌ %s 파일이 없습니다. 먼저 task-new 명령으로 요구사항을 작성해주세요.", filepath.ToSlash(path))
}

func taskStartedText(it *tasks.Item, designNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 %s %s 시작%s\n\n", it.ID, it.Name, designNote)
	fmt.Fprintf(&b, "📋 현재 작업: %s\n\n", it.Name)
	b.WriteString("5단계 분석을 적용하여 작업을 진행하세요:\n")
	b.WriteString("1. 요구사항 분석: 작업의 목적과 범위 파악\n")
	b.WriteString("2. 아키텍처 설계: 구현 방법과 구조 설계\n")
	b.WriteString("3. 확장성 검증: 미래 확장 가능성 고려\n")
	b.WriteString("4. 구현 전략: 구체적 실행 계획 수립\n")
	b.WriteString("5. 코드 구현: 실제 구현 및 테스트\n\n")
	b.WriteString("작업을 완료하면 task-complete를 실행하세요.")
	return b.String()
}

func taskInProgressText(it *tasks.Item) string {
	return fmt.Sprintf("📋 이미 진행중인 작업이 있습니다: %s %s\n\n작업을 완료하면 task-complete를 실행하세요.", it.ID, it.Name)
}

func resumeText(it *tasks.Item) string {
	return fmt.Sprintf("📋 이전 작업을 이어서 진행합니다.\n\n🚀 현재 진행중: %s %s\n\n작업을 완료하면 task-complete를 실행하세요.", it.ID, it.Name)
}

func taskCompletedText(it *tasks.Item, c tasks.Counts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s %s 완료!\n\n", it.ID, it.Name)
	fmt.Fprintf(&b, "📊 진행률: %d/%d (%d%%)\n", c.Done, c.Total, c.Percent())
	if c.Done == c.Total {
		b.WriteString(allDoneText)
	} else {
		b.WriteString("🚀 task-start로 다음 작업을 시작하세요.")
	}
	return b.String()
}

func failureText(op Operation, err error) string {
	return fmt.Sprintf("❌ %s 실패: %v", op, err)
}

func statusText(s Snapshot) string {
	if !s.HasWork() {
		return emptyWorkspaceText
	}

	var b strings.Builder
	b.WriteString("📊 프로젝트 상태\n")

	if s.Wizard != nil {
		fmt.Fprintf(&b, "\n📝 요구사항 질문: %d/%d 답변 완료\n", s.Wizard.Answered, s.Wizard.Total)
	}

	b.WriteString("\n📁 문서:\n")
	for _, d := range s.Documents {
		mark := "❌"
		if d.Present {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, filepath.ToSlash(d.Path))
	}

	if s.Plan != nil {
		c := s.Plan.Counts
		fmt.Fprintf(&b, "\n📋 작업 계획: 완료 %d / 진행중 %d / 대기 %d (전체 %d, %d%%)\n",
			c.Done, c.InProgress, c.Pending, c.Total, c.Percent())
		if s.Plan.Current != "" {
			fmt.Fprintf(&b, "🚀 현재 작업: %s\n", s.Plan.Current)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
