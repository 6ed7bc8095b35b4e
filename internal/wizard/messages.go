package wizard

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	notStartedText      = "❌ 먼저 task-new(start) 명령으로 질문을 시작해주세요."
	alreadyCompleteText = "❌ 이미 모든 질문에 답변하셨습니다.\n\n🚀 새로 시작하려면 task-new를 실행하세요."
	nothingToCleanText  = "✨ 삭제할 파일이 없습니다. 프로젝트가 이미 깨끗합니다."
)

var documentDescriptions = []string{
	"프로젝트 요구사항 요약",
	"디자인 가이드",
	"기술 사양서",
}

func questionText(q Question, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📱 새 프로젝트 요구사항 생성 (%d/%d)\n\n", index+1, total)
	fmt.Fprintf(&b, "**질문 %d**: %s\n\n", index+1, q.Question)
	if q.Example != "" {
		b.WriteString(q.Example)
		b.WriteString("\n\n")
	}
	b.WriteString("답변을 입력해주세요. 답변을 task-new-answer(submit-answer)로 전달하면 다음 질문으로 넘어갑니다.")
	return b.String()
}

func finishedText(paths []string) string {
	var b strings.Builder
	b.WriteString("✅ 요구사항 문서가 성공적으로 생성되었습니다!\n\n📁 생성된 파일들:\n")
	for i, p := range paths {
		desc := ""
		if i < len(documentDescriptions) {
			desc = ": " + documentDescriptions[i]
		}
		fmt.Fprintf(&b, "- %s%s\n", filepath.ToSlash(p), desc)
	}
	b.WriteString("\n🚀 다음 단계: task-plan 명령어를 실행하여 프로젝트 계획을 수립하세요.")
	return b.String()
}

func resetText(dir string) string {
	return fmt.Sprintf("🧹 프로젝트 초기화 완료!\n\n삭제된 파일:\n✅ 📁 %s/ 디렉토리\n\n🚀 새 프로젝트를 시작하려면 task-new를 실행하세요.",
		strings.TrimSuffix(filepath.ToSlash(dir), "/"))
}
