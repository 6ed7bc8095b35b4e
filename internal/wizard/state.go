package wizard

import "fmt"

// DefaultStateFile is the state record name inside the work directory.
const DefaultStateFile = ".task_new_state.json"

// Question is one wizard prompt.
type Question struct {
	Key      string `json:"key"`
	Question string `json:"question"`
	Example  string `json:"example"`
}

// State is the persisted wizard session record.
//
// Invariant: 0 <= CurrentQuestion < len(Questions) whenever the record is
// on disk. The index reaches len(Questions) only in memory, right before the
// documents are rendered and the record is deleted.
type State struct {
	Questions       []Question        `json:"questions"`
	CurrentQuestion int               `json:"current_question"`
	Answers         map[string]string `json:"answers"`
}

// DefaultQuestions returns the seven requirement questions in order.
func DefaultQuestions() []Question {
	return []Question{
		{
			Key:      "purpose",
			Question: "앱의 주요 목적은 무엇인가요?",
			Example:  "예시: 온라인 쇼핑몰, 할일 관리, 소셜 네트워킹 등",
		},
		{
			Key:      "features",
			Question: "필수 기능은 어떤 것들이 있나요?",
			Example:  "예시: 사용자 로그인, 데이터 저장, 결제 처리, 알림 등",
		},
		{
			Key:      "design",
			Question: "디자인은 제공되나요, 아니면 제작이 필요하신가요?",
			Example:  "예시:\n- 이미 디자인 파일(Figma, XD 등)이 있음\n- 간단한 기본 디자인으로 시작\n- 완전 커스텀 디자인 필요",
		},
		{
			Key:      "server",
			Question: "서버(API)는 제공되나요, 아니면 개발을 맡겨주실 건가요?",
			Example:  "예시:\n- 기존 API 서버 있음 (URL 제공)\n- 새로 개발 필요\n- Firebase, Supabase 등 BaaS 사용",
		},
		{
			Key:      "external_services",
			Question: "외부 서비스 연동이 필요한가요?",
			Example:  "예시: 소셜 로그인, 결제 게이트웨이, 지도 API, 푸시 알림 등",
		},
		{
			Key:      "platform",
			Question: "iOS, Android 중 어떤 플랫폼이 필요한가요?",
			Example:  "예시: iOS만, Android만, 둘 다, 웹앱도 포함",
		},
		{
			Key:      "tech_stack",
			Question: "원하시는 기술 스택이나 제한사항이 있나요?",
			Example:  "예시: React Native, Flutter, 네이티브 개발, 특정 라이브러리 사용/금지",
		},
	}
}

// NewState returns a fresh record at question 0 with no answers.
func NewState(questions []Question) *State {
	qs := make([]Question, len(questions))
	copy(qs, questions)
	return &State{
		Questions:       qs,
		CurrentQuestion: 0,
		Answers:         map[string]string{},
	}
}

// Total returns the number of questions.
func (s *State) Total() int {
	return len(s.Questions)
}

// Done reports whether every question has been answered.
func (s *State) Done() bool {
	return s.CurrentQuestion >= len(s.Questions)
}

// Current returns the question awaiting an answer.
func (s *State) Current() (Question, error) {
	if err := s.validate(); err != nil {
		return Question{}, err
	}
	return s.Questions[s.CurrentQuestion], nil
}

// Record stores answer under the current question's key and advances.
func (s *State) Record(answer string) error {
	q, err := s.Current()
	if err != nil {
		return err
	}
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	s.Answers[q.Key] = answer
	s.CurrentQuestion++
	return nil
}

func (s *State) validate() error {
	if s.CurrentQuestion < 0 {
		return fmt.Errorf("%w: current_question %d", ErrInvalidState, s.CurrentQuestion)
	}
	if s.Done() {
		return ErrAlreadyComplete
	}
	return nil
}
