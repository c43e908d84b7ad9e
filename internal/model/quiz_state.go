package model

type QuizMode string

const (
	ModeChat       QuizMode = "chat"
	ModeGeneration QuizMode = "generation"
	ModeQuiz       QuizMode = "quiz"
	ModeResults    QuizMode = "results"
	ModeReview     QuizMode = "review"
)

// QuizState 测验生命周期的可见状态
type QuizState struct {
	Mode           QuizMode      `json:"mode"`
	CurrentQuiz    *Quiz         `json:"currentQuiz"`
	CurrentSession *QuizSession  `json:"currentSession"`
	CurrentResult  *QuizResult   `json:"currentResult"`
	IsGenerating   bool          `json:"isGenerating"`
	Error          *string       `json:"error"`
	History        []QuizSession `json:"history"`
}

func InitialQuizState() QuizState {
	return QuizState{Mode: ModeChat, History: []QuizSession{}}
}

func (s QuizState) IsInQuizMode() bool {
	switch s.Mode {
	case ModeQuiz, ModeGeneration, ModeResults, ModeReview:
		return true
	}
	return false
}

func (s QuizState) IsInChatMode() bool {
	return s.Mode == ModeChat
}

func (s QuizState) HasActiveQuiz() bool {
	return s.CurrentQuiz != nil && s.CurrentSession != nil
}

func (s QuizState) HasError() bool {
	return s.Error != nil
}

// QuizStateView 状态与派生布尔值，用于接口输出
type QuizStateView struct {
	QuizState
	IsInQuizMode  bool `json:"isInQuizMode"`
	IsInChatMode  bool `json:"isInChatMode"`
	HasActiveQuiz bool `json:"hasActiveQuiz"`
	HasError      bool `json:"hasError"`
}

func (s QuizState) View() QuizStateView {
	return QuizStateView{
		QuizState:     s,
		IsInQuizMode:  s.IsInQuizMode(),
		IsInChatMode:  s.IsInChatMode(),
		HasActiveQuiz: s.HasActiveQuiz(),
		HasError:      s.HasError(),
	}
}
