package model

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyAdaptive Difficulty = "adaptive"
)

// DifficultyLadder 难度阶梯，不包含 adaptive
var DifficultyLadder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAdaptive:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillInBlank    QuestionType = "fill_in_blank"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionFillInBlank:
		return true
	}
	return false
}

// QuizQuestion 生成测验中的单个题目
type QuizQuestion struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Topic         string       `json:"topic,omitempty"`
}

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	UserID     uint           `gorm:"index;not null" json:"userId"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Topic      string         `gorm:"size:255" json:"topic"`
	Difficulty Difficulty     `gorm:"size:16" json:"difficulty"`
	TimeLimit  *int           `json:"timeLimit,omitempty"`
	Questions  []QuizQuestion `gorm:"serializer:json;type:text" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) Question(id string) (*QuizQuestion, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}

// QuizGenerationRequest 题目生成请求。指针字段为 nil 表示调用方未指定
type QuizGenerationRequest struct {
	Topic         string         `json:"topic"`
	Content       string         `json:"content,omitempty"`
	Difficulty    *Difficulty    `json:"difficulty,omitempty"`
	QuestionTypes []QuestionType `json:"questionTypes,omitempty"`
	QuestionCount *int           `json:"questionCount,omitempty"`
	TimeLimit     *int           `json:"timeLimit,omitempty"`
	FocusTopics   []string       `json:"focusTopics,omitempty"`
}
