package service

import (
	"fmt"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/logger"
	"study_assistant_backend/pkg/monitoring"
	"sync"

	"go.uber.org/zap"
)

// QuizAction 状态机可接受的事件，只能由本包中的类型实现
type QuizAction interface {
	Name() string
	quizAction()
}

type StartGeneration struct{}

type GenerationSucceeded struct {
	Quiz    *model.Quiz
	Session *model.QuizSession
}

type GenerationFailed struct {
	Error string
}

type StartQuiz struct {
	Quiz    *model.Quiz
	Session *model.QuizSession
}

type SessionUpdated struct {
	Session *model.QuizSession
}

type QuizCompleted struct {
	Result *model.QuizResult
}

type StartReview struct{}

type ReturnToChat struct{}

// SetError Error 为 nil 时清除错误
type SetError struct {
	Error *string
}

func (StartGeneration) Name() string     { return "start_generation" }
func (GenerationSucceeded) Name() string { return "generation_succeeded" }
func (GenerationFailed) Name() string    { return "generation_failed" }
func (StartQuiz) Name() string           { return "start_quiz" }
func (SessionUpdated) Name() string      { return "session_updated" }
func (QuizCompleted) Name() string       { return "quiz_completed" }
func (StartReview) Name() string         { return "start_review" }
func (ReturnToChat) Name() string        { return "return_to_chat" }
func (SetError) Name() string            { return "set_error" }

func (StartGeneration) quizAction()     {}
func (GenerationSucceeded) quizAction() {}
func (GenerationFailed) quizAction()    {}
func (StartQuiz) quizAction()           {}
func (SessionUpdated) quizAction()      {}
func (QuizCompleted) quizAction()       {}
func (StartReview) quizAction()         {}
func (ReturnToChat) quizAction()        {}
func (SetError) quizAction()            {}

// ReduceQuizState 纯函数：任何事件在任何模式下都会被接受
func ReduceQuizState(state model.QuizState, action QuizAction) model.QuizState {
	switch a := action.(type) {
	case StartGeneration:
		state.Mode = model.ModeGeneration
		state.IsGenerating = true
		state.CurrentQuiz = nil
		state.CurrentSession = nil
		state.CurrentResult = nil
		state.Error = nil
	case GenerationSucceeded:
		state.Mode = model.ModeQuiz
		state.CurrentQuiz = a.Quiz
		state.CurrentSession = a.Session
		state.IsGenerating = false
	case GenerationFailed:
		msg := a.Error
		state.Mode = model.ModeChat
		state.Error = &msg
		state.IsGenerating = false
		state.CurrentQuiz = nil
		state.CurrentSession = nil
		state.CurrentResult = nil
	case StartQuiz:
		state.Mode = model.ModeQuiz
		state.CurrentQuiz = a.Quiz
		state.CurrentSession = a.Session
		state.CurrentResult = nil
		state.Error = nil
	case SessionUpdated:
		state.CurrentSession = a.Session
	case QuizCompleted:
		state.Mode = model.ModeResults
		state.CurrentResult = a.Result
		if state.CurrentSession != nil {
			history := make([]model.QuizSession, 0, len(state.History)+1)
			history = append(history, state.History...)
			state.History = append(history, *state.CurrentSession)
		}
	case StartReview:
		state.Mode = model.ModeReview
	case ReturnToChat:
		state.Mode = model.ModeChat
		state.CurrentQuiz = nil
		state.CurrentSession = nil
		state.CurrentResult = nil
		state.Error = nil
	case SetError:
		if a.Error == nil {
			state.Error = nil
		} else {
			msg := *a.Error
			state.Error = &msg
		}
	}
	return state
}

// allowedSources 严格模式下各事件允许的来源模式，nil 表示任意模式
var allowedSources = map[string][]model.QuizMode{
	StartGeneration{}.Name():     nil,
	GenerationSucceeded{}.Name(): {model.ModeGeneration},
	GenerationFailed{}.Name():    {model.ModeGeneration},
	StartQuiz{}.Name():           nil,
	SessionUpdated{}.Name():      {model.ModeQuiz},
	QuizCompleted{}.Name():       {model.ModeQuiz},
	StartReview{}.Name():         {model.ModeResults, model.ModeReview},
	ReturnToChat{}.Name():        nil,
	SetError{}.Name():            nil,
}

func transitionAllowed(from model.QuizMode, action QuizAction) bool {
	sources := allowedSources[action.Name()]
	if sources == nil {
		return true
	}
	for _, m := range sources {
		if m == from {
			return true
		}
	}
	return false
}

// QuizStateMachine 单个用户的测验状态，支持并发访问
type QuizStateMachine struct {
	mu      sync.Mutex
	state   model.QuizState
	strict  bool
	retired bool // 已被 registry 移除，不再接受事件
}

func NewQuizStateMachine(strict bool) *QuizStateMachine {
	return &QuizStateMachine{state: model.InitialQuizState(), strict: strict}
}

// Dispatch 严格模式下拒绝非法来源模式的事件，状态保持不变
func (m *QuizStateMachine) Dispatch(action QuizAction) (model.QuizState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatchLocked(action)
}

// DispatchIf check 返回错误时不派发事件，检查与派发在同一把锁内完成
func (m *QuizStateMachine) DispatchIf(check func(model.QuizState) error, action QuizAction) (model.QuizState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(m.state); err != nil {
		return m.state, err
	}
	return m.dispatchLocked(action)
}

// FinishGeneration 派发生成结束事件。严格模式拒绝时仍清除 IsGenerating，
// 此时 applied 为 false，调用方负责处理已生成的测验
func (m *QuizStateMachine) FinishGeneration(action QuizAction) (model.QuizState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next, err := m.dispatchLocked(action); err == nil {
		return next, true
	}
	m.state.IsGenerating = false
	return m.state, false
}

func (m *QuizStateMachine) dispatchLocked(action QuizAction) (model.QuizState, error) {
	from := m.state.Mode
	if m.retired {
		return m.state, fmt.Errorf("%w: quiz state was reset", util.ErrInvalidTransition)
	}
	if m.strict && !transitionAllowed(from, action) {
		monitoring.QuizTransitionsRejected.WithLabelValues(action.Name()).Inc()
		logger.Log.Warn("Rejected quiz state transition",
			zap.String("from", string(from)),
			zap.String("action", action.Name()),
		)
		return m.state, fmt.Errorf("%w: %s from %s", util.ErrInvalidTransition, action.Name(), from)
	}

	m.state = ReduceQuizState(m.state, action)
	logger.Log.Debug("Quiz state transition",
		zap.String("from", string(from)),
		zap.String("to", string(m.state.Mode)),
		zap.String("action", action.Name()),
	)
	return m.state, nil
}

func (m *QuizStateMachine) State() model.QuizState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *QuizStateMachine) SetStrict(strict bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strict = strict
}

// QuizStateRegistry 每个用户一个状态机，用户之间不共享可变状态
type QuizStateRegistry struct {
	mu       sync.Mutex
	machines map[uint]*QuizStateMachine
	strict   bool
}

func NewQuizStateRegistry(strict bool) *QuizStateRegistry {
	return &QuizStateRegistry{machines: make(map[uint]*QuizStateMachine), strict: strict}
}

func (r *QuizStateRegistry) For(userID uint) *QuizStateMachine {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[userID]
	if !ok {
		m = NewQuizStateMachine(r.strict)
		r.machines[userID] = m
	}
	return m
}

// ResetIfIdle 正在生成时返回 ErrGenerationInProgress 且不做任何修改。
// 被移除的状态机会拒绝之后的事件，仍持有旧引用的请求无法再写入状态
func (r *QuizStateRegistry) ResetIfIdle(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[userID]
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsGenerating {
		return util.ErrGenerationInProgress
	}
	m.retired = true
	delete(r.machines, userID)
	return nil
}

// SetStrict 同时作用于已存在的状态机，配置热更新时调用
func (r *QuizStateRegistry) SetStrict(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strict = strict
	for _, m := range r.machines {
		m.SetStrict(strict)
	}
}
