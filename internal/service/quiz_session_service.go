package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/internal/util"
	"study_assistant_backend/pkg/logger"
	"study_assistant_backend/pkg/monitoring"
	"study_assistant_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// QuizSessionService 驱动测验生成、作答、完成与复习，并把结果反馈给个性化引擎
type QuizSessionService struct {
	QuizRepo        *repository.QuizRepository
	SessionRepo     *repository.QuizSessionRepository
	Personalization *PersonalizationService
	Analyzer        *PerformanceAnalyzer
	States          *QuizStateRegistry
	Generator       QuizGenerator

	mu           sync.RWMutex
	timeout      time.Duration
	historyLimit int
	now          func() time.Time
}

func NewQuizSessionService(
	quizRepo *repository.QuizRepository,
	sessionRepo *repository.QuizSessionRepository,
	personalization *PersonalizationService,
	analyzer *PerformanceAnalyzer,
	states *QuizStateRegistry,
	generator QuizGenerator,
	timeout time.Duration,
	historyLimit int,
) *QuizSessionService {
	return &QuizSessionService{
		QuizRepo:        quizRepo,
		SessionRepo:     sessionRepo,
		Personalization: personalization,
		Analyzer:        analyzer,
		States:          states,
		Generator:       generator,
		timeout:         timeout,
		historyLimit:    historyLimit,
		now:             time.Now,
	}
}

// SetLimits 配置热更新时调用
func (s *QuizSessionService) SetLimits(timeout time.Duration, historyLimit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	s.historyLimit = historyLimit
}

func (s *QuizSessionService) limits() (time.Duration, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout, s.historyLimit
}

func (s *QuizSessionService) State(userID uint) model.QuizState {
	return s.States.For(userID).State()
}

// History 按开始时间升序返回最近的会话
func (s *QuizSessionService) History(ctx context.Context, userID uint) ([]model.QuizSession, error) {
	_, limit := s.limits()
	sessions, err := s.SessionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load quiz history: %w", err)
	}
	return sessions, nil
}

func (s *QuizSessionService) Performance(ctx context.Context, userID uint) (model.PerformanceMetrics, error) {
	sessions, err := s.History(ctx, userID)
	if err != nil {
		return model.PerformanceMetrics{}, err
	}
	return s.Analyzer.Analyze(ctx, userID, sessions), nil
}

func (s *QuizSessionService) Recommendations(ctx context.Context, userID uint) (*model.QuizRecommendations, error) {
	sessions, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Personalization.GetQuizRecommendations(ctx, userID, sessions)
}

// Personalize 只预览个性化后的生成参数，不触发生成
func (s *QuizSessionService) Personalize(ctx context.Context, userID uint, req *model.QuizGenerationRequest) (*model.QuizGenerationRequest, error) {
	sessions, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Personalization.PersonalizeQuizRequest(ctx, userID, req, sessions)
}

// GenerateQuiz 生成失败时状态回到 chat 并记录错误信息，同一用户同时只允许一次生成
func (s *QuizSessionService) GenerateQuiz(ctx context.Context, userID uint, req *model.QuizGenerationRequest) (model.QuizState, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizSessionService.GenerateQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", int(userID)))

	machine := s.States.For(userID)
	if s.Generator == nil {
		return machine.State(), util.ErrGeneratorNotAvailable
	}
	if req == nil || strings.TrimSpace(req.Topic) == "" {
		return machine.State(), fmt.Errorf("%w: topic is required", util.ErrInvalidQuizRequest)
	}

	state, err := machine.DispatchIf(func(st model.QuizState) error {
		if st.IsGenerating {
			return util.ErrGenerationInProgress
		}
		return nil
	}, StartGeneration{})
	if err != nil {
		monitoring.QuizGenerations.WithLabelValues("rejected").Inc()
		return state, err
	}

	quiz, session, err := s.generate(ctx, userID, req)
	if err != nil {
		monitoring.QuizGenerations.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Log.Warn("Quiz generation failed", zap.Uint("user_id", userID), zap.Error(err))

		state, applied := machine.FinishGeneration(GenerationFailed{Error: err.Error()})
		if !applied {
			logger.Log.Warn("Generation failure arrived outside generation mode",
				zap.Uint("user_id", userID),
				zap.String("mode", string(state.Mode)),
			)
		}
		return state, err
	}

	monitoring.QuizGenerations.WithLabelValues("success").Inc()
	logger.Log.Info("Quiz generated",
		zap.Uint("user_id", userID),
		zap.String("quiz_id", quiz.ID),
		zap.String("session_id", session.ID),
		zap.Int("questions", len(quiz.Questions)),
	)
	state, applied := machine.FinishGeneration(GenerationSucceeded{Quiz: quiz, Session: session})
	if !applied {
		// 用户已离开生成模式，生成的会话不再有归属
		s.discardSession(ctx, session)
		return state, fmt.Errorf("%w: generation finished in %s mode", util.ErrInvalidTransition, state.Mode)
	}
	return state, nil
}

func (s *QuizSessionService) discardSession(ctx context.Context, session *model.QuizSession) {
	now := s.now()
	session.Status = model.SessionAbandoned
	session.CompletedAt = &now
	if err := s.SessionRepo.Update(ctx, session); err != nil {
		logger.Log.Error("Failed to abandon orphaned quiz session",
			zap.Uint("user_id", session.UserID),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return
	}
	monitoring.QuizSessions.WithLabelValues(string(model.SessionAbandoned)).Inc()
}

func (s *QuizSessionService) generate(ctx context.Context, userID uint, req *model.QuizGenerationRequest) (*model.Quiz, *model.QuizSession, error) {
	timeout, _ := s.limits()

	sessions, err := s.History(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	personalized, err := s.Personalization.PersonalizeQuizRequest(ctx, userID, req, sessions)
	if err != nil {
		return nil, nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := s.now()
	quiz, err := s.Generator.Generate(genCtx, personalized)
	monitoring.QuizGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, util.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", util.ErrGenerationFailed, err)
		}
		return nil, nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, nil, fmt.Errorf("%w: generator returned no questions", util.ErrGenerationFailed)
	}

	quiz.UserID = userID
	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		return nil, nil, fmt.Errorf("save quiz: %w", err)
	}

	session, err := s.newSession(ctx, userID, quiz)
	if err != nil {
		return nil, nil, err
	}
	return quiz, session, nil
}

func (s *QuizSessionService) newSession(ctx context.Context, userID uint, quiz *model.Quiz) (*model.QuizSession, error) {
	session := &model.QuizSession{
		UserID:         userID,
		QuizID:         quiz.ID,
		Status:         model.SessionInProgress,
		TotalQuestions: len(quiz.Questions),
		Answers:        []model.QuizAnswer{},
		StartedAt:      s.now(),
	}
	if err := s.SessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("save quiz session: %w", err)
	}
	return session, nil
}

// StartQuiz 重新作答已生成的测验，不经过生成阶段
func (s *QuizSessionService) StartQuiz(ctx context.Context, userID uint, quizID string) (model.QuizState, error) {
	machine := s.States.For(userID)

	quiz, err := s.QuizRepo.FindByIDAndUserID(ctx, quizID, userID)
	if err != nil {
		return machine.State(), fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return machine.State(), util.ErrQuizNotFound
	}

	session, err := s.newSession(ctx, userID, quiz)
	if err != nil {
		return machine.State(), err
	}
	return machine.Dispatch(StartQuiz{Quiz: quiz, Session: session})
}

func (s *QuizSessionService) loadActive(ctx context.Context, userID uint, sessionID string) (*model.QuizSession, *model.Quiz, error) {
	session, err := s.SessionRepo.FindByIDAndUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz session: %w", err)
	}
	if session == nil {
		return nil, nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		return nil, nil, fmt.Errorf("%w: status is %s", util.ErrSessionNotInProgress, session.Status)
	}

	quiz, err := s.QuizRepo.FindByIDAndUserID(ctx, session.QuizID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return nil, nil, util.ErrQuizNotFound
	}
	return session, quiz, nil
}

// SubmitAnswer 每道题只接受一次作答
func (s *QuizSessionService) SubmitAnswer(ctx context.Context, userID uint, sessionID string, in model.AnswerSubmission) (*model.QuizAnswer, model.QuizState, error) {
	machine := s.States.For(userID)

	session, quiz, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, machine.State(), err
	}

	question, ok := quiz.Question(in.QuestionID)
	if !ok {
		return nil, machine.State(), fmt.Errorf("%w: %s", util.ErrQuestionNotFound, in.QuestionID)
	}
	for _, a := range session.Answers {
		if a.QuestionID == in.QuestionID {
			return nil, machine.State(), fmt.Errorf("%w: %s", util.ErrAlreadyAnswered, in.QuestionID)
		}
	}

	answer := &model.QuizAnswer{
		SessionID:  session.ID,
		QuestionID: question.ID,
		Topic:      questionTopic(quiz, question),
		Answer:     in.Answer,
		IsCorrect:  gradeAnswer(question, in.Answer),
		TimeSpent:  in.TimeSpent,
	}
	if err := s.SessionRepo.AddAnswer(ctx, answer); err != nil {
		return nil, machine.State(), fmt.Errorf("save answer: %w", err)
	}

	session.Answers = append(session.Answers, *answer)
	session.TimeSpent += in.TimeSpent
	if answer.IsCorrect {
		session.Score++
	}
	if err := s.SessionRepo.Update(ctx, session); err != nil {
		return nil, machine.State(), fmt.Errorf("update quiz session: %w", err)
	}

	state, _, err := s.syncSession(machine, session)
	return answer, state, err
}

// syncSession 只有状态机当前持有该会话时才更新，applied 表示是否已派发
func (s *QuizSessionService) syncSession(machine *QuizStateMachine, session *model.QuizSession) (model.QuizState, bool, error) {
	snapshot := *session
	snapshot.Answers = append([]model.QuizAnswer(nil), session.Answers...)
	return dispatchForSession(machine, session.ID, SessionUpdated{Session: &snapshot})
}

var errSessionNotCurrent = errors.New("session is not the current quiz session")

func dispatchForSession(machine *QuizStateMachine, sessionID string, action QuizAction) (model.QuizState, bool, error) {
	state, err := machine.DispatchIf(func(st model.QuizState) error {
		if st.CurrentSession == nil || st.CurrentSession.ID != sessionID {
			return errSessionNotCurrent
		}
		return nil
	}, action)
	if errors.Is(err, errSessionNotCurrent) {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}
	return state, true, nil
}

func (s *QuizSessionService) CompleteQuiz(ctx context.Context, userID uint, sessionID string, feedback *model.QuizFeedback) (*model.QuizCompletion, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizSessionService.CompleteQuiz")
	defer span.End()

	if feedback != nil && !feedback.Valid() {
		return nil, fmt.Errorf("%w: difficulty=%q time=%q", util.ErrInvalidFeedback, feedback.DifficultyRating, feedback.TimeRating)
	}

	machine := s.States.For(userID)
	session, quiz, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	score := 0
	for _, a := range session.Answers {
		if a.IsCorrect {
			score++
		}
	}
	total := len(quiz.Questions)
	pct := 0.0
	if total > 0 {
		pct = float64(score) / float64(total) * 100
	}
	if session.TimeSpent == 0 {
		session.TimeSpent = int(now.Sub(session.StartedAt).Seconds())
	}

	session.Status = model.SessionCompleted
	session.Score = score
	session.TotalQuestions = total
	session.Percentage = &pct
	session.CompletedAt = &now
	if err := s.SessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update quiz session: %w", err)
	}

	monitoring.QuizSessions.WithLabelValues(string(model.SessionCompleted)).Inc()
	monitoring.QuizScore.Observe(pct)

	result := &model.QuizResult{
		SessionID:      session.ID,
		QuizID:         quiz.ID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     pct,
		TimeSpent:      session.TimeSpent,
		TopicBreakdown: topicBreakdown(session.Answers),
		CompletedAt:    now,
	}

	state, applied, err := s.syncSession(machine, session)
	if err != nil {
		return nil, err
	}
	if applied {
		if state, err = machine.Dispatch(QuizCompleted{Result: result}); err != nil {
			return nil, err
		}
	}

	prefs, err := s.Personalization.UpdatePreferencesFromQuizCompletion(ctx, userID, session, feedback)
	if err != nil {
		return nil, err
	}

	metrics, err := s.Performance(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz completed",
		zap.Uint("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Int("score", score),
		zap.Int("total", total),
		zap.Bool("feedback", feedback != nil),
	)
	return &model.QuizCompletion{
		Result:      result,
		Preferences: prefs,
		Performance: metrics,
		State:       state.View(),
	}, nil
}

func (s *QuizSessionService) AbandonQuiz(ctx context.Context, userID uint, sessionID string) (model.QuizState, error) {
	machine := s.States.For(userID)

	session, err := s.SessionRepo.FindByIDAndUserID(ctx, sessionID, userID)
	if err != nil {
		return machine.State(), fmt.Errorf("load quiz session: %w", err)
	}
	if session == nil {
		return machine.State(), util.ErrSessionNotFound
	}
	if session.Status != model.SessionInProgress {
		return machine.State(), fmt.Errorf("%w: status is %s", util.ErrSessionNotInProgress, session.Status)
	}

	now := s.now()
	session.Status = model.SessionAbandoned
	session.CompletedAt = &now
	if err := s.SessionRepo.Update(ctx, session); err != nil {
		return machine.State(), fmt.Errorf("update quiz session: %w", err)
	}
	monitoring.QuizSessions.WithLabelValues(string(model.SessionAbandoned)).Inc()

	state, _, err := dispatchForSession(machine, session.ID, ReturnToChat{})
	return state, err
}

func (s *QuizSessionService) StartReview(userID uint) (model.QuizState, error) {
	return s.States.For(userID).Dispatch(StartReview{})
}

func (s *QuizSessionService) ReturnToChat(userID uint) (model.QuizState, error) {
	return s.States.For(userID).Dispatch(ReturnToChat{})
}

func (s *QuizSessionService) ClearError(userID uint) (model.QuizState, error) {
	return s.States.For(userID).Dispatch(SetError{Error: nil})
}

func questionTopic(quiz *model.Quiz, q *model.QuizQuestion) string {
	if q.Topic != "" {
		return q.Topic
	}
	return quiz.Topic
}

// gradeAnswer 忽略首尾空白与大小写
func gradeAnswer(q *model.QuizQuestion, answer string) bool {
	given := strings.TrimSpace(answer)
	expected := strings.TrimSpace(q.CorrectAnswer)
	if given == "" {
		return false
	}
	if q.Type == model.QuestionTrueFalse {
		return normalizeBool(given) == normalizeBool(expected)
	}
	return strings.EqualFold(given, expected)
}

func normalizeBool(v string) string {
	switch strings.ToLower(v) {
	case "true", "t", "yes", "1":
		return "true"
	case "false", "f", "no", "0":
		return "false"
	}
	return strings.ToLower(v)
}

func topicBreakdown(answers []model.QuizAnswer) map[string]model.TopicScore {
	out := make(map[string]model.TopicScore)
	for _, a := range answers {
		if a.Topic == "" {
			continue
		}
		ts := out[a.Topic]
		ts.Total++
		if a.IsCorrect {
			ts.Correct++
		}
		out[a.Topic] = ts
	}
	return out
}
