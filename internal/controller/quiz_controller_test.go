package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/testutil"
	"study_assistant_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(_ context.Context, req *model.QuizGenerationRequest) (*model.Quiz, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &model.Quiz{
		Title: "Stub",
		Topic: req.Topic,
		Questions: []model.QuizQuestion{
			{ID: "q1", Type: model.QuestionMultipleChoice, Prompt: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: "2", Topic: "arithmetic"},
			{ID: "q2", Type: model.QuestionTrueFalse, Prompt: "sky is blue", Options: []string{"true", "false"}, CorrectAnswer: "true"},
		},
	}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router    *gin.Engine
	generator *stubGenerator
	dataDir   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	cache := repository.NewMemoryPerformanceCache()
	prefs := service.NewPreferenceService(repository.NewQuizPreferenceRepository(db), cache)
	analyzer := service.NewPerformanceAnalyzer(cache)
	states := service.NewQuizStateRegistry(false)
	quizRepo := repository.NewQuizRepository(db)
	sessionRepo := repository.NewQuizSessionRepository(db)
	gen := &stubGenerator{}
	sessions := service.NewQuizSessionService(quizRepo, sessionRepo, service.NewPersonalizationService(prefs, analyzer), analyzer, states, gen, time.Second, 50)

	dir := t.TempDir()
	storage := service.NewStorageService(context.Background(), &config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	userData := service.NewUserDataService(prefs, sessions, quizRepo, sessionRepo, states, storage)

	prefCtl := NewQuizPreferenceController(prefs)
	persCtl := NewQuizPersonalizationController(sessions)
	sessCtl := NewQuizSessionController(sessions)
	dataCtl := NewUserDataController(userData)
	health := NewHealthController(db, nil)

	r := gin.New()
	r.GET("/api/health", health.HealthCheck)
	api := r.Group("/api")
	// X-User 头模拟已认证用户
	api.Use(func(c *gin.Context) {
		if id, err := strconv.ParseUint(c.GetHeader("X-User"), 10, 64); err == nil && id > 0 {
			c.Set("user", &util.Claims{UserID: uint(id)})
		}
		c.Next()
	})
	quiz := api.Group("/quiz")
	quiz.GET("/preferences", prefCtl.GetPreferences)
	quiz.PUT("/preferences", prefCtl.UpdatePreferences)
	quiz.GET("/performance", persCtl.GetPerformance)
	quiz.GET("/recommendations", persCtl.GetRecommendations)
	quiz.POST("/personalize", persCtl.Personalize)
	quiz.GET("/state", sessCtl.GetState)
	quiz.POST("/generate", sessCtl.Generate)
	quiz.POST("/quizzes/:quizId/start", sessCtl.StartQuiz)
	quiz.POST("/sessions/:sessionId/answers", sessCtl.SubmitAnswer)
	quiz.POST("/sessions/:sessionId/complete", sessCtl.Complete)
	quiz.POST("/sessions/:sessionId/abandon", sessCtl.Abandon)
	quiz.POST("/review", sessCtl.StartReview)
	quiz.POST("/chat", sessCtl.ReturnToChat)
	quiz.DELETE("/state/error", sessCtl.ClearError)
	quiz.GET("/history", sessCtl.History)
	api.POST("/user/data/export", dataCtl.Export)
	api.DELETE("/user/data", dataCtl.Erase)

	return &testServer{router: r, generator: gen, dataDir: dir}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-User", strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decode[map[string]any](t, env)
	assert.Equal(t, "ok", data["status"])
}

func TestQuizRoutes_RequireUser(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/quiz/preferences", "/api/quiz/state", "/api/quiz/history"} {
		w, _ := s.do(t, http.MethodGet, path, 0, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestPreferences_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/quiz/preferences", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode[model.UserQuizPreferences](t, env)
	assert.Equal(t, model.DifficultyMedium, prefs.PreferredDifficulty)
	assert.Equal(t, model.DefaultQuestionCount, prefs.PreferredQuestionCount)

	w, env = s.do(t, http.MethodPut, "/api/quiz/preferences", 1, map[string]any{
		"preferredDifficulty":    "hard",
		"preferredQuestionCount": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	prefs = decode[model.UserQuizPreferences](t, env)
	assert.Equal(t, model.DifficultyHard, prefs.PreferredDifficulty)
	assert.Equal(t, 5, prefs.PreferredQuestionCount)
	assert.True(t, prefs.ShowExplanations)
}

func TestPreferences_UpdateValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body any
	}{
		{"unknown difficulty", map[string]any{"preferredDifficulty": "impossible"}},
		{"unknown question type", map[string]any{"preferredQuestionTypes": []string{"essay"}}},
		{"zero count", map[string]any{"preferredQuestionCount": 0}},
		{"count too large", map[string]any{"preferredQuestionCount": maxQuestionCount + 1}},
		{"negative time limit", map[string]any{"preferredTimeLimit": -1}},
		{"too many focus areas", map[string]any{"focusAreas": []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}},
		{"malformed json", "not an object"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodPut, "/api/quiz/preferences", 1, c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPersonalize_Preview(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/quiz/personalize", 1, map[string]any{"topic": "algebra"})
	require.Equal(t, http.StatusOK, w.Code)
	req := decode[model.QuizGenerationRequest](t, env)
	assert.Equal(t, "algebra", req.Topic)
	require.NotNil(t, req.QuestionCount)
	assert.Equal(t, model.DefaultQuestionCount, *req.QuestionCount)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/personalize", 1, map[string]any{"topic": "algebra", "difficulty": "extreme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuizFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": "math"})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	state := decode[model.QuizStateView](t, env)
	assert.True(t, state.IsInQuizMode)
	assert.True(t, state.HasActiveQuiz)
	require.NotNil(t, state.CurrentSession)
	sessionID := state.CurrentSession.ID

	w, env = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/answers", 1, map[string]any{"questionId": "q1", "answer": " 2 ", "timeSpent": 10})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	ans := decode[AnswerResponse](t, env)
	assert.True(t, ans.Answer.IsCorrect)
	assert.Len(t, ans.State.CurrentSession.Answers, 1)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/answers", 1, map[string]any{"questionId": "q1", "answer": "2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/answers", 1, map[string]any{"questionId": "nope", "answer": "2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/answers", 1, map[string]any{"answer": "2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/complete", 1, map[string]any{"difficultyRating": "meh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/complete", 1, map[string]any{"difficultyRating": "too_easy"})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	completion := decode[model.QuizCompletion](t, env)
	assert.Equal(t, 1, completion.Result.Score)
	assert.Equal(t, 2, completion.Result.TotalQuestions)
	assert.InDelta(t, 50.0, completion.Result.Percentage, 0.001)
	assert.Equal(t, model.ModeResults, completion.State.Mode)
	require.NotNil(t, completion.Preferences)
	assert.Equal(t, model.DifficultyHard, completion.Preferences.PreferredDifficulty)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/complete", 1, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/quiz/review", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ModeReview, decode[model.QuizStateView](t, env).Mode)

	w, env = s.do(t, http.MethodPost, "/api/quiz/chat", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.QuizStateView](t, env).IsInChatMode)

	w, env = s.do(t, http.MethodGet, "/api/quiz/history", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]model.QuizSession](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, model.SessionCompleted, history[0].Status)

	w, env = s.do(t, http.MethodGet, "/api/quiz/performance", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[model.PerformanceMetrics](t, env).CompletedSessions)

	w, env = s.do(t, http.MethodGet, "/api/quiz/recommendations", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[model.QuizRecommendations](t, env).MotivationalMessage)

	// 另一个用户看不到该会话
	w, _ = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/abandon", 2, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteWithoutBody(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": "math"})
	sessionID := decode[model.QuizStateView](t, env).CurrentSession.ID

	w, env := s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/complete", 1, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	completion := decode[model.QuizCompletion](t, env)
	assert.Equal(t, 0, completion.Result.Score)
}

func TestStartAndAbandon(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": "math"})
	quizID := decode[model.QuizStateView](t, env).CurrentQuiz.ID

	w, env := s.do(t, http.MethodPost, "/api/quiz/quizzes/"+quizID+"/start", 1, nil)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	sessionID := decode[model.QuizStateView](t, env).CurrentSession.ID

	w, env = s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/abandon", 1, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.True(t, decode[model.QuizStateView](t, env).IsInChatMode)

	w, _ = s.do(t, http.MethodPost, "/api/quiz/quizzes/missing/start", 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_Errors(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.generator.err = errors.New("model unavailable")
	w, env := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": "math"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, env.Message, "model unavailable")

	w, env = s.do(t, http.MethodGet, "/api/quiz/state", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[model.QuizStateView](t, env)
	assert.True(t, state.HasError)
	assert.True(t, state.IsInChatMode)

	w, env = s.do(t, http.MethodDelete, "/api/quiz/state/error", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.QuizStateView](t, env).HasError)
}

func TestUserData_ExportAndErase(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/quiz/generate", 1, map[string]any{"topic": "math"})
	sessionID := decode[model.QuizStateView](t, env).CurrentSession.ID
	w, _ := s.do(t, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/complete", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/user/data/export", 1, nil)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	res := decode[model.UserDataExportResult](t, env)
	assert.Equal(t, 1, res.Sessions)
	assert.FileExists(t, s.dataDir+"/"+res.ObjectName)

	w, _ = s.do(t, http.MethodDelete, "/api/user/data", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoFileExists(t, s.dataDir+"/"+res.ObjectName)

	w, env = s.do(t, http.MethodGet, "/api/quiz/history", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.QuizSession](t, env))
}
