package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/repository"
	"study_assistant_backend/internal/testutil"
	"study_assistant_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserDataFixture(t *testing.T) (*UserDataService, *sessionFixture, string) {
	t.Helper()
	db := testutil.DB(t)
	cache := repository.NewMemoryPerformanceCache()
	prefs := NewPreferenceService(repository.NewQuizPreferenceRepository(db), cache)
	analyzer := NewPerformanceAnalyzer(cache)
	states := NewQuizStateRegistry(false)
	quizRepo := repository.NewQuizRepository(db)
	sessionRepo := repository.NewQuizSessionRepository(db)
	gen := &fakeGenerator{}

	sessions := NewQuizSessionService(quizRepo, sessionRepo, NewPersonalizationService(prefs, analyzer), analyzer, states, gen, time.Second, 100)

	dir := t.TempDir()
	storage := NewStorageService(context.Background(), &config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: dir}})

	svc := NewUserDataService(prefs, sessions, quizRepo, sessionRepo, states, storage)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, &sessionFixture{svc: sessions, prefs: prefs, generator: gen, states: states}, dir
}

func TestUserDataService_Export(t *testing.T) {
	svc, f, dir := newUserDataFixture(t)
	ctx := context.Background()

	st, err := f.svc.GenerateQuiz(ctx, 3, &model.QuizGenerationRequest{Topic: "math"})
	require.NoError(t, err)
	_, err = f.svc.CompleteQuiz(ctx, 3, st.CurrentSession.ID, nil)
	require.NoError(t, err)

	res, err := svc.Export(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "exports/3/20260301T120000Z.json", res.ObjectName)
	assert.Equal(t, "/uploads/exports/3/20260301T120000Z.json", res.URL)
	assert.Equal(t, 1, res.Sessions)

	raw, err := os.ReadFile(filepath.Join(dir, "exports", "3", "20260301T120000Z.json"))
	require.NoError(t, err)
	var doc model.UserDataExport
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, uint(3), doc.UserID)
	require.NotNil(t, doc.Preferences)
	require.Len(t, doc.Sessions, 1)
	assert.Equal(t, model.SessionCompleted, doc.Sessions[0].Status)
	assert.Equal(t, 1, doc.Performance.CompletedSessions)
}

func TestUserDataService_Erase(t *testing.T) {
	svc, f, dir := newUserDataFixture(t)
	ctx := context.Background()

	_, err := f.svc.GenerateQuiz(ctx, 3, &model.QuizGenerationRequest{Topic: "math"})
	require.NoError(t, err)
	_, err = f.svc.GenerateQuiz(ctx, 4, &model.QuizGenerationRequest{Topic: "math"})
	require.NoError(t, err)
	_, err = f.prefs.UpdatePreferences(ctx, 3, model.UserQuizPreferencesUpdate{PreferredDifficulty: ptr(model.DifficultyHard)})
	require.NoError(t, err)
	_, err = svc.Export(ctx, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Erase(ctx, 3))
	require.NoError(t, svc.Erase(ctx, 3))

	history, err := f.svc.History(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, model.ModeChat, f.svc.State(3).Mode)
	assert.NoDirExists(t, filepath.Join(dir, "exports", "3"))

	prefs, err := f.prefs.GetPreferences(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyMedium, prefs.PreferredDifficulty)

	other, err := f.svc.History(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, other, 1)
	assert.Equal(t, model.ModeQuiz, f.svc.State(4).Mode)
}

func TestLocalStorageProvider_RejectsEscapingNames(t *testing.T) {
	p := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}
	_, err := p.path("../outside.json")
	assert.Error(t, err)
	_, err = p.path("/etc/passwd")
	assert.Error(t, err)

	got, err := p.path("exports/1/a.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Config.LocalPath, "exports", "1", "a.json"), got)
}

func TestUserDataService_EraseRejectedWhileGenerating(t *testing.T) {
	svc, f, _ := newUserDataFixture(t)
	ctx := context.Background()

	_, err := f.prefs.UpdatePreferences(ctx, 3, model.UserQuizPreferencesUpdate{PreferredDifficulty: ptr(model.DifficultyHard)})
	require.NoError(t, err)

	block := make(chan struct{})
	f.generator.mu.Lock()
	f.generator.block = block
	f.generator.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.GenerateQuiz(ctx, 3, &model.QuizGenerationRequest{Topic: "math"})
		done <- err
	}()
	require.Eventually(t, func() bool { return f.svc.State(3).IsGenerating }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, svc.Erase(ctx, 3), util.ErrGenerationInProgress)
	prefs, err := f.prefs.GetPreferences(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyHard, prefs.PreferredDifficulty)

	close(block)
	require.NoError(t, <-done)
	require.NoError(t, svc.Erase(ctx, 3))

	history, err := f.svc.History(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, history)
	st := f.svc.State(3)
	assert.Equal(t, model.ModeChat, st.Mode)
	assert.Nil(t, st.CurrentSession)
}
