package util

import "errors"

var (
	ErrQuizNotFound          = errors.New("quiz not found")
	ErrSessionNotFound       = errors.New("quiz session not found")
	ErrSessionNotInProgress  = errors.New("quiz session is not in progress")
	ErrQuestionNotFound      = errors.New("question not found in quiz")
	ErrAlreadyAnswered       = errors.New("question already answered in this session")
	ErrGenerationFailed      = errors.New("quiz generation failed")
	ErrGenerationInProgress  = errors.New("quiz generation already in progress")
	ErrInvalidTransition     = errors.New("invalid quiz state transition")
	ErrInvalidFeedback       = errors.New("invalid quiz feedback")
	ErrInvalidQuizRequest    = errors.New("invalid quiz generation request")
	ErrStorageNotConfigured  = errors.New("storage provider not configured")
	ErrGeneratorNotAvailable = errors.New("quiz generator not configured")
)
