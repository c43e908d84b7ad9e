package controller

import (
	"errors"
	"study_assistant_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误映射为 HTTP 响应
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrQuestionNotFound):
		util.NotFoundWithMessage(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidFeedback),
		errors.Is(err, util.ErrInvalidQuizRequest):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSessionNotInProgress),
		errors.Is(err, util.ErrAlreadyAnswered),
		errors.Is(err, util.ErrGenerationInProgress),
		errors.Is(err, util.ErrInvalidTransition):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrGenerationFailed):
		util.BadGateway(ctx, err.Error())
	case errors.Is(err, util.ErrGeneratorNotAvailable),
		errors.Is(err, util.ErrStorageNotConfigured):
		util.ServiceUnavailable(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return user.UserID, true
}
