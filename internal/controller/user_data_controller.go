package controller

import (
	"study_assistant_backend/internal/service"
	"study_assistant_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserDataController struct {
	UserDataService *service.UserDataService
}

func NewUserDataController(userDataService *service.UserDataService) *UserDataController {
	return &UserDataController{UserDataService: userDataService}
}

// @Summary 导出测验数据
// @Description 导出偏好、表现指标与全部会话，返回下载地址
// @Tags 用户数据
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response{data=model.UserDataExportResult}
// @Failure 503 {object} util.Response
// @Router /user/data/export [post]
func (c *UserDataController) Export(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	res, err := c.UserDataService.Export(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// @Summary 删除测验数据
// @Description 删除偏好、缓存指标、测验历史与导出文件
// @Tags 用户数据
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /user/data [delete]
func (c *UserDataController) Erase(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.UserDataService.Erase(ctx.Request.Context(), userID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"erased": true})
}
