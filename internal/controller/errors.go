package controller

import (
	"errors"
	"net/http"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为 HTTP 状态码，未知错误统一 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidInput),
		errors.Is(err, util.ErrInvalidRole),
		errors.Is(err, util.ErrInvalidProgress),
		errors.Is(err, util.ErrUsernameTaken),
		errors.Is(err, util.ErrEmailRegistered):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials), errors.Is(err, util.ErrTokenRevoked):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrNotFound), errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrSessionEnded), errors.Is(err, util.ErrAlreadyExists):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrTutorResponse):
		util.ErrorWithData(ctx, http.StatusBadGateway, err.Error(), gin.H{"retryable": true})
	default:
		util.LogInternalError(ctx, err)
	}
}

// actor 取出认证中间件放入的当前用户，缺失时直接返回 401
func actor(ctx *gin.Context) (*model.User, bool) {
	user := util.GetActorFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}

// pathID 解析路径参数中的数字 ID
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryUint(ctx *gin.Context, name string) uint {
	return util.MustParseUint(ctx.Query(name))
}
