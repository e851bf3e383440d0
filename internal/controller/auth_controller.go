package controller

import (
	"strings"

	"edconnect_backend/internal/middleware"
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"
	"edconnect_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService *service.AuthService
	Store       sessions.Store
	SessionName string
}

func NewAuthController(authService *service.AuthService, store sessions.Store, sessionName string) *AuthController {
	return &AuthController{
		AuthService: authService,
		Store:       store,
		SessionName: sessionName,
	}
}

type RegisterRequest struct {
	Username   string         `json:"username" binding:"required,min=3,max=64"`
	Email      string         `json:"email" binding:"required,email"`
	Password   string         `json:"password" binding:"required,min=8"`
	FullName   string         `json:"fullName" binding:"required"`
	Role       model.UserRole `json:"role"`
	SchoolID   uint           `json:"schoolId"`
	GradeLevel int            `json:"gradeLevel"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// startSession 登录成功后写入会话 cookie
func (c *AuthController) startSession(ctx *gin.Context, user *model.User) error {
	session, err := c.Store.New(ctx.Request, c.SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values[middleware.SessionUserKey] = user.ID
	return session.Save(ctx.Request, ctx.Writer)
}

// Register godoc
// @Summary 用户注册
// @Description 注册学生或教师账号，成功后自动登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "注册信息"
// @Success 201 {object} util.Response{data=model.User} "注册成功"
// @Failure 400 {object} util.Response "用户名或邮箱已存在"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   strings.TrimSpace(req.FullName),
		Role:       req.Role,
		SchoolID:   util.UintPtr(req.SchoolID),
		GradeLevel: req.GradeLevel,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := c.startSession(ctx, user); err != nil {
		logger.Log.Warn("Failed to start session after register", zap.Uint("userId", user.ID), zap.Error(err))
	}
	util.Created(ctx, user)
}

// Login godoc
// @Summary 用户登录
// @Description 用户名或邮箱登录，返回 JWT 并设置会话 cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, token, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := c.startSession(ctx, user); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout godoc
// @Summary 退出登录
// @Description 清除会话 cookie，并吊销请求携带的 JWT
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response "成功"
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if session, err := c.Store.Get(ctx.Request, c.SessionName); err == nil {
		delete(session.Values, middleware.SessionUserKey)
		session.Options.MaxAge = -1
		if err := session.Save(ctx.Request, ctx.Writer); err != nil {
			logger.Log.Warn("Failed to clear session cookie", zap.Error(err))
		}
	}

	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if err := c.AuthService.Logout(ctx.Request.Context(), token); err != nil {
			// 过期或无效的 token 没有吊销的必要
			logger.Log.Debug("Token not revoked on logout", zap.Error(err))
		}
	}

	util.Success(ctx, nil)
}

// CurrentUser godoc
// @Summary 获取当前用户
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/user [get]
func (c *AuthController) CurrentUser(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	util.Success(ctx, user)
}
