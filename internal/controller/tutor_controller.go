package controller

import (
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"
	"edconnect_backend/pkg/privacy"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

type SendMessageRequest struct {
	SessionID      uint              `json:"sessionId" binding:"required"`
	Message        string            `json:"message" binding:"required"`
	StudentContext *privacy.Identity `json:"studentContext"`
}

type EndSessionRequest struct {
	SessionID uint `json:"sessionId" binding:"required"`
}

type ChatRequest struct {
	Subject        string                `json:"subject"`
	Topic          string                `json:"topic"`
	Messages       []service.ChatMessage `json:"messages" binding:"required"`
	StudentContext *privacy.Identity     `json:"studentContext"`
}

// GetSession godoc
// @Summary 获取或创建辅导会话
// @Description 返回学生在该科目下进行中的会话，没有则新建
// @Tags AI辅导
// @Produce  json
// @Security ApiKeyAuth
// @Param   subject query string true "科目"
// @Param   topic query string false "主题"
// @Success 200 {object} util.Response{data=model.TutoringSession}
// @Success 201 {object} util.Response{data=model.TutoringSession}
// @Router /api/tutor/session [get]
func (c *TutorController) GetSession(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	session, created, err := c.TutorService.GetOrCreateSession(user, ctx.Query("subject"), ctx.Query("topic"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, session)
		return
	}
	util.Success(ctx, session)
}

// SendMessage godoc
// @Summary 发送辅导消息
// @Description 消息脱敏后连同历史对话发送给 AI 导师
// @Tags AI辅导
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SendMessageRequest true "消息"
// @Success 200 {object} util.Response{data=service.TutorReply}
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "会话已结束"
// @Failure 502 {object} util.Response "AI 服务不可用，可重试"
// @Router /api/tutor/message [post]
func (c *TutorController) SendMessage(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.TutorService.SendMessage(ctx.Request.Context(), user, req.SessionID, req.Message, req.StudentContext)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

// EndSession godoc
// @Summary 结束辅导会话
// @Description 生成会话总结和表现评分，会话只能结束一次
// @Tags AI辅导
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body EndSessionRequest true "会话"
// @Success 200 {object} util.Response{data=model.TutoringSession}
// @Failure 409 {object} util.Response "会话已结束"
// @Router /api/tutor/session/end [post]
func (c *TutorController) EndSession(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req EndSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.TutorService.EndSession(ctx.Request.Context(), user, req.SessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// Chat godoc
// @Summary 无状态辅导对话
// @Description 客户端提供完整对话，服务端不保存
// @Tags AI辅导
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ChatRequest true "对话"
// @Success 200 {object} util.Response{data=service.ChatReply}
// @Failure 502 {object} util.Response "AI 服务不可用，可重试"
// @Router /api/tutor/chat [post]
func (c *TutorController) Chat(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.TutorService.Chat(ctx.Request.Context(), user, req.Subject, req.Topic, req.Messages, req.StudentContext)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

// ListSessions godoc
// @Summary 辅导会话列表
// @Description 学生只能看到自己的会话，教师和管理员按权限范围查看
// @Tags AI辅导
// @Produce  json
// @Security ApiKeyAuth
// @Param   studentId query int false "学生ID"
// @Success 200 {object} util.Response{data=[]model.TutoringSession}
// @Router /api/tutor/sessions [get]
func (c *TutorController) ListSessions(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	sessions, err := c.TutorService.ListSessions(user, queryUint(ctx, "studentId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// @Summary 会话消息记录
// @Tags AI辅导
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=[]model.TutoringMessage}
// @Router /api/tutor/sessions/{id}/messages [get]
func (c *TutorController) ListMessages(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	messages, err := c.TutorService.ListMessages(user, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, messages)
}
