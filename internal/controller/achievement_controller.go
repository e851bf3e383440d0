package controller

import (
	"edconnect_backend/internal/model"
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

type AwardAchievementRequest struct {
	UserID             uint                  `json:"userId" binding:"required"`
	Type               model.AchievementType `json:"type" binding:"required"`
	Title              string                `json:"title" binding:"required"`
	Description        string                `json:"description"`
	Progress           *int                  `json:"progress"`
	MaxProgress        *int                  `json:"maxProgress"`
	LearningPathNodeID *uint                 `json:"learningPathNodeId"`
	IsPublic           bool                  `json:"isPublic"`
}

type ProgressRequest struct {
	Progress int `json:"progress"`
}

type ShareRequest struct {
	Shared bool `json:"shared"`
}

// @Summary 获取成就列表
// @Description 按权限范围返回成就，可按用户过滤
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Param userId query int false "用户ID"
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/achievements [get]
func (c *AchievementController) List(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	achievements, err := c.AchievementService.List(user, queryUint(ctx, "userId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// @Summary 颁发成就
// @Description 教师或管理员给权限范围内的用户颁发徽章、证书或里程碑
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body AwardAchievementRequest true "成就"
// @Success 201 {object} util.Response{data=model.Achievement}
// @Failure 403 {object} util.Response
// @Router /api/achievements [post]
func (c *AchievementController) Award(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req AwardAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.Award(user, service.AwardInput{
		UserID:             req.UserID,
		Type:               req.Type,
		Title:              req.Title,
		Description:        req.Description,
		Progress:           req.Progress,
		MaxProgress:        req.MaxProgress,
		LearningPathNodeID: req.LearningPathNodeID,
		IsPublic:           req.IsPublic,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, achievement)
}

// @Summary 更新成就进度
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "成就ID"
// @Param body body ProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.Achievement}
// @Router /api/achievements/{id}/progress [patch]
func (c *AchievementController) UpdateProgress(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.UpdateProgress(user, id, req.Progress)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, achievement)
}

// @Summary 分享成就
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "成就ID"
// @Param body body ShareRequest true "是否分享"
// @Success 200 {object} util.Response{data=model.Achievement}
// @Router /api/achievements/{id}/share [patch]
func (c *AchievementController) Share(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ShareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.SetShared(user, id, req.Shared)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, achievement)
}

// @Summary 已分享的成就
// @Tags 成就系统
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/achievements/shared [get]
func (c *AchievementController) Shared(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	achievements, err := c.AchievementService.Shared(user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}
