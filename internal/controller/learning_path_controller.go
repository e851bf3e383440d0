package controller

import (
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	LearningPathService *service.LearningPathService
}

func NewLearningPathController(learningPathService *service.LearningPathService) *LearningPathController {
	return &LearningPathController{LearningPathService: learningPathService}
}

type LearningPathNodeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type CreateLearningPathRequest struct {
	Title       string                    `json:"title" binding:"required"`
	Subject     string                    `json:"subject"`
	Description string                    `json:"description"`
	Nodes       []LearningPathNodeRequest `json:"nodes"`
}

func (r LearningPathNodeRequest) input() service.LearningPathNodeInput {
	return service.LearningPathNodeInput{Title: r.Title, Description: r.Description, Position: r.Position}
}

// @Summary 学习路径列表
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param subject query string false "科目"
// @Success 200 {object} util.Response{data=[]model.LearningPath}
// @Router /api/learning-paths [get]
func (c *LearningPathController) List(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	paths, err := c.LearningPathService.List(user, ctx.Query("subject"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// @Summary 创建学习路径
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateLearningPathRequest true "学习路径"
// @Success 201 {object} util.Response{data=model.LearningPath}
// @Router /api/learning-paths [post]
func (c *LearningPathController) Create(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req CreateLearningPathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.LearningPathInput{Title: req.Title, Subject: req.Subject, Description: req.Description}
	for _, n := range req.Nodes {
		in.Nodes = append(in.Nodes, n.input())
	}
	path, err := c.LearningPathService.Create(user, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, path)
}

// @Summary 学习路径详情
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "路径ID"
// @Success 200 {object} util.Response{data=model.LearningPath}
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) Get(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	path, err := c.LearningPathService.Get(user, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, path)
}

// @Summary 添加路径节点
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "路径ID"
// @Param body body LearningPathNodeRequest true "节点"
// @Success 201 {object} util.Response{data=model.LearningPathNode}
// @Router /api/learning-paths/{id}/nodes [post]
func (c *LearningPathController) AddNode(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req LearningPathNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	node, err := c.LearningPathService.AddNode(user, id, req.input())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, node)
}

// @Summary 完成路径节点
// @Description 学生完成节点后获得对应徽章
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "路径ID"
// @Param nodeId path int true "节点ID"
// @Success 201 {object} util.Response{data=model.Achievement}
// @Failure 409 {object} util.Response "节点已完成"
// @Router /api/learning-paths/{id}/nodes/{nodeId}/complete [post]
func (c *LearningPathController) CompleteNode(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	nodeID, ok := pathID(ctx, "nodeId")
	if !ok {
		return
	}

	badge, err := c.LearningPathService.CompleteNode(user, id, nodeID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, badge)
}
