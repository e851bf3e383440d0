package controller

import (
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// EducatorPerformance godoc
// @Summary 教师表现统计
// @Description 按权限范围汇总每位教师的班级数、学生数、平均成绩和出勤率
// @Tags 数据分析
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EducatorPerformance}
// @Failure 403 {object} util.Response
// @Router /api/analytics/educator-performance [get]
func (c *AnalyticsController) EducatorPerformance(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	stats, err := c.AnalyticsService.EducatorPerformance(user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
