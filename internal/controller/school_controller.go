package controller

import (
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/service"
	"edconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SchoolController 学校组织数据：用户、部门、班级、成绩、考勤
type SchoolController struct {
	SchoolService *service.SchoolService
}

func NewSchoolController(schoolService *service.SchoolService) *SchoolController {
	return &SchoolController{SchoolService: schoolService}
}

type CreateDepartmentRequest struct {
	Name     string `json:"name" binding:"required"`
	SchoolID uint   `json:"schoolId" binding:"required"`
}

type CreateClassRequest struct {
	Name       string `json:"name" binding:"required"`
	Subject    string `json:"subject"`
	EducatorID uint   `json:"educatorId"`
}

type EnrollRequest struct {
	StudentID uint `json:"studentId" binding:"required"`
}

type RecordGradeRequest struct {
	ClassID    uint      `json:"classId" binding:"required"`
	StudentID  uint      `json:"studentId" binding:"required"`
	Assignment string    `json:"assignment"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"maxScore" binding:"required"`
	GradedAt   time.Time `json:"gradedAt"`
}

type RecordAttendanceRequest struct {
	ClassID   uint                   `json:"classId" binding:"required"`
	StudentID uint                   `json:"studentId" binding:"required"`
	Date      time.Time              `json:"date"`
	Status    model.AttendanceStatus `json:"status" binding:"required"`
}

// @Summary 用户列表
// @Description 按权限范围返回用户，可按角色过滤
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Param role query string false "角色"
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/users [get]
func (c *SchoolController) ListUsers(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	users, err := c.SchoolService.ListUsers(user, model.UserRole(ctx.Query("role")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// @Summary 部门列表
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Department}
// @Router /api/departments [get]
func (c *SchoolController) ListDepartments(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	departments, err := c.SchoolService.ListDepartments(user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, departments)
}

// @Summary 创建部门
// @Description 学区或学校管理员在管辖学校下创建部门
// @Tags 学校管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateDepartmentRequest true "部门"
// @Success 201 {object} util.Response{data=model.Department}
// @Failure 403 {object} util.Response
// @Router /api/departments [post]
func (c *SchoolController) CreateDepartment(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req CreateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	department, err := c.SchoolService.CreateDepartment(user, req.Name, req.SchoolID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, department)
}

// @Summary 班级列表
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/classes [get]
func (c *SchoolController) ListClasses(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	classes, err := c.SchoolService.ListClasses(user)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// @Summary 创建班级
// @Tags 学校管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateClassRequest true "班级"
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/classes [post]
func (c *SchoolController) CreateClass(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.SchoolService.CreateClass(user, service.ClassInput{
		Name:       req.Name,
		Subject:    req.Subject,
		EducatorID: req.EducatorID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// @Summary 班级学生名单
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "班级ID"
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/classes/{id}/enrollments [get]
func (c *SchoolController) ListEnrollments(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	enrollments, err := c.SchoolService.ListEnrollments(user, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// @Summary 学生选课
// @Tags 学校管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "班级ID"
// @Param body body EnrollRequest true "学生"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Router /api/classes/{id}/enrollments [post]
func (c *SchoolController) Enroll(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.SchoolService.Enroll(user, id, req.StudentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary 成绩列表
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Param classId query int false "班级ID"
// @Success 200 {object} util.Response{data=[]model.Grade}
// @Router /api/grades [get]
func (c *SchoolController) ListGrades(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	grades, err := c.SchoolService.ListGrades(user, queryUint(ctx, "classId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}

// @Summary 录入成绩
// @Tags 学校管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body RecordGradeRequest true "成绩"
// @Success 201 {object} util.Response{data=model.Grade}
// @Router /api/grades [post]
func (c *SchoolController) RecordGrade(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req RecordGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	grade, err := c.SchoolService.RecordGrade(user, service.GradeInput{
		ClassID:    req.ClassID,
		StudentID:  req.StudentID,
		Assignment: req.Assignment,
		Score:      req.Score,
		MaxScore:   req.MaxScore,
		GradedAt:   req.GradedAt,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, grade)
}

// @Summary 考勤列表
// @Tags 学校管理
// @Produce json
// @Security ApiKeyAuth
// @Param classId query int false "班级ID"
// @Success 200 {object} util.Response{data=[]model.Attendance}
// @Router /api/attendance [get]
func (c *SchoolController) ListAttendance(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}

	records, err := c.SchoolService.ListAttendance(user, queryUint(ctx, "classId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// @Summary 记录考勤
// @Tags 学校管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body RecordAttendanceRequest true "考勤"
// @Success 201 {object} util.Response{data=model.Attendance}
// @Router /api/attendance [post]
func (c *SchoolController) RecordAttendance(ctx *gin.Context) {
	user, ok := actor(ctx)
	if !ok {
		return
	}
	var req RecordAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.SchoolService.RecordAttendance(user, service.AttendanceInput{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Date:      req.Date,
		Status:    req.Status,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, record)
}
