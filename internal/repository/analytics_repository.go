package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// EducatorStats 单个教师在 scope 内的汇总
type EducatorStats struct {
	EducatorID     uint
	Classes        int64
	Students       int64
	AverageGrade   float64
	GradedCount    int64
	AttendanceRate float64
	AttendanceDays int64
}

type educatorCount struct {
	EducatorID uint
	Total      int64
}

type educatorAverage struct {
	EducatorID uint
	Average    float64
	Total      int64
}

type educatorAttendance struct {
	EducatorID uint
	Attended   int64
	Total      int64
}

// EducatorPerformance 按教师聚合 scope 内班级的学生数、平均成绩百分比和出勤率
func (r *AnalyticsRepository) EducatorPerformance(scope AccessScope) ([]EducatorStats, error) {
	var classes []model.Class
	if err := scope.Apply(r.DB.Model(&model.Class{}), ClassScope).
		Select("id", "educator_id").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return []EducatorStats{}, nil
	}

	classIDs := make([]uint, 0, len(classes))
	byEducator := map[uint]*EducatorStats{}
	var order []uint
	for _, c := range classes {
		classIDs = append(classIDs, c.ID)
		stats, ok := byEducator[c.EducatorID]
		if !ok {
			stats = &EducatorStats{EducatorID: c.EducatorID}
			byEducator[c.EducatorID] = stats
			order = append(order, c.EducatorID)
		}
		stats.Classes++
	}

	var students []educatorCount
	if err := r.DB.Model(&model.Enrollment{}).
		Select("classes.educator_id AS educator_id, COUNT(DISTINCT enrollments.student_id) AS total").
		Joins("JOIN classes ON classes.id = enrollments.class_id").
		Where("enrollments.class_id IN ?", classIDs).
		Group("classes.educator_id").
		Scan(&students).Error; err != nil {
		return nil, err
	}
	for _, s := range students {
		byEducator[s.EducatorID].Students = s.Total
	}

	var grades []educatorAverage
	if err := r.DB.Model(&model.Grade{}).
		Select("classes.educator_id AS educator_id, AVG(grades.score * 100.0 / grades.max_score) AS average, COUNT(*) AS total").
		Joins("JOIN classes ON classes.id = grades.class_id").
		Where("grades.class_id IN ? AND grades.max_score > 0", classIDs).
		Group("classes.educator_id").
		Scan(&grades).Error; err != nil {
		return nil, err
	}
	for _, g := range grades {
		byEducator[g.EducatorID].AverageGrade = g.Average
		byEducator[g.EducatorID].GradedCount = g.Total
	}

	var attendance []educatorAttendance
	if err := r.DB.Model(&model.Attendance{}).
		Select("classes.educator_id AS educator_id, "+
			"SUM(CASE WHEN attendance.status IN ('present', 'late') THEN 1 ELSE 0 END) AS attended, COUNT(*) AS total").
		Joins("JOIN classes ON classes.id = attendance.class_id").
		Where("attendance.class_id IN ?", classIDs).
		Group("classes.educator_id").
		Scan(&attendance).Error; err != nil {
		return nil, err
	}
	for _, a := range attendance {
		stats := byEducator[a.EducatorID]
		stats.AttendanceDays = a.Total
		if a.Total > 0 {
			stats.AttendanceRate = float64(a.Attended) * 100 / float64(a.Total)
		}
	}

	result := make([]EducatorStats, 0, len(order))
	for _, id := range order {
		result = append(result, *byEducator[id])
	}
	return result, nil
}
