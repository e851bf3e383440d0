package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) Create(grade *model.Grade) error {
	return r.DB.Create(grade).Error
}

func (r *GradeRepository) FindAccessible(scope AccessScope, classID uint) ([]model.Grade, error) {
	var grades []model.Grade
	query := scope.Apply(r.DB.Model(&model.Grade{}), ClassFactScope)
	if classID != 0 {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("graded_at desc, id desc").Find(&grades).Error
	return grades, err
}

type AttendanceRepository struct {
	DB *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

func (r *AttendanceRepository) Create(record *model.Attendance) error {
	return r.DB.Create(record).Error
}

func (r *AttendanceRepository) FindAccessible(scope AccessScope, classID uint) ([]model.Attendance, error) {
	var records []model.Attendance
	query := scope.Apply(r.DB.Model(&model.Attendance{}), ClassFactScope)
	if classID != 0 {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("date desc, id desc").Find(&records).Error
	return records, err
}
