package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

// FindByID 只在 scope 内查找，越界时返回 gorm.ErrRecordNotFound
func (r *ClassRepository) FindByID(scope AccessScope, id uint) (*model.Class, error) {
	var class model.Class
	err := scope.Apply(r.DB.Model(&model.Class{}), ClassScope).
		Where("id = ?", id).
		First(&class).Error
	return &class, err
}

func (r *ClassRepository) FindAccessible(scope AccessScope) ([]model.Class, error) {
	var classes []model.Class
	err := scope.Apply(r.DB.Model(&model.Class{}), ClassScope).
		Order("id").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) Enroll(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *ClassRepository) IsEnrolled(classID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) FindEnrollments(scope AccessScope, classID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	query := scope.Apply(r.DB.Model(&model.Enrollment{}), ClassFactScope)
	if classID != 0 {
		query = query.Where("class_id = ?", classID)
	}
	err := query.Order("id").Find(&enrollments).Error
	return enrollments, err
}
