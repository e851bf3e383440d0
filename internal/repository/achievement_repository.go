package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) Create(achievement *model.Achievement) error {
	return r.DB.Create(achievement).Error
}

func (r *AchievementRepository) Update(achievement *model.Achievement) error {
	return r.DB.Save(achievement).Error
}

func (r *AchievementRepository) FindByID(scope AccessScope, id uint) (*model.Achievement, error) {
	var achievement model.Achievement
	err := scope.Apply(r.DB.Model(&model.Achievement{}), AchievementScope).
		Where("id = ?", id).
		First(&achievement).Error
	return &achievement, err
}

func (r *AchievementRepository) FindAccessible(scope AccessScope, userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	query := scope.Apply(r.DB.Model(&model.Achievement{}), AchievementScope)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Order("created_at desc, id desc").Find(&achievements).Error
	return achievements, err
}

// FindShared 返回 scope 内公开或被分享的成就
func (r *AchievementRepository) FindShared(scope AccessScope) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := scope.Apply(r.DB.Model(&model.Achievement{}), AchievementScope).
		Where("is_public = ? OR shared = ?", true, true).
		Order("earned_at desc, id desc").
		Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) ExistsForUser(userID uint, title string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Achievement{}).
		Where("user_id = ? AND title = ?", userID, title).
		Count(&count).Error
	return count > 0, err
}
