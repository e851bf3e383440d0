package repository

import (
	"time"

	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create 创建用户，并按角色写入学生/教师扩展信息
func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		switch user.Role {
		case model.Student:
			return tx.Create(&model.StudentProfile{UserID: user.ID}).Error
		case model.Educator:
			return tx.Create(&model.EducatorProfile{UserID: user.ID}).Error
		}
		return nil
	})
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Update("last_login", at).Error
}

// FindAccessible 返回 scope 内可见的用户
func (r *UserRepository) FindAccessible(scope AccessScope, role model.UserRole) ([]model.User, error) {
	var users []model.User
	query := scope.Apply(r.DB.Model(&model.User{}), UserScope)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Order("id").Find(&users).Error
	return users, err
}

func (r *UserRepository) FindStudentProfile(userID uint) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&student).Error
	return &student, err
}

func (r *UserRepository) FindEducatorProfile(userID uint) (*model.EducatorProfile, error) {
	var educator model.EducatorProfile
	err := r.DB.Where("user_id = ?", userID).First(&educator).Error
	return &educator, err
}

func (r *UserRepository) UpdateStudentProfile(student *model.StudentProfile) error {
	return r.DB.Save(student).Error
}

// FindAccessibleByID 越界时返回 gorm.ErrRecordNotFound
func (r *UserRepository) FindAccessibleByID(scope AccessScope, id uint) (*model.User, error) {
	var user model.User
	err := scope.Apply(r.DB.Model(&model.User{}), UserScope).Where("id = ?", id).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}
