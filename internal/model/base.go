package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// All 返回需要 AutoMigrate 的全部模型
func All() []interface{} {
	return []interface{}{
		&District{},
		&School{},
		&Department{},
		&User{},
		&StudentProfile{},
		&EducatorProfile{},
		&Class{},
		&Enrollment{},
		&Grade{},
		&Attendance{},
		&LearningPath{},
		&LearningPathNode{},
		&Achievement{},
		&TutoringSession{},
		&TutoringMessage{},
	}
}
