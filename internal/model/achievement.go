package model

import "time"

type AchievementType string

const (
	AchievementBadge       AchievementType = "badge"
	AchievementCertificate AchievementType = "certificate"
	AchievementMilestone   AchievementType = "milestone"
)

// swagger:model Achievement
type Achievement struct {
	BaseModel
	UserID             uint            `gorm:"index;not null" json:"userId"`
	Type               AchievementType `gorm:"size:20;not null" json:"type"`
	Title              string          `gorm:"size:150;not null" json:"title"`
	Description        string          `gorm:"size:500" json:"description"`
	Progress           *int            `json:"progress,omitempty"`
	MaxProgress        *int            `json:"maxProgress,omitempty"`
	LearningPathNodeID *uint           `gorm:"index" json:"learningPathNodeId,omitempty"`
	IsPublic           bool            `gorm:"default:false" json:"isPublic"`
	Shared             bool            `gorm:"default:false" json:"shared"`
	EarnedAt           *time.Time      `json:"earnedAt,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// SetProgress 将进度限制在 [0, MaxProgress]，达到上限时记录获得时间
func (a *Achievement) SetProgress(progress int, now time.Time) {
	if progress < 0 {
		progress = 0
	}
	if a.MaxProgress != nil && progress > *a.MaxProgress {
		progress = *a.MaxProgress
	}
	a.Progress = &progress
	if a.MaxProgress != nil && progress == *a.MaxProgress && a.EarnedAt == nil {
		a.EarnedAt = &now
	}
}
