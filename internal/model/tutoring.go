package model

import (
	"time"

	"gorm.io/datatypes"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// TutoringSession 一次 AI 辅导会话。EndedAt 为空表示仍在进行中
// swagger:model TutoringSession
type TutoringSession struct {
	BaseModel
	StudentID        uint                        `gorm:"index:idx_tutoring_student_subject;not null" json:"studentId"`
	Subject          string                      `gorm:"size:100;index:idx_tutoring_student_subject" json:"subject"`
	Topic            string                      `gorm:"size:200" json:"topic,omitempty"`
	StartedAt        time.Time                   `json:"startedAt"`
	EndedAt          *time.Time                  `gorm:"index" json:"endedAt"`
	Summary          string                      `gorm:"type:text" json:"summary,omitempty"`
	PerformanceScore *int                        `json:"performanceScore,omitempty"`
	ConceptsCovered  datatypes.JSONSlice[string] `json:"conceptsCovered"`
	ImprovementAreas datatypes.JSONSlice[string] `json:"improvementAreas"`
	StrengthAreas    datatypes.JSONSlice[string] `json:"strengthAreas"`
	TranscriptURL    string                      `gorm:"size:500" json:"transcriptUrl,omitempty"`
}

func (TutoringSession) TableName() string {
	return "tutoring_sessions"
}

func (s *TutoringSession) Active() bool {
	return s.EndedAt == nil
}

// TutoringMessage 只追加，按 Timestamp 排序
type TutoringMessage struct {
	ID        uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uint                        `gorm:"index;not null" json:"sessionId"`
	Role      MessageRole                 `gorm:"size:16;not null" json:"role"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Concepts  datatypes.JSONSlice[string] `json:"concepts,omitempty"`
	Timestamp time.Time                   `gorm:"index" json:"timestamp"`
}

func (TutoringMessage) TableName() string {
	return "tutoring_messages"
}
