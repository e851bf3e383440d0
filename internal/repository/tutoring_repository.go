package repository

import (
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TutoringRepository struct {
	DB *gorm.DB
}

func NewTutoringRepository(db *gorm.DB) *TutoringRepository {
	return &TutoringRepository{DB: db}
}

func (r *TutoringRepository) CreateSession(session *model.TutoringSession) error {
	return r.DB.Create(session).Error
}

func (r *TutoringRepository) FindSession(scope AccessScope, id uint) (*model.TutoringSession, error) {
	var session model.TutoringSession
	err := scope.Apply(r.DB.Model(&model.TutoringSession{}), TutoringSessionScope).
		Where("id = ?", id).
		First(&session).Error
	return &session, err
}

// FindActiveSession 查找学生在该科目下尚未结束的会话
func (r *TutoringRepository) FindActiveSession(studentID uint, subject string) (*model.TutoringSession, error) {
	var session model.TutoringSession
	err := r.DB.Where("student_id = ? AND subject = ? AND ended_at IS NULL", studentID, subject).
		Order("started_at desc, id desc").
		First(&session).Error
	return &session, err
}

func (r *TutoringRepository) FindSessions(scope AccessScope, studentID uint) ([]model.TutoringSession, error) {
	var sessions []model.TutoringSession
	query := scope.Apply(r.DB.Model(&model.TutoringSession{}), TutoringSessionScope)
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}
	err := query.Order("started_at desc, id desc").Find(&sessions).Error
	return sessions, err
}

// AppendMessages 在同一事务中写入一轮对话；会话已结束时返回 util.ErrSessionEnded
func (r *TutoringRepository) AppendMessages(sessionID uint, messages ...*model.TutoringMessage) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.TutoringSession{}).
			Where("id = ? AND ended_at IS NULL", sessionID).
			Update("updated_at", time.Now())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return util.ErrSessionEnded
		}
		for _, m := range messages {
			m.SessionID = sessionID
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TutoringRepository) FindMessages(sessionID uint) ([]model.TutoringMessage, error) {
	var messages []model.TutoringMessage
	err := r.DB.Where("session_id = ?", sessionID).
		Order("timestamp asc, id asc").
		Find(&messages).Error
	return messages, err
}

// SessionOutcome 结束会话时写入的字段
type SessionOutcome struct {
	EndedAt          time.Time
	Summary          string
	PerformanceScore int
	ConceptsCovered  []string
	ImprovementAreas []string
	StrengthAreas    []string
}

// CloseSession 仅在 ended_at 为空时生效，返回是否由本次调用结束
func (r *TutoringRepository) CloseSession(id uint, outcome SessionOutcome) (bool, error) {
	result := r.DB.Model(&model.TutoringSession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]interface{}{
			"ended_at":          outcome.EndedAt,
			"summary":           outcome.Summary,
			"performance_score": outcome.PerformanceScore,
			"concepts_covered":  jsonList(outcome.ConceptsCovered),
			"improvement_areas": jsonList(outcome.ImprovementAreas),
			"strength_areas":    jsonList(outcome.StrengthAreas),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func jsonList(items []string) datatypes.JSONSlice[string] {
	if items == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](items)
}

func (r *TutoringRepository) SetTranscriptURL(id uint, url string) error {
	return r.DB.Model(&model.TutoringSession{}).Where("id = ?", id).Update("transcript_url", url).Error
}

func (r *TutoringRepository) CountCompletedSessions(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TutoringSession{}).
		Where("student_id = ? AND ended_at IS NOT NULL", studentID).
		Count(&count).Error
	return count, err
}
