package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"gorm.io/gorm"
)

// TutoringMilestone 完成指定数量的辅导会话后自动颁发
type TutoringMilestone struct {
	Sessions    int
	Title       string
	Description string
}

var TutoringMilestones = []TutoringMilestone{
	{Sessions: 1, Title: "First Tutoring Session", Description: "Completed your first session with the AI tutor"},
	{Sessions: 5, Title: "Dedicated Learner", Description: "Completed 5 tutoring sessions"},
	{Sessions: 10, Title: "Tutoring Champion", Description: "Completed 10 tutoring sessions"},
}

type AchievementService struct {
	Repo         *repository.AchievementRepository
	UserRepo     *repository.UserRepository
	TutoringRepo *repository.TutoringRepository
	now          func() time.Time
}

func NewAchievementService(repo *repository.AchievementRepository, userRepo *repository.UserRepository, tutoringRepo *repository.TutoringRepository) *AchievementService {
	return &AchievementService{
		Repo:         repo,
		UserRepo:     userRepo,
		TutoringRepo: tutoringRepo,
		now:          time.Now,
	}
}

type AwardInput struct {
	UserID             uint
	Type               model.AchievementType
	Title              string
	Description        string
	Progress           *int
	MaxProgress        *int
	LearningPathNodeID *uint
	IsPublic           bool
}

func validAchievementType(t model.AchievementType) bool {
	switch t {
	case model.AchievementBadge, model.AchievementCertificate, model.AchievementMilestone:
		return true
	}
	return false
}

// Award 由教师或管理员向 scope 内的用户颁发成就
func (s *AchievementService) Award(actor *model.User, in AwardInput) (*model.Achievement, error) {
	if actor.Role != model.Educator && actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	if !validAchievementType(in.Type) {
		return nil, fmt.Errorf("%w: unknown achievement type %q", util.ErrInvalidInput, in.Type)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrInvalidInput)
	}
	if in.Progress != nil && in.MaxProgress == nil {
		return nil, util.ErrInvalidProgress
	}
	if in.MaxProgress != nil && *in.MaxProgress <= 0 {
		return nil, fmt.Errorf("%w: maxProgress must be positive", util.ErrInvalidInput)
	}

	if _, err := s.UserRepo.FindAccessibleByID(ResolveScope(actor), in.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	a := &model.Achievement{
		UserID:             in.UserID,
		Type:               in.Type,
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		MaxProgress:        in.MaxProgress,
		LearningPathNodeID: in.LearningPathNodeID,
		IsPublic:           in.IsPublic,
	}
	now := s.now()
	switch {
	case in.MaxProgress == nil:
		a.EarnedAt = &now
	case in.Progress != nil:
		a.SetProgress(*in.Progress, now)
	default:
		a.SetProgress(0, now)
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AchievementService) List(actor *model.User, userID uint) ([]model.Achievement, error) {
	return s.Repo.FindAccessible(ResolveScope(actor), userID)
}

// Shared 学生可以看到本校同学分享的成就
func (s *AchievementService) Shared(actor *model.User) ([]model.Achievement, error) {
	scope := ResolveScope(actor)
	if actor.Role == model.Student && actor.SchoolID != nil {
		scope = repository.SchoolAccess(*actor.SchoolID)
	}
	return s.Repo.FindShared(scope)
}

func (s *AchievementService) find(actor *model.User, id uint) (*model.Achievement, error) {
	a, err := s.Repo.FindByID(ResolveScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// UpdateProgress 进度被限制在 [0, maxProgress]
func (s *AchievementService) UpdateProgress(actor *model.User, id uint, progress int) (*model.Achievement, error) {
	a, err := s.find(actor, id)
	if err != nil {
		return nil, err
	}
	if a.MaxProgress == nil {
		return nil, util.ErrInvalidProgress
	}
	a.SetProgress(progress, s.now())
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

// SetShared 只有成就的拥有者可以分享或取消分享
func (s *AchievementService) SetShared(actor *model.User, id uint, shared bool) (*model.Achievement, error) {
	a, err := s.find(actor, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != actor.ID {
		return nil, util.ErrPermissionDenied
	}
	a.Shared = shared
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

// AwardTutoringMilestones grants every milestone the student has reached and
// not yet received.
func (s *AchievementService) AwardTutoringMilestones(studentID uint) ([]model.Achievement, error) {
	completed, err := s.TutoringRepo.CountCompletedSessions(studentID)
	if err != nil {
		return nil, err
	}

	var awarded []model.Achievement
	for _, m := range TutoringMilestones {
		if completed < int64(m.Sessions) {
			break
		}
		exists, err := s.Repo.ExistsForUser(studentID, m.Title)
		if err != nil {
			return awarded, err
		}
		if exists {
			continue
		}
		max := m.Sessions
		a := model.Achievement{
			UserID:      studentID,
			Type:        model.AchievementMilestone,
			Title:       m.Title,
			Description: m.Description,
			MaxProgress: &max,
		}
		a.SetProgress(m.Sessions, s.now())
		if err := s.Repo.Create(&a); err != nil {
			return awarded, err
		}
		awarded = append(awarded, a)
	}
	return awarded, nil
}
