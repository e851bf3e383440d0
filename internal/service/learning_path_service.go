package service

import (
	"errors"
	"fmt"
	"strings"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"gorm.io/gorm"
)

type LearningPathService struct {
	Repo         *repository.LearningPathRepository
	Achievements *AchievementService
}

func NewLearningPathService(repo *repository.LearningPathRepository, achievements *AchievementService) *LearningPathService {
	return &LearningPathService{Repo: repo, Achievements: achievements}
}

type LearningPathInput struct {
	Title       string
	Subject     string
	Description string
	Nodes       []LearningPathNodeInput
}

type LearningPathNodeInput struct {
	Title       string
	Description string
	Position    int
}

// Create 学习路径归属于创建者所在的学校和学区
func (s *LearningPathService) Create(actor *model.User, in LearningPathInput) (*model.LearningPath, error) {
	if actor.Role != model.Educator && actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrInvalidInput)
	}

	path := &model.LearningPath{
		Title:       strings.TrimSpace(in.Title),
		Subject:     strings.TrimSpace(in.Subject),
		Description: in.Description,
		CreatorID:   actor.ID,
		DistrictID:  actor.DistrictID,
		SchoolID:    actor.SchoolID,
	}
	for i, n := range in.Nodes {
		if strings.TrimSpace(n.Title) == "" {
			return nil, fmt.Errorf("%w: node %d has no title", util.ErrInvalidInput, i+1)
		}
		position := n.Position
		if position == 0 {
			position = i + 1
		}
		path.Nodes = append(path.Nodes, model.LearningPathNode{
			Title:       strings.TrimSpace(n.Title),
			Description: n.Description,
			Position:    position,
		})
	}
	if err := s.Repo.Create(path); err != nil {
		return nil, err
	}
	return path, nil
}

func (s *LearningPathService) List(actor *model.User, subject string) ([]model.LearningPath, error) {
	return s.Repo.FindAccessible(ResolveScope(actor), subject)
}

func (s *LearningPathService) Get(actor *model.User, id uint) (*model.LearningPath, error) {
	path, err := s.Repo.FindByID(ResolveScope(actor), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return path, nil
}

// AddNode 仅创建者或管理员可以修改路径
func (s *LearningPathService) AddNode(actor *model.User, pathID uint, in LearningPathNodeInput) (*model.LearningPathNode, error) {
	path, err := s.Get(actor, pathID)
	if err != nil {
		return nil, err
	}
	if path.CreatorID != actor.ID && actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", util.ErrInvalidInput)
	}
	node := &model.LearningPathNode{
		PathID:      path.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Position:    in.Position,
	}
	if err := s.Repo.AddNode(node); err != nil {
		return nil, err
	}
	return node, nil
}

// CompleteNode 学生完成节点时获得关联该节点的徽章，重复完成不会重复颁发
func (s *LearningPathService) CompleteNode(actor *model.User, pathID, nodeID uint) (*model.Achievement, error) {
	if actor.Role != model.Student {
		return nil, util.ErrPermissionDenied
	}
	path, err := s.Get(actor, pathID)
	if err != nil {
		return nil, err
	}
	var node *model.LearningPathNode
	for i := range path.Nodes {
		if path.Nodes[i].ID == nodeID {
			node = &path.Nodes[i]
			break
		}
	}
	if node == nil {
		return nil, util.ErrNotFound
	}

	title := fmt.Sprintf("%s: %s", path.Title, node.Title)
	exists, err := s.Achievements.Repo.ExistsForUser(actor.ID, title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrAlreadyExists
	}
	now := s.Achievements.now()
	a := &model.Achievement{
		UserID:             actor.ID,
		Type:               model.AchievementBadge,
		Title:              title,
		Description:        "Completed a learning path step",
		LearningPathNodeID: &node.ID,
		EarnedAt:           &now,
	}
	if err := s.Achievements.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}
