package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func orderedNodes(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, id asc")
}

func (r *LearningPathRepository) Create(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

func (r *LearningPathRepository) FindByID(scope AccessScope, id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := scope.Apply(r.DB.Model(&model.LearningPath{}), LearningPathScope).
		Preload("Nodes", orderedNodes).
		Where("id = ?", id).
		First(&path).Error
	return &path, err
}

func (r *LearningPathRepository) FindAccessible(scope AccessScope, subject string) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	query := scope.Apply(r.DB.Model(&model.LearningPath{}), LearningPathScope)
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	err := query.Preload("Nodes", orderedNodes).Order("id").Find(&paths).Error
	return paths, err
}

// AddNode 追加节点；Position 为 0 时排在末尾
func (r *LearningPathRepository) AddNode(node *model.LearningPathNode) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if node.Position == 0 {
			var last int
			if err := tx.Model(&model.LearningPathNode{}).
				Where("path_id = ?", node.PathID).
				Select("COALESCE(MAX(position), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			node.Position = last + 1
		}
		return tx.Create(node).Error
	})
}

func (r *LearningPathRepository) FindNodeByID(id uint) (*model.LearningPathNode, error) {
	var node model.LearningPathNode
	err := r.DB.First(&node, id).Error
	return &node, err
}
