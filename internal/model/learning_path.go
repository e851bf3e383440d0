package model

// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	Title       string             `gorm:"size:200;not null" json:"title"`
	Subject     string             `gorm:"size:100" json:"subject"`
	Description string             `gorm:"type:text" json:"description"`
	CreatorID   uint               `gorm:"index" json:"creatorId"`
	DistrictID  *uint              `gorm:"index" json:"districtId,omitempty"`
	SchoolID    *uint              `gorm:"index" json:"schoolId,omitempty"`
	Nodes       []LearningPathNode `gorm:"foreignKey:PathID" json:"nodes,omitempty"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

type LearningPathNode struct {
	BaseModel
	PathID      uint   `gorm:"index;not null" json:"pathId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Position    int    `json:"position"`
}

func (LearningPathNode) TableName() string {
	return "learning_path_nodes"
}
