package model

type District struct {
	BaseModel
	Name string `gorm:"size:150;not null" json:"name"`
}

func (District) TableName() string {
	return "districts"
}

type School struct {
	BaseModel
	Name       string `gorm:"size:150;not null" json:"name"`
	DistrictID uint   `gorm:"index" json:"districtId"`
}

func (School) TableName() string {
	return "schools"
}

type Department struct {
	BaseModel
	Name       string `gorm:"size:150;not null" json:"name"`
	SchoolID   uint   `gorm:"index" json:"schoolId"`
	DistrictID uint   `gorm:"index" json:"districtId"`
}

func (Department) TableName() string {
	return "departments"
}
