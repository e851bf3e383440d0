package repository

import (
	"edconnect_backend/internal/model"

	"gorm.io/gorm"
)

type OrganizationRepository struct {
	DB *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

func (r *OrganizationRepository) CreateDistrict(district *model.District) error {
	return r.DB.Create(district).Error
}

func (r *OrganizationRepository) CreateSchool(school *model.School) error {
	return r.DB.Create(school).Error
}

func (r *OrganizationRepository) CreateDepartment(department *model.Department) error {
	return r.DB.Create(department).Error
}

func (r *OrganizationRepository) FindSchoolByID(id uint) (*model.School, error) {
	var school model.School
	err := r.DB.First(&school, id).Error
	return &school, err
}

func (r *OrganizationRepository) FindSchoolByName(name string) (*model.School, error) {
	var school model.School
	err := r.DB.Where("name = ?", name).First(&school).Error
	return &school, err
}

func (r *OrganizationRepository) FindDistrictByName(name string) (*model.District, error) {
	var district model.District
	err := r.DB.Where("name = ?", name).First(&district).Error
	return &district, err
}

func (r *OrganizationRepository) FindDepartmentByName(schoolID uint, name string) (*model.Department, error) {
	var department model.Department
	err := r.DB.Where("school_id = ? AND name = ?", schoolID, name).First(&department).Error
	return &department, err
}

func (r *OrganizationRepository) FindDepartments(scope AccessScope) ([]model.Department, error) {
	var departments []model.Department
	err := scope.Apply(r.DB.Model(&model.Department{}), DepartmentScope).
		Order("id").
		Find(&departments).Error
	return departments, err
}

// SchoolNames 用于刷新脱敏器的学校名单
func (r *OrganizationRepository) SchoolNames() ([]string, error) {
	var names []string
	err := r.DB.Model(&model.School{}).Pluck("name", &names).Error
	return names, err
}
