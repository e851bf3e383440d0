package service

import (
	"errors"
	"fmt"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile 组织结构与初始账号，由 edconnectctl seed 读取
type SeedFile struct {
	Districts []SeedDistrict `yaml:"districts"`
	Users     []SeedUser     `yaml:"users"`
}

type SeedDistrict struct {
	Name    string       `yaml:"name"`
	Schools []SeedSchool `yaml:"schools"`
}

type SeedSchool struct {
	Name        string   `yaml:"name"`
	Departments []string `yaml:"departments"`
}

type SeedUser struct {
	Username      string `yaml:"username"`
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	FullName      string `yaml:"full_name"`
	Role          string `yaml:"role"`
	AdminLevel    string `yaml:"admin_level"`
	District      string `yaml:"district"`
	School        string `yaml:"school"`
	Department    string `yaml:"department"`
	GradeLevel    int    `yaml:"grade_level"`
	StudentNumber string `yaml:"student_number"`
}

func ParseSeedFile(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type SeedReport struct {
	Districts   int
	Schools     int
	Departments int
	Users       int
	Skipped     int
}

type SeedService struct {
	UserRepo *repository.UserRepository
	OrgRepo  *repository.OrganizationRepository
}

func NewSeedService(userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository) *SeedService {
	return &SeedService{UserRepo: userRepo, OrgRepo: orgRepo}
}

// Apply 可重复执行，已存在的记录会被跳过
func (s *SeedService) Apply(f *SeedFile) (SeedReport, error) {
	var report SeedReport
	schools := map[string]*model.School{}

	for _, d := range f.Districts {
		district, err := s.OrgRepo.FindDistrictByName(d.Name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			district = &model.District{Name: d.Name}
			if err := s.OrgRepo.CreateDistrict(district); err != nil {
				return report, err
			}
			report.Districts++
		} else if err != nil {
			return report, err
		}

		for _, sc := range d.Schools {
			school, err := s.OrgRepo.FindSchoolByName(sc.Name)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				school = &model.School{Name: sc.Name, DistrictID: district.ID}
				if err := s.OrgRepo.CreateSchool(school); err != nil {
					return report, err
				}
				report.Schools++
			} else if err != nil {
				return report, err
			}
			schools[school.Name] = school

			for _, name := range sc.Departments {
				_, err := s.OrgRepo.FindDepartmentByName(school.ID, name)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					if err := s.OrgRepo.CreateDepartment(&model.Department{Name: name, SchoolID: school.ID, DistrictID: district.ID}); err != nil {
						return report, err
					}
					report.Departments++
				} else if err != nil {
					return report, err
				}
			}
		}
	}

	for _, u := range f.Users {
		exists, err := s.UserRepo.ExistsByUsername(u.Username)
		if err != nil {
			return report, err
		}
		if exists {
			report.Skipped++
			continue
		}
		user, err := s.buildUser(u, schools)
		if err != nil {
			return report, fmt.Errorf("user %s: %w", u.Username, err)
		}
		if err := s.UserRepo.Create(user); err != nil {
			return report, fmt.Errorf("user %s: %w", u.Username, err)
		}
		if user.Role == model.Student && (u.GradeLevel > 0 || u.StudentNumber != "") {
			profile, err := s.UserRepo.FindStudentProfile(user.ID)
			if err != nil {
				return report, err
			}
			profile.GradeLevel = u.GradeLevel
			profile.StudentNumber = u.StudentNumber
			if err := s.UserRepo.UpdateStudentProfile(profile); err != nil {
				return report, err
			}
		}
		report.Users++
	}
	return report, nil
}

func (s *SeedService) buildUser(u SeedUser, schools map[string]*model.School) (*model.User, error) {
	role := model.UserRole(u.Role)
	if role == "" {
		role = model.Student
	}
	if !role.Valid() {
		return nil, util.ErrInvalidRole
	}
	hashed, err := util.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:   u.Username,
		Email:      u.Email,
		Password:   hashed,
		FullName:   u.FullName,
		Role:       role,
		AdminLevel: model.AdminLevel(u.AdminLevel),
	}
	if u.District != "" {
		district, err := s.OrgRepo.FindDistrictByName(u.District)
		if err != nil {
			return nil, fmt.Errorf("unknown district %q", u.District)
		}
		user.DistrictID = util.UintPtr(district.ID)
	}
	if u.School != "" {
		school, ok := schools[u.School]
		if !ok {
			found, err := s.OrgRepo.FindSchoolByName(u.School)
			if err != nil {
				return nil, fmt.Errorf("unknown school %q", u.School)
			}
			school = found
		}
		user.SchoolID = util.UintPtr(school.ID)
		user.DistrictID = util.UintPtr(school.DistrictID)
		if u.Department != "" {
			dep, err := s.OrgRepo.FindDepartmentByName(school.ID, u.Department)
			if err != nil {
				return nil, fmt.Errorf("unknown department %q", u.Department)
			}
			user.DepartmentID = util.UintPtr(dep.ID)
		}
	}
	return user, nil
}
