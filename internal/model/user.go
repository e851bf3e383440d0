package model

import (
	"time"
)

type UserRole string

const (
	Student  UserRole = "student"
	Educator UserRole = "educator"
	Admin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Student, Educator, Admin:
		return true
	}
	return false
}

// AdminLevel narrows what an admin can see.
type AdminLevel string

const (
	AdminLevelNone       AdminLevel = ""
	AdminLevelDistrict   AdminLevel = "district"
	AdminLevelSchool     AdminLevel = "school"
	AdminLevelDepartment AdminLevel = "department"
)

// swagger:model User
type User struct {
	BaseModel
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:128;uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	FullName     string     `gorm:"size:128" json:"fullName"`
	Role         UserRole   `gorm:"size:16;not null;default:'student';index" json:"role"`
	AdminLevel   AdminLevel `gorm:"size:16" json:"adminLevel,omitempty"`
	DistrictID   *uint      `gorm:"index" json:"districtId,omitempty"`
	SchoolID     *uint      `gorm:"index" json:"schoolId,omitempty"`
	DepartmentID *uint      `gorm:"index" json:"departmentId,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile 学生扩展信息
type StudentProfile struct {
	BaseModel
	UserID        uint   `gorm:"uniqueIndex;not null" json:"userId"`
	GradeLevel    int    `json:"gradeLevel"`
	StudentNumber string `gorm:"size:64" json:"studentNumber,omitempty"`
}

func (StudentProfile) TableName() string {
	return "students"
}

// EducatorProfile 教师扩展信息
type EducatorProfile struct {
	BaseModel
	UserID           uint   `gorm:"uniqueIndex;not null" json:"userId"`
	SubjectSpecialty string `gorm:"size:100" json:"subjectSpecialty"`
}

func (EducatorProfile) TableName() string {
	return "educators"
}
