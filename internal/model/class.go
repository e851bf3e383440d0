package model

import "time"

// swagger:model Class
type Class struct {
	BaseModel
	Name         string `gorm:"size:150;not null" json:"name"`
	Subject      string `gorm:"size:100" json:"subject"`
	EducatorID   uint   `gorm:"index;not null" json:"educatorId"`
	DistrictID   *uint  `gorm:"index" json:"districtId,omitempty"`
	SchoolID     *uint  `gorm:"index" json:"schoolId,omitempty"`
	DepartmentID *uint  `gorm:"index" json:"departmentId,omitempty"`
}

func (Class) TableName() string {
	return "classes"
}

type Enrollment struct {
	BaseModel
	ClassID   uint `gorm:"uniqueIndex:idx_enrollment_class_student;not null" json:"classId"`
	StudentID uint `gorm:"uniqueIndex:idx_enrollment_class_student;not null" json:"studentId"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

type Grade struct {
	BaseModel
	StudentID  uint      `gorm:"index;not null" json:"studentId"`
	ClassID    uint      `gorm:"index;not null" json:"classId"`
	Assignment string    `gorm:"size:150" json:"assignment"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"maxScore"`
	GradedAt   time.Time `json:"gradedAt"`
}

func (Grade) TableName() string {
	return "grades"
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

type Attendance struct {
	BaseModel
	StudentID uint             `gorm:"index;not null" json:"studentId"`
	ClassID   uint             `gorm:"index;not null" json:"classId"`
	Date      time.Time        `gorm:"index" json:"date"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
}

func (Attendance) TableName() string {
	return "attendance"
}
