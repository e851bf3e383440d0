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

// SchoolService 班级、选课、成绩、考勤、部门等日常数据
type SchoolService struct {
	UserRepo       *repository.UserRepository
	OrgRepo        *repository.OrganizationRepository
	ClassRepo      *repository.ClassRepository
	GradeRepo      *repository.GradeRepository
	AttendanceRepo *repository.AttendanceRepository
}

func NewSchoolService(
	userRepo *repository.UserRepository,
	orgRepo *repository.OrganizationRepository,
	classRepo *repository.ClassRepository,
	gradeRepo *repository.GradeRepository,
	attendanceRepo *repository.AttendanceRepository,
) *SchoolService {
	return &SchoolService{
		UserRepo:       userRepo,
		OrgRepo:        orgRepo,
		ClassRepo:      classRepo,
		GradeRepo:      gradeRepo,
		AttendanceRepo: attendanceRepo,
	}
}

func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func (s *SchoolService) ListUsers(actor *model.User, role model.UserRole) ([]model.User, error) {
	return s.UserRepo.FindAccessible(ResolveScope(actor), role)
}

func (s *SchoolService) ListClasses(actor *model.User) ([]model.Class, error) {
	return s.ClassRepo.FindAccessible(ResolveScope(actor))
}

type ClassInput struct {
	Name       string
	Subject    string
	EducatorID uint
}

// CreateClass 教师为自己开班；管理员需指定 scope 内的教师
func (s *SchoolService) CreateClass(actor *model.User, in ClassInput) (*model.Class, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}

	var educator *model.User
	switch actor.Role {
	case model.Educator:
		educator = actor
	case model.Admin:
		if in.EducatorID == 0 {
			return nil, fmt.Errorf("%w: educatorId is required", util.ErrInvalidInput)
		}
		u, err := s.UserRepo.FindAccessibleByID(ResolveScope(actor), in.EducatorID)
		if err != nil {
			return nil, notFoundAs(err, util.ErrUserNotFound)
		}
		if u.Role != model.Educator {
			return nil, fmt.Errorf("%w: user %d is not an educator", util.ErrInvalidInput, u.ID)
		}
		educator = u
	default:
		return nil, util.ErrPermissionDenied
	}

	class := &model.Class{
		Name:         strings.TrimSpace(in.Name),
		Subject:      strings.TrimSpace(in.Subject),
		EducatorID:   educator.ID,
		DistrictID:   educator.DistrictID,
		SchoolID:     educator.SchoolID,
		DepartmentID: educator.DepartmentID,
	}
	if err := s.ClassRepo.Create(class); err != nil {
		return nil, err
	}
	return class, nil
}

// manageableClass 学生不能管理班级；教师只能管理自己的班级
func (s *SchoolService) manageableClass(actor *model.User, classID uint) (*model.Class, error) {
	if actor.Role != model.Educator && actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	class, err := s.ClassRepo.FindByID(ResolveScope(actor), classID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNotFound)
	}
	return class, nil
}

func (s *SchoolService) Enroll(actor *model.User, classID, studentID uint) (*model.Enrollment, error) {
	class, err := s.manageableClass(actor, classID)
	if err != nil {
		return nil, err
	}
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrUserNotFound)
	}
	if student.Role != model.Student {
		return nil, fmt.Errorf("%w: user %d is not a student", util.ErrInvalidInput, student.ID)
	}
	enrolled, err := s.ClassRepo.IsEnrolled(class.ID, student.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyExists
	}
	enrollment := &model.Enrollment{ClassID: class.ID, StudentID: student.ID}
	if err := s.ClassRepo.Enroll(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *SchoolService) ListEnrollments(actor *model.User, classID uint) ([]model.Enrollment, error) {
	return s.ClassRepo.FindEnrollments(ResolveScope(actor), classID)
}

func (s *SchoolService) ListGrades(actor *model.User, classID uint) ([]model.Grade, error) {
	return s.GradeRepo.FindAccessible(ResolveScope(actor), classID)
}

type GradeInput struct {
	ClassID    uint
	StudentID  uint
	Assignment string
	Score      float64
	MaxScore   float64
	GradedAt   time.Time
}

func (s *SchoolService) RecordGrade(actor *model.User, in GradeInput) (*model.Grade, error) {
	if in.MaxScore <= 0 || in.Score < 0 || in.Score > in.MaxScore {
		return nil, fmt.Errorf("%w: score must be between 0 and maxScore", util.ErrInvalidInput)
	}
	class, err := s.manageableClass(actor, in.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrolled(class.ID, in.StudentID); err != nil {
		return nil, err
	}
	if in.GradedAt.IsZero() {
		in.GradedAt = time.Now()
	}
	grade := &model.Grade{
		StudentID:  in.StudentID,
		ClassID:    class.ID,
		Assignment: strings.TrimSpace(in.Assignment),
		Score:      in.Score,
		MaxScore:   in.MaxScore,
		GradedAt:   in.GradedAt,
	}
	if err := s.GradeRepo.Create(grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *SchoolService) requireEnrolled(classID, studentID uint) error {
	enrolled, err := s.ClassRepo.IsEnrolled(classID, studentID)
	if err != nil {
		return err
	}
	if !enrolled {
		return fmt.Errorf("%w: student %d is not enrolled in class %d", util.ErrInvalidInput, studentID, classID)
	}
	return nil
}

func (s *SchoolService) ListAttendance(actor *model.User, classID uint) ([]model.Attendance, error) {
	return s.AttendanceRepo.FindAccessible(ResolveScope(actor), classID)
}

type AttendanceInput struct {
	ClassID   uint
	StudentID uint
	Date      time.Time
	Status    model.AttendanceStatus
}

func validAttendanceStatus(status model.AttendanceStatus) bool {
	switch status {
	case model.AttendancePresent, model.AttendanceAbsent, model.AttendanceLate, model.AttendanceExcused:
		return true
	}
	return false
}

func (s *SchoolService) RecordAttendance(actor *model.User, in AttendanceInput) (*model.Attendance, error) {
	if !validAttendanceStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown attendance status %q", util.ErrInvalidInput, in.Status)
	}
	class, err := s.manageableClass(actor, in.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrolled(class.ID, in.StudentID); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	record := &model.Attendance{StudentID: in.StudentID, ClassID: class.ID, Date: in.Date, Status: in.Status}
	if err := s.AttendanceRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SchoolService) ListDepartments(actor *model.User) ([]model.Department, error) {
	return s.OrgRepo.FindDepartments(ResolveScope(actor))
}

// CreateDepartment 学区或学校管理员在自己管辖的学校下建部门
func (s *SchoolService) CreateDepartment(actor *model.User, name string, schoolID uint) (*model.Department, error) {
	if actor.Role != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}
	school, err := s.OrgRepo.FindSchoolByID(schoolID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNotFound)
	}

	scope := ResolveScope(actor)
	switch scope.Kind {
	case repository.ScopeDistrict:
		if school.DistrictID != scope.ID {
			return nil, util.ErrPermissionDenied
		}
	case repository.ScopeSchool:
		if school.ID != scope.ID {
			return nil, util.ErrPermissionDenied
		}
	default:
		return nil, util.ErrPermissionDenied
	}

	department := &model.Department{Name: strings.TrimSpace(name), SchoolID: school.ID, DistrictID: school.DistrictID}
	if err := s.OrgRepo.CreateDepartment(department); err != nil {
		return nil, err
	}
	return department, nil
}
