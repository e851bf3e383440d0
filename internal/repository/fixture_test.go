package repository

import (
	"fmt"
	"testing"
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// schoolFixture 两个学区，各一所学校；学校一下有一个部门
type schoolFixture struct {
	DistrictA, DistrictB       model.District
	SchoolA, SchoolB           model.School
	Department                 model.Department
	DistrictAdmin, SchoolAdmin *model.User
	DepartmentAdmin            *model.User
	EducatorA, EducatorB       *model.User
	StudentA, StudentB         *model.User
	ClassA, ClassB             model.Class
}

func seedSchools(t *testing.T, db *gorm.DB) *schoolFixture {
	t.Helper()
	f := &schoolFixture{}
	orgs := NewOrganizationRepository(db)
	users := NewUserRepository(db)
	classes := NewClassRepository(db)

	f.DistrictA = model.District{Name: "North District"}
	f.DistrictB = model.District{Name: "South District"}
	require.NoError(t, orgs.CreateDistrict(&f.DistrictA))
	require.NoError(t, orgs.CreateDistrict(&f.DistrictB))
	f.SchoolA = model.School{Name: "Lincoln High School", DistrictID: f.DistrictA.ID}
	f.SchoolB = model.School{Name: "Roosevelt Middle School", DistrictID: f.DistrictB.ID}
	require.NoError(t, orgs.CreateSchool(&f.SchoolA))
	require.NoError(t, orgs.CreateSchool(&f.SchoolB))
	f.Department = model.Department{Name: "Mathematics", SchoolID: f.SchoolA.ID, DistrictID: f.DistrictA.ID}
	require.NoError(t, orgs.CreateDepartment(&f.Department))

	newUser := func(name string, role model.UserRole, level model.AdminLevel, district, school, dept *uint) *model.User {
		u := &model.User{
			Username:     name,
			Email:        name + "@example.org",
			Password:     "x",
			FullName:     name,
			Role:         role,
			AdminLevel:   level,
			DistrictID:   district,
			SchoolID:     school,
			DepartmentID: dept,
		}
		require.NoError(t, users.Create(u))
		return u
	}
	dA, dB := util.UintPtr(f.DistrictA.ID), util.UintPtr(f.DistrictB.ID)
	sA, sB := util.UintPtr(f.SchoolA.ID), util.UintPtr(f.SchoolB.ID)
	dep := util.UintPtr(f.Department.ID)

	f.DistrictAdmin = newUser("district_admin", model.Admin, model.AdminLevelDistrict, dA, nil, nil)
	f.SchoolAdmin = newUser("school_admin", model.Admin, model.AdminLevelSchool, dA, sA, nil)
	f.DepartmentAdmin = newUser("dept_admin", model.Admin, model.AdminLevelDepartment, dA, sA, dep)
	f.EducatorA = newUser("educator_a", model.Educator, "", dA, sA, dep)
	f.EducatorB = newUser("educator_b", model.Educator, "", dB, sB, nil)
	f.StudentA = newUser("student_a", model.Student, "", dA, sA, nil)
	f.StudentB = newUser("student_b", model.Student, "", dB, sB, nil)

	f.ClassA = model.Class{Name: "Algebra I", Subject: "math", EducatorID: f.EducatorA.ID, DistrictID: dA, SchoolID: sA, DepartmentID: dep}
	f.ClassB = model.Class{Name: "Biology", Subject: "science", EducatorID: f.EducatorB.ID, DistrictID: dB, SchoolID: sB}
	require.NoError(t, classes.Create(&f.ClassA))
	require.NoError(t, classes.Create(&f.ClassB))
	require.NoError(t, classes.Enroll(&model.Enrollment{ClassID: f.ClassA.ID, StudentID: f.StudentA.ID}))
	require.NoError(t, classes.Enroll(&model.Enrollment{ClassID: f.ClassB.ID, StudentID: f.StudentB.ID}))

	grades := NewGradeRepository(db)
	now := time.Now()
	require.NoError(t, grades.Create(&model.Grade{StudentID: f.StudentA.ID, ClassID: f.ClassA.ID, Assignment: "Quiz 1", Score: 18, MaxScore: 20, GradedAt: now}))
	require.NoError(t, grades.Create(&model.Grade{StudentID: f.StudentB.ID, ClassID: f.ClassB.ID, Assignment: "Lab 1", Score: 7, MaxScore: 10, GradedAt: now}))

	attendance := NewAttendanceRepository(db)
	require.NoError(t, attendance.Create(&model.Attendance{StudentID: f.StudentA.ID, ClassID: f.ClassA.ID, Date: now, Status: model.AttendancePresent}))
	require.NoError(t, attendance.Create(&model.Attendance{StudentID: f.StudentA.ID, ClassID: f.ClassA.ID, Date: now.AddDate(0, 0, -1), Status: model.AttendanceAbsent}))
	require.NoError(t, attendance.Create(&model.Attendance{StudentID: f.StudentB.ID, ClassID: f.ClassB.ID, Date: now, Status: model.AttendanceLate}))
	return f
}
