package service

import (
	"testing"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassLifecycle(t *testing.T) {
	w := newSchoolWorld(t)
	rivera, jane, omar := w.accounts["ms_rivera"], w.accounts["jane"], w.accounts["omar"]

	class, err := w.schools.CreateClass(rivera, ClassInput{Name: "Algebra I", Subject: "math"})
	require.NoError(t, err)
	assert.Equal(t, rivera.SchoolID, class.SchoolID)
	assert.Equal(t, rivera.DepartmentID, class.DepartmentID)

	_, err = w.schools.CreateClass(jane, ClassInput{Name: "Nope"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = w.schools.Enroll(rivera, class.ID, jane.ID)
	require.NoError(t, err)
	_, err = w.schools.Enroll(rivera, class.ID, jane.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyExists)
	_, err = w.schools.Enroll(rivera, class.ID, rivera.ID)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = w.schools.Enroll(w.accounts["mr_chen"], class.ID, omar.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = w.schools.RecordGrade(rivera, GradeInput{ClassID: class.ID, StudentID: jane.ID, Assignment: "Quiz", Score: 9, MaxScore: 10})
	require.NoError(t, err)
	_, err = w.schools.RecordGrade(rivera, GradeInput{ClassID: class.ID, StudentID: omar.ID, Score: 9, MaxScore: 10})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = w.schools.RecordGrade(rivera, GradeInput{ClassID: class.ID, StudentID: jane.ID, Score: 11, MaxScore: 10})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = w.schools.RecordAttendance(rivera, AttendanceInput{ClassID: class.ID, StudentID: jane.ID, Status: model.AttendanceLate})
	require.NoError(t, err)
	_, err = w.schools.RecordAttendance(rivera, AttendanceInput{ClassID: class.ID, StudentID: jane.ID, Status: "sleeping"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	grades, err := w.schools.ListGrades(jane, 0)
	require.NoError(t, err)
	assert.Len(t, grades, 1)
	grades, err = w.schools.ListGrades(omar, 0)
	require.NoError(t, err)
	assert.Empty(t, grades)

	attendance, err := w.schools.ListAttendance(w.accounts["lincoln_admin"], class.ID)
	require.NoError(t, err)
	assert.Len(t, attendance, 1)
}

func TestAdminCreatesClassForEducatorInScope(t *testing.T) {
	w := newSchoolWorld(t)
	admin := w.accounts["lincoln_admin"]

	class, err := w.schools.CreateClass(admin, ClassInput{Name: "Geometry", EducatorID: w.accounts["ms_rivera"].ID})
	require.NoError(t, err)
	assert.Equal(t, w.accounts["ms_rivera"].ID, class.EducatorID)

	_, err = w.schools.CreateClass(admin, ClassInput{Name: "Geometry", EducatorID: w.accounts["mr_chen"].ID})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = w.schools.CreateClass(admin, ClassInput{Name: "Geometry", EducatorID: w.accounts["jane"].ID})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestDepartments(t *testing.T) {
	w := newSchoolWorld(t)
	north, lincoln := w.accounts["north_admin"], w.accounts["lincoln_admin"]

	deps, err := w.schools.ListDepartments(north)
	require.NoError(t, err)
	assert.Len(t, deps, 2)

	deps, err = w.schools.ListDepartments(w.accounts["ms_rivera"])
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "Mathematics", deps[0].Name)

	dep, err := w.schools.CreateDepartment(lincoln, "English", *lincoln.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, *lincoln.DistrictID, dep.DistrictID)

	roosevelt, err := w.orgs.FindSchoolByName("Roosevelt Middle School")
	require.NoError(t, err)
	_, err = w.schools.CreateDepartment(north, "Art", roosevelt.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = w.schools.CreateDepartment(w.accounts["ms_rivera"], "Art", *lincoln.SchoolID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestListUsersByScope(t *testing.T) {
	w := newSchoolWorld(t)

	users, err := w.schools.ListUsers(w.accounts["north_admin"], model.Student)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "jane", users[0].Username)

	users, err = w.schools.ListUsers(w.accounts["omar"], "")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "omar", users[0].Username)
}
