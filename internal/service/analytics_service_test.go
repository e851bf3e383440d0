package service

import (
	"testing"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEducatorPerformance(t *testing.T) {
	w := newSchoolWorld(t)
	svc := NewAnalyticsService(repository.NewAnalyticsRepository(w.db), w.users)
	rivera, chen, jane, omar := w.accounts["ms_rivera"], w.accounts["mr_chen"], w.accounts["jane"], w.accounts["omar"]

	algebra, err := w.schools.CreateClass(rivera, ClassInput{Name: "Algebra I"})
	require.NoError(t, err)
	biology, err := w.schools.CreateClass(chen, ClassInput{Name: "Biology"})
	require.NoError(t, err)
	_, err = w.schools.Enroll(rivera, algebra.ID, jane.ID)
	require.NoError(t, err)
	_, err = w.schools.Enroll(chen, biology.ID, omar.ID)
	require.NoError(t, err)

	for _, score := range []float64{8, 7} {
		_, err = w.schools.RecordGrade(rivera, GradeInput{ClassID: algebra.ID, StudentID: jane.ID, Score: score, MaxScore: 9})
		require.NoError(t, err)
	}
	for _, status := range []model.AttendanceStatus{model.AttendancePresent, model.AttendanceLate, model.AttendanceAbsent} {
		_, err = w.schools.RecordAttendance(rivera, AttendanceInput{ClassID: algebra.ID, StudentID: jane.ID, Status: status})
		require.NoError(t, err)
	}

	report, err := svc.EducatorPerformance(w.accounts["north_admin"])
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Ana Rivera", report[0].Name)
	assert.Equal(t, int64(1), report[0].Students)
	assert.Equal(t, 83.3, report[0].AverageGrade)
	assert.Equal(t, 66.7, report[0].AttendanceRate)

	report, err = svc.EducatorPerformance(chen)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Wei Chen", report[0].Name)
	assert.Zero(t, report[0].AverageGrade)

	_, err = svc.EducatorPerformance(jane)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
