package service

import (
	"testing"
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newAchievementService(w *schoolWorld) *AchievementService {
	return NewAchievementService(repository.NewAchievementRepository(w.db), w.users, repository.NewTutoringRepository(w.db))
}

func TestAwardAndProgress(t *testing.T) {
	w := newSchoolWorld(t)
	svc := newAchievementService(w)
	rivera, jane, omar := w.accounts["ms_rivera"], w.accounts["jane"], w.accounts["omar"]

	// 教师只能给自己班上的学生颁发
	class, err := w.schools.CreateClass(rivera, ClassInput{Name: "Algebra I"})
	require.NoError(t, err)
	_, err = w.schools.Enroll(rivera, class.ID, jane.ID)
	require.NoError(t, err)

	a, err := svc.Award(rivera, AwardInput{UserID: jane.ID, Type: model.AchievementCertificate, Title: "Fractions", MaxProgress: intPtr(5), Progress: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 5, *a.Progress)
	assert.NotNil(t, a.EarnedAt)

	_, err = svc.Award(rivera, AwardInput{UserID: omar.ID, Type: model.AchievementBadge, Title: "Nope"})
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = svc.Award(jane, AwardInput{UserID: jane.ID, Type: model.AchievementBadge, Title: "Self"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Award(rivera, AwardInput{UserID: jane.ID, Type: model.AchievementBadge, Title: "Half", Progress: intPtr(1)})
	assert.ErrorIs(t, err, util.ErrInvalidProgress)
	_, err = svc.Award(rivera, AwardInput{UserID: jane.ID, Type: "trophy", Title: "Bad"})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	ratios, err := svc.Award(rivera, AwardInput{UserID: jane.ID, Type: model.AchievementBadge, Title: "Ratios", MaxProgress: intPtr(3)})
	require.NoError(t, err)
	assert.Nil(t, ratios.EarnedAt)

	updated, err := svc.UpdateProgress(jane, ratios.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, *updated.Progress)
	updated, err = svc.UpdateProgress(jane, ratios.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, *updated.Progress)
	assert.NotNil(t, updated.EarnedAt)

	_, err = svc.UpdateProgress(omar, ratios.ID, 1)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestShareAchievement(t *testing.T) {
	w := newSchoolWorld(t)
	svc := newAchievementService(w)
	jane, omar := w.accounts["jane"], w.accounts["omar"]

	a, err := svc.Award(w.accounts["lincoln_admin"], AwardInput{UserID: jane.ID, Type: model.AchievementBadge, Title: "Honor Roll"})
	require.NoError(t, err)

	_, err = svc.SetShared(w.accounts["lincoln_admin"], a.ID, true)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	shared, err := svc.SetShared(jane, a.ID, true)
	require.NoError(t, err)
	assert.True(t, shared.Shared)

	list, err := svc.Shared(jane)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.Shared(omar)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTutoringMilestones(t *testing.T) {
	w := newSchoolWorld(t)
	svc := newAchievementService(w)
	jane := w.accounts["jane"]
	tutoring := repository.NewTutoringRepository(w.db)

	for i := 0; i < 5; i++ {
		s := &model.TutoringSession{StudentID: jane.ID, Subject: "Algebra", StartedAt: time.Now()}
		require.NoError(t, tutoring.CreateSession(s))
		_, err := tutoring.CloseSession(s.ID, repository.SessionOutcome{EndedAt: time.Now(), Summary: "ok", PerformanceScore: 80})
		require.NoError(t, err)
	}

	awarded, err := svc.AwardTutoringMilestones(jane.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 2)
	assert.Equal(t, "First Tutoring Session", awarded[0].Title)
	assert.Equal(t, "Dedicated Learner", awarded[1].Title)
	assert.Equal(t, 5, *awarded[1].Progress)

	awarded, err = svc.AwardTutoringMilestones(jane.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)
}
