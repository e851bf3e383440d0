package repository

import (
	"testing"
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseSessionOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	f := seedSchools(t, db)
	repo := NewTutoringRepository(db)

	session := &model.TutoringSession{StudentID: f.StudentA.ID, Subject: "Algebra", StartedAt: time.Now()}
	require.NoError(t, repo.CreateSession(session))

	active, err := repo.FindActiveSession(f.StudentA.ID, "Algebra")
	require.NoError(t, err)
	assert.Equal(t, session.ID, active.ID)

	outcome := SessionOutcome{EndedAt: time.Now(), Summary: "Worked on equations", PerformanceScore: 82, ConceptsCovered: []string{"Equation"}}
	closed, err := repo.CloseSession(session.ID, outcome)
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = repo.CloseSession(session.ID, SessionOutcome{EndedAt: time.Now(), Summary: "again", PerformanceScore: 10})
	require.NoError(t, err)
	assert.False(t, closed)

	stored, err := repo.FindSession(AllAccess(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EndedAt)
	assert.Equal(t, "Worked on equations", stored.Summary)
	assert.Equal(t, 82, *stored.PerformanceScore)
	assert.Equal(t, []string{"Equation"}, []string(stored.ConceptsCovered))
	assert.Empty(t, stored.StrengthAreas)

	_, err = repo.FindActiveSession(f.StudentA.ID, "Algebra")
	assert.Error(t, err)

	count, err := repo.CountCompletedSessions(f.StudentA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMessagesOrderedAndScoped(t *testing.T) {
	db := newTestDB(t)
	f := seedSchools(t, db)
	repo := NewTutoringRepository(db)

	session := &model.TutoringSession{StudentID: f.StudentA.ID, Subject: "Biology", StartedAt: time.Now()}
	require.NoError(t, repo.CreateSession(session))

	ts := time.Now()
	require.NoError(t, repo.AppendMessages(session.ID,
		&model.TutoringMessage{Role: model.RoleUser, Content: "What is a cell?", Timestamp: ts},
		&model.TutoringMessage{Role: model.RoleAssistant, Content: "A cell is...", Concepts: []string{"Cell"}, Timestamp: ts},
	))

	messages, err := repo.FindMessages(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)

	_, err = repo.FindSession(OwnAccess(f.StudentB.ID), session.ID)
	assert.Error(t, err)
	_, err = repo.FindSession(EducatorAccess(f.EducatorA.ID), session.ID)
	assert.NoError(t, err)
	_, err = repo.FindSession(EducatorAccess(f.EducatorB.ID), session.ID)
	assert.Error(t, err)
}

func TestEducatorPerformance(t *testing.T) {
	db := newTestDB(t)
	f := seedSchools(t, db)
	repo := NewAnalyticsRepository(db)

	stats, err := repo.EducatorPerformance(DistrictAccess(f.DistrictA.ID))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, f.EducatorA.ID, stats[0].EducatorID)
	assert.Equal(t, int64(1), stats[0].Classes)
	assert.Equal(t, int64(1), stats[0].Students)
	assert.InDelta(t, 90.0, stats[0].AverageGrade, 0.001)
	assert.InDelta(t, 50.0, stats[0].AttendanceRate, 0.001)

	stats, err = repo.EducatorPerformance(AllAccess())
	require.NoError(t, err)
	assert.Len(t, stats, 2)

	stats, err = repo.EducatorPerformance(NoAccess())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestAppendMessagesRejectsEndedSession(t *testing.T) {
	db := newTestDB(t)
	f := seedSchools(t, db)
	repo := NewTutoringRepository(db)

	session := &model.TutoringSession{StudentID: f.StudentA.ID, Subject: "History", StartedAt: time.Now()}
	require.NoError(t, repo.CreateSession(session))
	closed, err := repo.CloseSession(session.ID, SessionOutcome{EndedAt: time.Now(), Summary: "done", PerformanceScore: 70})
	require.NoError(t, err)
	require.True(t, closed)

	err = repo.AppendMessages(session.ID,
		&model.TutoringMessage{Role: model.RoleUser, Content: "late question", Timestamp: time.Now()},
		&model.TutoringMessage{Role: model.RoleAssistant, Content: "late answer", Timestamp: time.Now()})
	assert.ErrorIs(t, err, util.ErrSessionEnded)

	messages, err := repo.FindMessages(session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
