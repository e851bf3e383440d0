package service

import (
	"testing"

	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearningPathFlow(t *testing.T) {
	w := newSchoolWorld(t)
	achievements := newAchievementService(w)
	svc := NewLearningPathService(repository.NewLearningPathRepository(w.db), achievements)
	rivera, jane, omar := w.accounts["ms_rivera"], w.accounts["jane"], w.accounts["omar"]

	path, err := svc.Create(rivera, LearningPathInput{
		Title:   "Linear equations",
		Subject: "math",
		Nodes:   []LearningPathNodeInput{{Title: "Variables"}, {Title: "One-step equations"}},
	})
	require.NoError(t, err)
	require.Len(t, path.Nodes, 2)
	assert.Equal(t, 2, path.Nodes[1].Position)

	_, err = svc.Create(jane, LearningPathInput{Title: "Mine"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	node, err := svc.AddNode(rivera, path.ID, LearningPathNodeInput{Title: "Two-step equations"})
	require.NoError(t, err)
	assert.Equal(t, 3, node.Position)
	_, err = svc.AddNode(w.accounts["mr_chen"], path.ID, LearningPathNodeInput{Title: "x"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	paths, err := svc.List(jane, "")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Len(t, paths[0].Nodes, 3)
	paths, err = svc.List(omar, "")
	require.NoError(t, err)
	assert.Empty(t, paths)

	badge, err := svc.CompleteNode(jane, path.ID, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.ID, *badge.LearningPathNodeID)
	assert.Equal(t, "Linear equations: Two-step equations", badge.Title)
	_, err = svc.CompleteNode(jane, path.ID, node.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyExists)
	_, err = svc.CompleteNode(omar, path.ID, node.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
