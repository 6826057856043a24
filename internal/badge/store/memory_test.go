package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insignia/internal/badge/models"
	"insignia/internal/sentinel"
	dErrors "insignia/pkg/domain-errors"
)

func TestIssueBatch_AssignsIncreasingIDs(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	first, err := s.IssueBatch(ctx, []models.Draft{
		{Holder: "alice", Role: models.RoleTeacher, ContentRef: "T1"},
		{Holder: "bob", Role: models.RoleTeachingAssistant, ContentRef: "T2"},
	}, now)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.EqualValues(t, 1, first[0].ID)
	assert.EqualValues(t, 2, first[1].ID)

	second, err := s.IssueBatch(ctx, []models.Draft{{Holder: "carol", Role: models.RoleStudent}}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, second[0].ID)
}

func TestIssueBatch_AllOrNothing(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	_, err := s.IssueBatch(ctx, []models.Draft{
		{Holder: "alice", Role: models.RoleTeacher, ContentRef: "T1"},
		{Holder: "", Role: models.RoleTeacher, ContentRef: "T2"},
	}, now)
	require.Error(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed batch must not create any badge")
	assert.EqualValues(t, 0, s.LastBadgeID(), "failed batch must not advance the allocator")
}

func TestIssueBatch_ReissueOverwritesReverseIndex(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	first, err := s.IssueBatch(ctx, []models.Draft{{Holder: "dave", Role: models.RoleStudent}}, now)
	require.NoError(t, err)

	// A second issuance to the same identity is not rejected: the reverse
	// index now points at the new badge and the first stays reachable by id.
	second, err := s.IssueBatch(ctx, []models.Draft{{Holder: "dave", Role: models.RoleStudent}}, now)
	require.NoError(t, err)

	byHolder, err := s.FindByHolder(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, second[0].ID, byHolder.ID)

	orphan, err := s.FindByID(ctx, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, orphan.ID)
}

func TestFindByID_NotFound(t *testing.T) {
	s := NewInMemory()
	_, err := s.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCertify_AssignsSequenceInOrder(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	students, err := s.IssueBatch(ctx, []models.Draft{
		{Holder: "s1", Role: models.RoleStudent},
		{Holder: "s2", Role: models.RoleStudent},
	}, now)
	require.NoError(t, err)

	// Certify in reverse issuance order; sequence follows certification order.
	second, err := s.Certify(ctx, students[1].ID, "B", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.SequenceNumber)

	first, err := s.Certify(ctx, students[0].ID, "A", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, first.SequenceNumber)

	grade, ok := first.Grade()
	require.True(t, ok)
	assert.Equal(t, "A", grade)
}

func TestCertify_FailuresDoNotAdvanceSequence(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	profiles, err := s.IssueBatch(ctx, []models.Draft{
		{Holder: "prof", Role: models.RoleTeacher, ContentRef: "T1"},
		{Holder: "stud", Role: models.RoleStudent},
	}, now)
	require.NoError(t, err)

	_, err = s.Certify(ctx, 99, "A", now)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = s.Certify(ctx, profiles[0].ID, "A", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAStudent))

	certified, err := s.Certify(ctx, profiles[1].ID, "A", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, certified.SequenceNumber, "failed attempts must not consume sequence numbers")

	_, err = s.Certify(ctx, profiles[1].ID, "B", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyCertified))
}

func TestRemove_DeletesProfileAndReverseEntry(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	issued, err := s.IssueBatch(ctx, []models.Draft{{Holder: "eve", Role: models.RoleStudent}}, now)
	require.NoError(t, err)

	removed, err := s.Remove(ctx, issued[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.Identity("eve"), removed.Holder)

	_, err = s.FindByID(ctx, issued[0].ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = s.FindByHolder(ctx, "eve")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = s.Remove(ctx, issued[0].ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRemove_OrphanedBadgeKeepsCurrentReverseEntry(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	first, err := s.IssueBatch(ctx, []models.Draft{{Holder: "frank", Role: models.RoleStudent}}, now)
	require.NoError(t, err)
	second, err := s.IssueBatch(ctx, []models.Draft{{Holder: "frank", Role: models.RoleStudent}}, now)
	require.NoError(t, err)

	// Terminating the orphaned first badge must not drop the reverse entry
	// that now points at the second badge.
	_, err = s.Remove(ctx, first[0].ID)
	require.NoError(t, err)

	byHolder, err := s.FindByHolder(ctx, "frank")
	require.NoError(t, err)
	assert.Equal(t, second[0].ID, byHolder.ID)
}

func TestRemovedIDIsNeverReused(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	now := time.Now()

	issued, err := s.IssueBatch(ctx, []models.Draft{{Holder: "gina", Role: models.RoleStudent}}, now)
	require.NoError(t, err)
	_, err = s.Remove(ctx, issued[0].ID)
	require.NoError(t, err)

	next, err := s.IssueBatch(ctx, []models.Draft{{Holder: "gina", Role: models.RoleStudent}}, now)
	require.NoError(t, err)
	assert.Greater(t, uint64(next[0].ID), uint64(issued[0].ID))
}
