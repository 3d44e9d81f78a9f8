package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to CandidateStatus
		want     bool
	}{
		{CandidateInvited, CandidateStarted, true},
		{CandidateInvited, CandidateCompleted, false},
		{CandidateInvited, CandidateExpired, true},
		{CandidateStarted, CandidateCompleted, true},
		{CandidateStarted, CandidateExpired, true},
		{CandidateStarted, CandidateStarted, false},
		{CandidateCompleted, CandidateExpired, false},
		{CandidateExpired, CandidateStarted, false},
		{CandidateExpired, CandidateCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCandidateStatusTerminal(t *testing.T) {
	assert.False(t, CandidateInvited.Terminal())
	assert.False(t, CandidateStarted.Terminal())
	assert.True(t, CandidateCompleted.Terminal())
	assert.True(t, CandidateExpired.Terminal())
}

func TestDeadline(t *testing.T) {
	startedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("time limit plus extension", func(t *testing.T) {
		ca := &CandidateAssessment{StartedAt: &startedAt, TimeExtended: 15}
		a := &Assessment{TimeLimit: 60}
		deadline := ca.Deadline(a)
		require.NotNil(t, deadline)
		assert.True(t, deadline.Equal(startedAt.Add(75*time.Minute)))
	})

	t.Run("assessment expiry caps the window", func(t *testing.T) {
		expiry := startedAt.Add(30 * time.Minute)
		ca := &CandidateAssessment{StartedAt: &startedAt}
		a := &Assessment{TimeLimit: 60, ExpiresAt: &expiry}
		deadline := ca.Deadline(a)
		require.NotNil(t, deadline)
		assert.True(t, deadline.Equal(expiry))
	})

	t.Run("unstarted attempt only bounded by assessment expiry", func(t *testing.T) {
		expiry := startedAt.Add(24 * time.Hour)
		ca := &CandidateAssessment{}
		a := &Assessment{TimeLimit: 60, ExpiresAt: &expiry}
		deadline := ca.Deadline(a)
		require.NotNil(t, deadline)
		assert.True(t, deadline.Equal(expiry))
	})

	t.Run("unstarted without expiry has no deadline", func(t *testing.T) {
		ca := &CandidateAssessment{}
		a := &Assessment{TimeLimit: 60}
		assert.Nil(t, ca.Deadline(a))
	})

	t.Run("zero time limit expires at start", func(t *testing.T) {
		ca := &CandidateAssessment{StartedAt: &startedAt}
		a := &Assessment{TimeLimit: 0}
		deadline := ca.Deadline(a)
		require.NotNil(t, deadline)
		assert.True(t, deadline.Equal(startedAt))
	})
}
