package service

import (
	"context"
	"testing"
	"time"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionFixture(t *testing.T) (*lifecycleFixture, *SubmissionService) {
	t.Helper()
	f := newLifecycleFixture(t)
	require.NoError(t, f.assessmentRepo.SetProblems(context.Background(), nil, f.assessment.ID, []string{"p1", "p2"}))
	return f, NewSubmissionService(f.submissionRepo, f.assessmentRepo, f.svc)
}

func TestCreateSubmission(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	sub, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1",
		Code:      "print(sum(map(int, input().split())))",
		Language:  "python",
	})
	require.NoError(t, err)
	assert.Equal(t, f.attemptID, sub.CandidateAssessmentID)
	assert.Equal(t, "p1", sub.ProblemID)
	assert.Nil(t, sub.IsCorrect)
}

func TestCreateSubmission_RequiresRunningAttempt(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCreateSubmission_OnlyAssignedCandidate(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	_, err = svc.CreateSubmission(context.Background(), f.stranger, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateSubmission_ProblemMustBelongToAssessment(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	_, err = svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p99", Code: "x", Language: "go",
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateSubmission_RejectedAfterDeadline(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	f.advance(61 * time.Minute)
	_, err = svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	assert.ErrorIs(t, err, common.ErrConflict)

	ca, err := f.attemptRepo.FindByID(context.Background(), f.attemptID)
	require.NoError(t, err)
	assert.Equal(t, model.CandidateExpired, ca.Status)
}

func TestResubmissionCreatesNewRow(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	first, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "attempt one", Language: "go",
	})
	require.NoError(t, err)
	second, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "attempt two", Language: "go",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	subs, err := svc.ListSubmissions(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestListSubmissions_Visibility(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)
	_, err = svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	require.NoError(t, err)

	_, err = svc.ListSubmissions(context.Background(), f.admin, f.attemptID)
	assert.NoError(t, err)

	_, err = svc.ListSubmissions(context.Background(), f.stranger, f.attemptID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestEvaluateSubmission(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)
	sub, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	require.NoError(t, err)

	correct := true
	score := 90.0
	evaluated, err := svc.EvaluateSubmission(context.Background(), f.admin, sub.ID, EvaluateSubmissionRequest{
		IsCorrect:         &correct,
		PassedTestCases:   9,
		TotalTestCases:    10,
		EvaluatorComments: "Off-by-one on the last case.",
		Score:             &score,
	})
	require.NoError(t, err)
	require.NotNil(t, evaluated.IsCorrect)
	assert.True(t, *evaluated.IsCorrect)
	assert.Equal(t, 9, evaluated.PassedTestCases)
	assert.Equal(t, 10, evaluated.TotalTestCases)
}

func TestEvaluateSubmission_Checks(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)
	sub, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	require.NoError(t, err)

	_, err = svc.EvaluateSubmission(context.Background(), f.candidate, sub.ID, EvaluateSubmissionRequest{})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.EvaluateSubmission(context.Background(), f.admin, sub.ID, EvaluateSubmissionRequest{
		PassedTestCases: 5, TotalTestCases: 3,
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestProgressAcrossSubmissions(t *testing.T) {
	f, svc := newSubmissionFixture(t)

	_, err := f.svc.Start(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)

	sub1, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p1", Code: "x", Language: "go",
	})
	require.NoError(t, err)
	sub2, err := svc.CreateSubmission(context.Background(), f.candidate, f.attemptID, CreateSubmissionRequest{
		ProblemID: "p2", Code: "y", Language: "go",
	})
	require.NoError(t, err)

	_, err = svc.EvaluateSubmission(context.Background(), f.admin, sub1.ID, EvaluateSubmissionRequest{
		PassedTestCases: 2, TotalTestCases: 5,
	})
	require.NoError(t, err)
	_, err = svc.EvaluateSubmission(context.Background(), f.admin, sub2.ID, EvaluateSubmissionRequest{
		PassedTestCases: 4, TotalTestCases: 4,
	})
	require.NoError(t, err)

	progress, err := f.svc.Progress(context.Background(), f.candidate, f.attemptID)
	require.NoError(t, err)
	assert.Equal(t, 6, progress.PassedTestCases)
	assert.Equal(t, 9, progress.TotalTestCases)
}
