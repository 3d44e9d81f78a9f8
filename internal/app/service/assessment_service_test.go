package service

import (
	"context"
	"testing"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assessmentFixture struct {
	userRepo       *fakeUserRepo
	companyRepo    *fakeCompanyRepo
	problemRepo    *fakeProblemRepo
	assessmentRepo *fakeAssessmentRepo
	attemptRepo    *fakeAttemptRepo
	svc            *AssessmentService

	admin     Requester
	candidate Requester
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()
	f := &assessmentFixture{
		userRepo:       newFakeUserRepo(),
		companyRepo:    newFakeCompanyRepo(),
		problemRepo:    newFakeProblemRepo(),
		assessmentRepo: newFakeAssessmentRepo(),
	}
	f.attemptRepo = newFakeAttemptRepo(f.assessmentRepo)
	f.svc = NewAssessmentService(f.assessmentRepo, f.problemRepo, f.companyRepo, f.attemptRepo, f.userRepo, nil)

	require.NoError(t, f.companyRepo.Create(context.Background(), nil, &model.Company{ID: "acme", Name: "Acme"}))
	for _, id := range []string{"cand-1", "cand-2", "cand-3"} {
		require.NoError(t, f.userRepo.Create(context.Background(), &model.User{
			ID: id, Username: id, Email: id + "@example.com", UserType: model.UserTypeCandidate,
		}))
	}
	require.NoError(t, f.assessmentRepo.Create(context.Background(), nil, &model.Assessment{
		ID: "assessment-1", CompanyID: "acme", Title: "Screening", TimeLimit: 60,
	}))

	f.admin = Requester{UserID: "admin-1", UserType: model.UserTypeCompany, CompanyIDs: []string{"acme"}}
	f.candidate = Requester{UserID: "cand-1", UserType: model.UserTypeCandidate}
	return f
}

func TestAssignCandidates_Idempotent(t *testing.T) {
	f := newAssessmentFixture(t)

	result, err := f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1", "cand-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, 0, result.Existing)

	// Overlapping re-assignment leaves existing attempts untouched.
	result, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1", "cand-2", "cand-3"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 2, result.Existing)
}

func TestAssignCandidates_DoesNotResetStartedAttempt(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1"})
	require.NoError(t, err)
	attempts, err := f.attemptRepo.ListForCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)

	lifecycle := NewCandidateAssessmentService(f.attemptRepo, f.assessmentRepo, newFakeSubmissionRepo())
	_, err = lifecycle.Start(context.Background(), f.candidate, attempts[0].ID)
	require.NoError(t, err)

	_, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1"})
	require.NoError(t, err)

	ca, err := f.attemptRepo.FindByID(context.Background(), attempts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.CandidateStarted, ca.Status)
}

func TestAssignCandidates_Checks(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.svc.AssignCandidates(context.Background(), f.candidate, "assessment-1", []string{"cand-1"})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1", "ghost"})
	assert.ErrorIs(t, err, common.ErrValidation)

	otherAdmin := Requester{UserID: "admin-2", UserType: model.UserTypeCompany, CompanyIDs: []string{"globex"}}
	_, err = f.svc.AssignCandidates(context.Background(), otherAdmin, "assessment-1", []string{"cand-1"})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestGetAssessment_Visibility(t *testing.T) {
	f := newAssessmentFixture(t)

	// Owning admin sees it.
	_, err := f.svc.GetAssessment(context.Background(), f.admin, "assessment-1")
	assert.NoError(t, err)

	// Uninvited candidate does not.
	_, err = f.svc.GetAssessment(context.Background(), f.candidate, "assessment-1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	// Invitation grants read access.
	_, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1"})
	require.NoError(t, err)
	_, err = f.svc.GetAssessment(context.Background(), f.candidate, "assessment-1")
	assert.NoError(t, err)
}

func TestListAssessments(t *testing.T) {
	f := newAssessmentFixture(t)
	require.NoError(t, f.assessmentRepo.Create(context.Background(), nil, &model.Assessment{
		ID: "assessment-2", CompanyID: "globex", Title: "Other", TimeLimit: 30,
	}))

	// Admins see all of their companies' assessments regardless of invitations.
	out, err := f.svc.ListAssessments(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "assessment-1", out[0].ID)

	// Candidates only see what they are invited to.
	out, err = f.svc.ListAssessments(context.Background(), f.candidate)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = f.svc.AssignCandidates(context.Background(), f.admin, "assessment-1", []string{"cand-1"})
	require.NoError(t, err)
	out, err = f.svc.ListAssessments(context.Background(), f.candidate)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "assessment-1", out[0].ID)
}

func TestCreateAssessment_Checks(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.svc.CreateAssessment(context.Background(), f.candidate, CreateAssessmentRequest{
		CompanyID: "acme", Title: "X", TimeLimit: 60,
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.CreateAssessment(context.Background(), f.admin, CreateAssessmentRequest{
		CompanyID: "acme", Title: "X", TimeLimit: -5,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	otherAdmin := Requester{UserID: "admin-2", UserType: model.UserTypeCompany, CompanyIDs: []string{"globex"}}
	_, err = f.svc.CreateAssessment(context.Background(), otherAdmin, CreateAssessmentRequest{
		CompanyID: "acme", Title: "X", TimeLimit: 60,
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	// Private problems of other companies cannot be pulled in.
	private := &model.Problem{ID: "globex-1", Title: "Secret", CompanyID: strPtr("globex"), IsPublic: false}
	require.NoError(t, f.problemRepo.Create(context.Background(), nil, private))
	_, err = f.svc.CreateAssessment(context.Background(), f.admin, CreateAssessmentRequest{
		CompanyID: "acme", Title: "X", TimeLimit: 60, ProblemIDs: []string{"globex-1"},
	})
	assert.ErrorIs(t, err, common.ErrForbidden)

	bad := "not-a-timestamp"
	_, err = f.svc.CreateAssessment(context.Background(), f.admin, CreateAssessmentRequest{
		CompanyID: "acme", Title: "X", TimeLimit: 60, ExpiresAt: &bad,
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}
