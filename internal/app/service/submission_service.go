package service

import (
	"context"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	assessmentRepo repository.AssessmentRepository
	lifecycle      *CandidateAssessmentService
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	assessmentRepo repository.AssessmentRepository,
	lifecycle *CandidateAssessmentService,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		assessmentRepo: assessmentRepo,
		lifecycle:      lifecycle,
	}
}

type CreateSubmissionRequest struct {
	ProblemID string `json:"problem_id"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

// CreateSubmission records a candidate's answer against a running attempt.
// The attempt is lazily expired first, so a submission that arrives past the
// deadline lands on an expired attempt and is rejected.
func (s *SubmissionService) CreateSubmission(ctx context.Context, requester Requester, attemptID string, req CreateSubmissionRequest) (*model.Submission, error) {
	ca, _, err := s.lifecycle.loadFresh(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID {
		return nil, common.Errorf("only the assigned candidate can submit answers: %w", common.ErrForbidden)
	}
	if ca.Status != model.CandidateStarted {
		return nil, common.Errorf("submissions are only accepted while the attempt is running: %w", common.ErrConflict)
	}
	if req.ProblemID == "" || req.Code == "" {
		return nil, common.Errorf("problem_id and code are required: %w", common.ErrValidation)
	}
	ok, err := s.assessmentRepo.HasProblem(ctx, ca.AssessmentID, req.ProblemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("problem %s is not part of this assessment: %w", req.ProblemID, common.ErrValidation)
	}

	sub := &model.Submission{
		ID:                    uuid.NewString(),
		CandidateAssessmentID: attemptID,
		ProblemID:             req.ProblemID,
		Code:                  req.Code,
		Language:              req.Language,
	}
	if err := s.submissionRepo.Create(ctx, nil, sub); err != nil {
		return nil, err
	}
	return s.submissionRepo.FindByID(ctx, sub.ID)
}

// ListSubmissions returns every submission of the attempt, oldest first,
// under the same visibility rule as the attempt itself.
func (s *SubmissionService) ListSubmissions(ctx context.Context, requester Requester, attemptID string) ([]model.Submission, error) {
	ca, assessment, err := s.lifecycle.loadFresh(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID && !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("attempt belongs to another candidate: %w", common.ErrForbidden)
	}
	return s.submissionRepo.ListByCandidateAssessment(ctx, attemptID)
}

type EvaluateSubmissionRequest struct {
	IsCorrect         *bool    `json:"is_correct"`
	PassedTestCases   int      `json:"passed_test_cases"`
	TotalTestCases    int      `json:"total_test_cases"`
	ExecutionTime     *float64 `json:"execution_time,omitempty"`
	MemoryUsed        *float64 `json:"memory_used,omitempty"`
	EvaluatorComments string   `json:"evaluator_comments"`
	Score             *float64 `json:"score,omitempty"`
}

// EvaluateSubmission records a manual review on one submission. Only admins
// of the company owning the assessment (or staff) may evaluate.
func (s *SubmissionService) EvaluateSubmission(ctx context.Context, requester Requester, submissionID string, req EvaluateSubmissionRequest) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	_, assessment, err := s.lifecycle.loadFresh(ctx, sub.CandidateAssessmentID)
	if err != nil {
		return nil, err
	}
	if !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("requester does not administer the owning company: %w", common.ErrForbidden)
	}
	if req.PassedTestCases < 0 || req.TotalTestCases < 0 || req.PassedTestCases > req.TotalTestCases {
		return nil, common.Errorf("passed_test_cases must be between 0 and total_test_cases: %w", common.ErrValidation)
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return nil, common.Errorf("score must be between 0 and 100: %w", common.ErrValidation)
	}

	sub.IsCorrect = req.IsCorrect
	sub.PassedTestCases = req.PassedTestCases
	sub.TotalTestCases = req.TotalTestCases
	sub.ExecutionTime = req.ExecutionTime
	sub.MemoryUsed = req.MemoryUsed
	sub.EvaluatorComments = req.EvaluatorComments
	sub.Score = req.Score

	if err := s.submissionRepo.SetEvaluation(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
