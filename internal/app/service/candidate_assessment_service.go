package service

import (
	"context"
	"log"
	"time"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"

	"github.com/google/uuid"
)

// CandidateAssessmentService owns the attempt lifecycle:
// invited -> started -> completed, with any non-terminal state moving to
// expired once the deadline passes. Expiry is evaluated lazily on every
// read; the worker sweep reconciles rows nobody reads.
type CandidateAssessmentService struct {
	attemptRepo    repository.CandidateAssessmentRepository
	assessmentRepo repository.AssessmentRepository
	submissionRepo repository.SubmissionRepository
	now            func() time.Time
}

func NewCandidateAssessmentService(
	attemptRepo repository.CandidateAssessmentRepository,
	assessmentRepo repository.AssessmentRepository,
	submissionRepo repository.SubmissionRepository,
) *CandidateAssessmentService {
	return &CandidateAssessmentService{
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		submissionRepo: submissionRepo,
		now:            time.Now,
	}
}

// GetAttempt loads an attempt, applies lazy expiry, and checks visibility:
// candidates see their own attempts, company admins those of their
// companies' assessments.
func (s *CandidateAssessmentService) GetAttempt(ctx context.Context, requester Requester, id string) (*model.CandidateAssessment, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID && !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("attempt belongs to another candidate: %w", common.ErrForbidden)
	}
	return ca, nil
}

// ListAttempts: admins get attempts of their companies' assessments,
// candidates their own.
func (s *CandidateAssessmentService) ListAttempts(ctx context.Context, requester Requester) ([]model.CandidateAssessment, error) {
	if len(requester.CompanyIDs) > 0 {
		return s.attemptRepo.ListForCompanies(ctx, requester.CompanyIDs)
	}
	return s.attemptRepo.ListForCandidate(ctx, requester.UserID)
}

// Start moves invited -> started and stamps started_at, but only for the
// assigned candidate. The transition is a compare-and-swap so concurrent
// calls cannot re-stamp the time.
func (s *CandidateAssessmentService) Start(ctx context.Context, requester Requester, id string) (*model.CandidateAssessment, error) {
	ca, _, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID {
		return nil, common.Errorf("only the assigned candidate can start this assessment: %w", common.ErrForbidden)
	}
	if !ca.Status.CanTransition(model.CandidateStarted) {
		return nil, common.Errorf("cannot start an attempt in status %q: %w", ca.Status, common.ErrConflict)
	}

	ok, err := s.attemptRepo.TransitionStatus(ctx, id, model.CandidateInvited, model.CandidateStarted, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("attempt was started concurrently: %w", common.ErrConflict)
	}
	return s.attemptRepo.FindByID(ctx, id)
}

// Complete moves started -> completed and stamps completed_at.
func (s *CandidateAssessmentService) Complete(ctx context.Context, requester Requester, id string) (*model.CandidateAssessment, error) {
	ca, _, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID {
		return nil, common.Errorf("only the assigned candidate can submit this assessment: %w", common.ErrForbidden)
	}
	if !ca.Status.CanTransition(model.CandidateCompleted) {
		return nil, common.Errorf("cannot submit an attempt in status %q: %w", ca.Status, common.ErrConflict)
	}

	ok, err := s.attemptRepo.TransitionStatus(ctx, id, model.CandidateStarted, model.CandidateCompleted, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("attempt changed state concurrently: %w", common.ErrConflict)
	}
	return s.attemptRepo.FindByID(ctx, id)
}

// RecordBreak appends a break timestamp to a running attempt and records the
// accommodation as used.
func (s *CandidateAssessmentService) RecordBreak(ctx context.Context, requester Requester, id string) (*model.CandidateAssessment, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID {
		return nil, common.Errorf("only the assigned candidate can take a break: %w", common.ErrForbidden)
	}
	if !assessment.AllowsBreaks {
		return nil, common.Errorf("this assessment does not allow breaks: %w", common.ErrForbidden)
	}
	if ca.Status != model.CandidateStarted {
		return nil, common.Errorf("breaks can only be taken while the attempt is running: %w", common.ErrConflict)
	}

	at := s.now()
	ok, err := s.attemptRepo.AppendBreak(ctx, id, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("attempt changed state concurrently: %w", common.ErrConflict)
	}
	if err := s.attemptRepo.SetUsedAccommodation(ctx, id, "breaks", at.Format(time.RFC3339)); err != nil {
		log.Printf("WARN: Failed to record break accommodation for attempt %s: %v", id, err)
	}
	return s.attemptRepo.FindByID(ctx, id)
}

type ExtensionRequestInput struct {
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason"`
}

// RequestExtension records a candidate's ask for extra minutes. Granting is
// a separate, privileged step.
func (s *CandidateAssessmentService) RequestExtension(ctx context.Context, requester Requester, id string, input ExtensionRequestInput) (*model.ExtensionRequest, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID {
		return nil, common.Errorf("only the assigned candidate can request an extension: %w", common.ErrForbidden)
	}
	if !assessment.AllowsExtraTime {
		return nil, common.Errorf("this assessment does not allow extra time: %w", common.ErrForbidden)
	}
	if ca.Status.Terminal() {
		return nil, common.Errorf("cannot request an extension on a finished attempt: %w", common.ErrConflict)
	}
	if input.Minutes <= 0 {
		return nil, common.Errorf("minutes must be positive: %w", common.ErrValidation)
	}

	req := &model.ExtensionRequest{
		ID:                    uuid.NewString(),
		CandidateAssessmentID: id,
		Minutes:               input.Minutes,
		Reason:                input.Reason,
		Status:                model.ExtensionPending,
	}
	if err := s.attemptRepo.CreateExtensionRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListExtensionRequests is for the company side reviewing pending asks.
func (s *CandidateAssessmentService) ListExtensionRequests(ctx context.Context, requester Requester, id string) ([]model.ExtensionRequest, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID && !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("attempt belongs to another candidate: %w", common.ErrForbidden)
	}
	return s.attemptRepo.ListExtensionRequests(ctx, id)
}

// ResolveExtension grants or denies a pending request. Only admins of the
// company owning the assessment may resolve; granting adds the minutes to
// time_extended atomically.
func (s *CandidateAssessmentService) ResolveExtension(ctx context.Context, requester Requester, requestID string, grant bool) (*model.ExtensionRequest, error) {
	req, err := s.attemptRepo.FindExtensionRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	ca, assessment, err := s.loadFresh(ctx, req.CandidateAssessmentID)
	if err != nil {
		return nil, err
	}
	if !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("requester does not administer the owning company: %w", common.ErrForbidden)
	}
	if grant && ca.Status.Terminal() {
		return nil, common.Errorf("cannot grant an extension on a finished attempt: %w", common.ErrConflict)
	}

	status := model.ExtensionDenied
	if grant {
		status = model.ExtensionGranted
	}
	ok, err := s.attemptRepo.ResolveExtensionRequest(ctx, requestID, status, requester.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("extension request is already resolved: %w", common.ErrConflict)
	}
	return s.attemptRepo.FindExtensionRequestByID(ctx, requestID)
}

type EvaluateAttemptRequest struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Evaluate sets the authoritative score and feedback on a completed attempt.
// Scoring is a manual evaluator action, never derived automatically.
func (s *CandidateAssessmentService) Evaluate(ctx context.Context, requester Requester, id string, req EvaluateAttemptRequest) (*model.CandidateAssessment, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("requester does not administer the owning company: %w", common.ErrForbidden)
	}
	if ca.Status != model.CandidateCompleted && ca.Status != model.CandidateExpired {
		return nil, common.Errorf("only finished attempts can be evaluated: %w", common.ErrConflict)
	}
	if req.Score < 0 || req.Score > 100 {
		return nil, common.Errorf("score must be between 0 and 100: %w", common.ErrValidation)
	}

	if err := s.attemptRepo.SetEvaluation(ctx, id, req.Score, req.Feedback); err != nil {
		return nil, err
	}
	return s.attemptRepo.FindByID(ctx, id)
}

// Progress is the candidate-visible advisory aggregate: passed over total
// test cases summed across the latest submission per problem.
func (s *CandidateAssessmentService) Progress(ctx context.Context, requester Requester, id string) (*model.Progress, error) {
	ca, assessment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if ca.CandidateID != requester.UserID && !requester.Administers(assessment.CompanyID) && !requester.IsStaff() {
		return nil, common.Errorf("attempt belongs to another candidate: %w", common.ErrForbidden)
	}

	subs, err := s.submissionRepo.ListByCandidateAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	return AggregateProgress(subs), nil
}

// AggregateProgress sums passed/total test cases over the latest submission
// per problem. Earlier submissions for the same problem are superseded.
func AggregateProgress(subs []model.Submission) *model.Progress {
	latest := make(map[string]model.Submission)
	for _, sub := range subs { // ordered oldest first; later entries win
		latest[sub.ProblemID] = sub
	}

	progress := &model.Progress{}
	for _, sub := range latest {
		progress.PassedTestCases += sub.PassedTestCases
		progress.TotalTestCases += sub.TotalTestCases
	}
	if progress.TotalTestCases > 0 {
		progress.Ratio = float64(progress.PassedTestCases) / float64(progress.TotalTestCases)
	}
	return progress
}

// loadFresh loads the attempt and its assessment, expiring the attempt first
// when its deadline has passed. The expiry is a CAS: if another reader or
// the sweep got there first, the re-read picks up the terminal row.
func (s *CandidateAssessmentService) loadFresh(ctx context.Context, id string) (*model.CandidateAssessment, *model.Assessment, error) {
	ca, err := s.attemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	assessment, err := s.assessmentRepo.FindByID(ctx, ca.AssessmentID)
	if err != nil {
		return nil, nil, err
	}

	if !ca.Status.Terminal() {
		if deadline := ca.Deadline(assessment); deadline != nil && !s.now().Before(*deadline) {
			ok, err := s.attemptRepo.TransitionStatus(ctx, id, ca.Status, model.CandidateExpired, s.now())
			if err != nil {
				return nil, nil, err
			}
			if ok {
				ca.Status = model.CandidateExpired
			} else {
				ca, err = s.attemptRepo.FindByID(ctx, id)
				if err != nil {
					return nil, nil, err
				}
			}
		}
	}
	return ca, assessment, nil
}
