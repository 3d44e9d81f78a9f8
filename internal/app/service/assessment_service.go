package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"

	"github.com/google/uuid"
)

type AssessmentService struct {
	assessmentRepo repository.AssessmentRepository
	problemRepo    repository.ProblemRepository
	companyRepo    repository.CompanyRepository
	attemptRepo    repository.CandidateAssessmentRepository
	userRepo       repository.UserRepository
	db             *sql.DB // For transactions
}

func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	problemRepo repository.ProblemRepository,
	companyRepo repository.CompanyRepository,
	attemptRepo repository.CandidateAssessmentRepository,
	userRepo repository.UserRepository,
	db *sql.DB,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		problemRepo:    problemRepo,
		companyRepo:    companyRepo,
		attemptRepo:    attemptRepo,
		userRepo:       userRepo,
		db:             db,
	}
}

type CreateAssessmentRequest struct {
	CompanyID     string   `json:"company_id"`
	JobPositionID *string  `json:"job_position_id,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	TimeLimit     int      `json:"time_limit"`
	ProblemIDs    []string `json:"problem_ids"`

	AllowsExtraTime         *bool `json:"allows_extra_time,omitempty"`
	AllowsBreaks            *bool `json:"allows_breaks,omitempty"`
	AllowsCustomEnvironment *bool `json:"allows_custom_environment,omitempty"`

	ExpiresAt *string `json:"expires_at,omitempty"` // RFC 3339
}

func (s *AssessmentService) CreateAssessment(ctx context.Context, requester Requester, req CreateAssessmentRequest) (*model.Assessment, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	if req.CompanyID == "" || req.Title == "" {
		return nil, common.Errorf("company_id and title are required: %w", common.ErrValidation)
	}
	if req.TimeLimit < 0 {
		return nil, common.Errorf("time_limit must not be negative: %w", common.ErrValidation)
	}
	if _, err := s.companyRepo.FindByID(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, req.CompanyID); err != nil {
		return nil, err
	}

	expiresAt, err := parseOptionalTime(req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if req.JobPositionID != nil {
		position, err := s.companyRepo.FindJobPositionByID(ctx, *req.JobPositionID)
		if err != nil {
			return nil, err
		}
		if position.CompanyID != req.CompanyID {
			return nil, common.Errorf("job position belongs to a different company: %w", common.ErrValidation)
		}
	}
	// Problems must exist and be usable by the creating company: its own, or public.
	for _, pid := range req.ProblemIDs {
		problem, err := s.problemRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if !problem.IsPublic && (problem.CompanyID == nil || *problem.CompanyID != req.CompanyID) {
			return nil, common.Errorf("problem %s is private to another company: %w", pid, common.ErrForbidden)
		}
	}

	assessment := &model.Assessment{
		ID:                      uuid.NewString(),
		CompanyID:               req.CompanyID,
		JobPositionID:           req.JobPositionID,
		Title:                   req.Title,
		Description:             req.Description,
		TimeLimit:               req.TimeLimit,
		AllowsExtraTime:         true,
		AllowsBreaks:            true,
		AllowsCustomEnvironment: true,
		Status:                  model.AssessmentPending,
		ExpiresAt:               expiresAt,
		ProblemIDs:              req.ProblemIDs,
	}
	if req.AllowsExtraTime != nil {
		assessment.AllowsExtraTime = *req.AllowsExtraTime
	}
	if req.AllowsBreaks != nil {
		assessment.AllowsBreaks = *req.AllowsBreaks
	}
	if req.AllowsCustomEnvironment != nil {
		assessment.AllowsCustomEnvironment = *req.AllowsCustomEnvironment
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assessmentRepo.Create(ctx, tx, assessment); err != nil {
		return nil, err
	}
	if len(req.ProblemIDs) > 0 {
		if err := s.assessmentRepo.SetProblems(ctx, tx, assessment.ID, req.ProblemIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return assessment, nil
}

type UpdateAssessmentRequest struct {
	JobPositionID *string   `json:"job_position_id,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	TimeLimit     *int      `json:"time_limit,omitempty"`
	ProblemIDs    *[]string `json:"problem_ids,omitempty"`

	AllowsExtraTime         *bool `json:"allows_extra_time,omitempty"`
	AllowsBreaks            *bool `json:"allows_breaks,omitempty"`
	AllowsCustomEnvironment *bool `json:"allows_custom_environment,omitempty"`

	Status    *model.AssessmentStatus `json:"status,omitempty"`
	ExpiresAt *string                 `json:"expires_at,omitempty"`
}

func (s *AssessmentService) UpdateAssessment(ctx context.Context, requester Requester, id string, req UpdateAssessmentRequest) (*model.Assessment, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, assessment.CompanyID); err != nil {
		return nil, err
	}

	if req.JobPositionID != nil {
		position, err := s.companyRepo.FindJobPositionByID(ctx, *req.JobPositionID)
		if err != nil {
			return nil, err
		}
		if position.CompanyID != assessment.CompanyID {
			return nil, common.Errorf("job position belongs to a different company: %w", common.ErrValidation)
		}
		assessment.JobPositionID = req.JobPositionID
	}
	if req.Title != nil {
		assessment.Title = *req.Title
	}
	if req.Description != nil {
		assessment.Description = *req.Description
	}
	if req.TimeLimit != nil {
		if *req.TimeLimit < 0 {
			return nil, common.Errorf("time_limit must not be negative: %w", common.ErrValidation)
		}
		assessment.TimeLimit = *req.TimeLimit
	}
	if req.AllowsExtraTime != nil {
		assessment.AllowsExtraTime = *req.AllowsExtraTime
	}
	if req.AllowsBreaks != nil {
		assessment.AllowsBreaks = *req.AllowsBreaks
	}
	if req.AllowsCustomEnvironment != nil {
		assessment.AllowsCustomEnvironment = *req.AllowsCustomEnvironment
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, common.Errorf("invalid assessment status %q: %w", *req.Status, common.ErrValidation)
		}
		assessment.Status = *req.Status
	}
	if req.ExpiresAt != nil {
		expiresAt, err := parseOptionalTime(req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		assessment.ExpiresAt = expiresAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assessmentRepo.Update(ctx, tx, assessment); err != nil {
		return nil, err
	}
	if req.ProblemIDs != nil {
		if err := s.assessmentRepo.SetProblems(ctx, tx, assessment.ID, *req.ProblemIDs); err != nil {
			return nil, err
		}
		assessment.ProblemIDs = *req.ProblemIDs
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return assessment, nil
}

func (s *AssessmentService) DeleteAssessment(ctx context.Context, requester Requester, id string) error {
	if err := requireCompanyAdmin(requester); err != nil {
		return err
	}
	assessment, err := s.assessmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireCompanyOwnership(requester, assessment.CompanyID); err != nil {
		return err
	}
	return s.assessmentRepo.Delete(ctx, id)
}

// GetAssessment applies the same visibility rule as listing: company admins
// see their companies' assessments, candidates see the ones they were
// invited to.
func (s *AssessmentService) GetAssessment(ctx context.Context, requester Requester, id string) (*model.Assessment, error) {
	assessment, err := s.assessmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Administers(assessment.CompanyID) || requester.IsStaff() {
		return assessment, nil
	}
	invited, err := s.attemptRepo.ListForCandidate(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}
	for _, ca := range invited {
		if ca.AssessmentID == id {
			return assessment, nil
		}
	}
	return nil, common.Errorf("assessment is not assigned to the requester: %w", common.ErrForbidden)
}

// ListAssessments: admins get everything their companies own, regardless of
// per-candidate assignment; everyone else gets only what they were invited to.
func (s *AssessmentService) ListAssessments(ctx context.Context, requester Requester) ([]model.Assessment, error) {
	if len(requester.CompanyIDs) > 0 {
		return s.assessmentRepo.ListForCompanies(ctx, requester.CompanyIDs)
	}
	return s.assessmentRepo.ListForCandidate(ctx, requester.UserID)
}

type AssignCandidatesResult struct {
	Assigned int `json:"assigned"`
	Existing int `json:"existing"`
}

// AssignCandidates idempotently ensures one attempt per (assessment,
// candidate). Existing attempts are left untouched, so repeated calls with
// overlapping lists never reset an in-progress attempt.
func (s *AssessmentService) AssignCandidates(ctx context.Context, requester Requester, assessmentID string, candidateIDs []string) (*AssignCandidatesResult, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	if len(candidateIDs) == 0 {
		return nil, common.Errorf("candidate_ids must not be empty: %w", common.ErrValidation)
	}
	assessment, err := s.assessmentRepo.FindByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, assessment.CompanyID); err != nil {
		return nil, err
	}
	ok, err := s.userRepo.ExistsAll(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.Errorf("one or more candidate ids do not exist: %w", common.ErrValidation)
	}

	result := &AssignCandidatesResult{}
	for _, candidateID := range candidateIDs {
		created, err := s.attemptRepo.GetOrCreate(ctx, assessmentID, candidateID)
		if err != nil {
			return nil, err
		}
		if created {
			result.Assigned++
		} else {
			result.Existing++
		}
	}
	log.Printf("Assessment %s: %d candidates assigned, %d already present", assessmentID, result.Assigned, result.Existing)
	return result, nil
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, common.Errorf("invalid timestamp %q: %w", *s, common.ErrValidation)
	}
	return &t, nil
}
