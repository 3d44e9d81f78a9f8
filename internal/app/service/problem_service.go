package service

import (
	"context"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type CreateProblemRequest struct {
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	ProblemType        model.ProblemType       `json:"problem_type"`
	Difficulty         model.ProblemDifficulty `json:"difficulty"`
	DefaultTimeAllowed int                     `json:"default_time_allowed"`
	Solution           *string                 `json:"solution,omitempty"`
	TestCases          []model.TestCase        `json:"test_cases"`
	HiddenTestCases    []model.TestCase        `json:"hidden_test_cases"`
	CompanyID          *string                 `json:"company_id,omitempty"` // nil means intended public
	IsPublic           bool                    `json:"is_public"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, requester Requester, req CreateProblemRequest) (*model.Problem, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if !req.ProblemType.Valid() {
		return nil, common.Errorf("invalid problem_type %q: %w", req.ProblemType, common.ErrValidation)
	}
	if !req.Difficulty.Valid() {
		return nil, common.Errorf("invalid difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	if req.CompanyID != nil {
		if err := requireCompanyOwnership(requester, *req.CompanyID); err != nil {
			return nil, err
		}
	}

	problem := &model.Problem{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Slug:               slug.Make(req.Title),
		Description:        req.Description,
		ProblemType:        req.ProblemType,
		Difficulty:         req.Difficulty,
		DefaultTimeAllowed: req.DefaultTimeAllowed,
		Solution:           req.Solution,
		TestCases:          req.TestCases,
		HiddenTestCases:    req.HiddenTestCases,
		CompanyID:          req.CompanyID,
		IsPublic:           req.IsPublic,
	}
	if problem.DefaultTimeAllowed == 0 {
		problem.DefaultTimeAllowed = 60
	}

	if err := s.problemRepo.Create(ctx, nil, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

type UpdateProblemRequest struct {
	Title              *string                  `json:"title,omitempty"`
	Description        *string                  `json:"description,omitempty"`
	ProblemType        *model.ProblemType       `json:"problem_type,omitempty"`
	Difficulty         *model.ProblemDifficulty `json:"difficulty,omitempty"`
	DefaultTimeAllowed *int                     `json:"default_time_allowed,omitempty"`
	Solution           *string                  `json:"solution,omitempty"`
	TestCases          *[]model.TestCase        `json:"test_cases,omitempty"`
	HiddenTestCases    *[]model.TestCase        `json:"hidden_test_cases,omitempty"`
	IsPublic           *bool                    `json:"is_public,omitempty"`
}

func (s *ProblemService) UpdateProblem(ctx context.Context, requester Requester, id string, req UpdateProblemRequest) (*model.Problem, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProblemOwnership(requester, problem); err != nil {
		return nil, err
	}

	if req.Title != nil {
		problem.Title = *req.Title
		problem.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		problem.Description = *req.Description
	}
	if req.ProblemType != nil {
		if !req.ProblemType.Valid() {
			return nil, common.Errorf("invalid problem_type %q: %w", *req.ProblemType, common.ErrValidation)
		}
		problem.ProblemType = *req.ProblemType
	}
	if req.Difficulty != nil {
		if !req.Difficulty.Valid() {
			return nil, common.Errorf("invalid difficulty %q: %w", *req.Difficulty, common.ErrValidation)
		}
		problem.Difficulty = *req.Difficulty
	}
	if req.DefaultTimeAllowed != nil {
		problem.DefaultTimeAllowed = *req.DefaultTimeAllowed
	}
	if req.Solution != nil {
		problem.Solution = req.Solution
	}
	if req.TestCases != nil {
		problem.TestCases = *req.TestCases
	}
	if req.HiddenTestCases != nil {
		problem.HiddenTestCases = *req.HiddenTestCases
	}
	if req.IsPublic != nil {
		problem.IsPublic = *req.IsPublic
	}

	if err := s.problemRepo.Update(ctx, nil, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) DeleteProblem(ctx context.Context, requester Requester, id string) error {
	if err := requireCompanyAdmin(requester); err != nil {
		return err
	}
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireProblemOwnership(requester, problem); err != nil {
		return err
	}
	return s.problemRepo.Delete(ctx, id)
}

// ListProblems returns the visibility union: problems of administered
// companies plus public problems; just public ones for everyone else.
// Listings never carry solutions or hidden test cases.
func (s *ProblemService) ListProblems(ctx context.Context, requester Requester, problemType model.ProblemType, difficulty model.ProblemDifficulty, page, pageSize int) ([]model.Problem, int, error) {
	if problemType != "" && !problemType.Valid() {
		return nil, 0, common.Errorf("invalid problem_type %q: %w", problemType, common.ErrValidation)
	}
	if difficulty != "" && !difficulty.Valid() {
		return nil, 0, common.Errorf("invalid difficulty %q: %w", difficulty, common.ErrValidation)
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	problems, total, err := s.problemRepo.ListVisible(ctx, requester.CompanyIDs, problemType, difficulty, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range problems {
		problems[i] = problems[i].CandidateView()
	}
	return problems, total, nil
}

// GetProblem returns the detail view. Private problems are only readable by
// admins of the owning company (403 otherwise). The privileged view, with
// hidden test cases and the reference solution, goes to admins of the owning
// company, and to staff for public problems.
func (s *ProblemService) GetProblem(ctx context.Context, requester Requester, id string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	privileged := requester.IsStaff() ||
		(problem.CompanyID != nil && requester.Administers(*problem.CompanyID))

	if !problem.IsPublic && !privileged {
		return nil, common.Errorf("problem is private to its owning company: %w", common.ErrForbidden)
	}
	if !privileged {
		stripped := problem.CandidateView()
		return &stripped, nil
	}
	return problem, nil
}

func (s *ProblemService) requireProblemOwnership(requester Requester, problem *model.Problem) error {
	if requester.IsStaff() {
		return nil
	}
	if problem.CompanyID == nil {
		// Ownerless problems are platform-level; only staff mutate them.
		return common.Errorf("only staff may modify public-bank problems: %w", common.ErrForbidden)
	}
	return requireCompanyOwnership(requester, *problem.CompanyID)
}
