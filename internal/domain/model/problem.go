package model

import "time"

type ProblemType string
type ProblemDifficulty string

const (
	ProblemTypeCoding       ProblemType = "coding"
	ProblemTypeSystemDesign ProblemType = "system_design"
	ProblemTypeDebugging    ProblemType = "debugging"
	ProblemTypeRefactoring  ProblemType = "refactoring"

	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"
)

func (t ProblemType) Valid() bool {
	switch t {
	case ProblemTypeCoding, ProblemTypeSystemDesign, ProblemTypeDebugging, ProblemTypeRefactoring:
		return true
	}
	return false
}

func (d ProblemDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TestCase is one grading input/output pair. Ordered lists of these are
// stored as jsonb on the problem row.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// Problem is one technical problem in the bank. CompanyID nil means the
// problem is intended to be public; IsPublic controls actual visibility.
// HiddenTestCases and Solution must never reach the candidate-facing read
// path; CandidateView strips them.
type Problem struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Slug               string            `json:"slug"`
	Description        string            `json:"description"`
	ProblemType        ProblemType       `json:"problem_type"`
	Difficulty         ProblemDifficulty `json:"difficulty"`
	DefaultTimeAllowed int               `json:"default_time_allowed"` // minutes
	Solution           *string           `json:"solution,omitempty"`   // Privileged view only
	TestCases          []TestCase        `json:"test_cases"`
	HiddenTestCases    []TestCase        `json:"hidden_test_cases,omitempty"` // Privileged view only
	CompanyID          *string           `json:"company_id,omitempty"`
	IsPublic           bool              `json:"is_public"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// CandidateView returns a copy safe to serve to candidates: the reference
// solution and hidden test cases are removed.
func (p Problem) CandidateView() Problem {
	p.Solution = nil
	p.HiddenTestCases = nil
	return p
}
