package model

import "time"

// Submission is a candidate's answer to one problem within an attempt.
// Rows are create-only: resubmitting creates a new row, preserving the
// audit trail. IsCorrect is tri-state (nil until evaluated).
type Submission struct {
	ID                    string `json:"id"`
	CandidateAssessmentID string `json:"candidate_assessment_id"`
	ProblemID             string `json:"problem_id"`

	Code     string `json:"code"`
	Language string `json:"language"`

	IsCorrect       *bool `json:"is_correct"`
	PassedTestCases int   `json:"passed_test_cases"`
	TotalTestCases  int   `json:"total_test_cases"`

	ExecutionTime *float64 `json:"execution_time,omitempty"` // seconds
	MemoryUsed    *float64 `json:"memory_used,omitempty"`    // MB

	EvaluatorComments string   `json:"evaluator_comments"`
	Score             *float64 `json:"score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Progress is the candidate-visible advisory aggregate over an attempt's
// submissions. The authoritative score lives on CandidateAssessment and is
// set by an evaluator.
type Progress struct {
	PassedTestCases int     `json:"passed_test_cases"`
	TotalTestCases  int     `json:"total_test_cases"`
	Ratio           float64 `json:"ratio"`
}
