package model

import "time"

// AssessmentStatus is the company-level administrative marker on the bundle,
// distinct from the per-candidate attempt status.
type AssessmentStatus string

const (
	AssessmentPending    AssessmentStatus = "pending"
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
	AssessmentEvaluated  AssessmentStatus = "evaluated"
)

func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentPending, AssessmentInProgress, AssessmentCompleted, AssessmentEvaluated:
		return true
	}
	return false
}

// Assessment bundles problems with timing and accommodation policy.
// Owned by exactly one company, optionally tied to one of its job positions.
type Assessment struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	JobPositionID *string `json:"job_position_id,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TimeLimit     int     `json:"time_limit"` // minutes

	AllowsExtraTime         bool `json:"allows_extra_time"`
	AllowsBreaks            bool `json:"allows_breaks"`
	AllowsCustomEnvironment bool `json:"allows_custom_environment"`

	Status    AssessmentStatus `json:"status"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`

	ProblemIDs []string `json:"problem_ids,omitempty"` // Insertion order preserved
}
