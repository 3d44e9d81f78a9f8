package model

import "time"

type CandidateStatus string

const (
	CandidateInvited   CandidateStatus = "invited"
	CandidateStarted   CandidateStatus = "started"
	CandidateCompleted CandidateStatus = "completed"
	CandidateExpired   CandidateStatus = "expired"
)

// Terminal reports whether no further transitions are allowed out of s.
func (s CandidateStatus) Terminal() bool {
	return s == CandidateCompleted || s == CandidateExpired
}

// CanTransition enumerates the attempt lifecycle:
// invited -> started -> completed, and any non-terminal state -> expired.
func (s CandidateStatus) CanTransition(to CandidateStatus) bool {
	switch to {
	case CandidateStarted:
		return s == CandidateInvited
	case CandidateCompleted:
		return s == CandidateStarted
	case CandidateExpired:
		return !s.Terminal()
	}
	return false
}

// CandidateAssessment is one candidate's attempt at one assessment.
// The (assessment_id, candidate_id) pair is unique.
type CandidateAssessment struct {
	ID           string          `json:"id"`
	AssessmentID string          `json:"assessment_id"`
	CandidateID  string          `json:"candidate_id"`
	Status       CandidateStatus `json:"status"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`

	TimeExtended int         `json:"time_extended"` // additional minutes granted
	BreaksTaken  []time.Time `json:"breaks_taken"`

	Score    *float64 `json:"score,omitempty"` // 0-100, set by evaluator
	Feedback string   `json:"feedback"`

	UsedAccommodations map[string]string `json:"used_accommodations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deadline returns the instant the attempt runs out of time: started_at plus
// the assessment time limit and any granted extension, capped by the
// assessment's own expiry when that comes first. Nil when the attempt has not
// started and the assessment carries no expiry.
func (ca *CandidateAssessment) Deadline(a *Assessment) *time.Time {
	var deadline *time.Time
	if ca.StartedAt != nil {
		d := ca.StartedAt.Add(time.Duration(a.TimeLimit+ca.TimeExtended) * time.Minute)
		deadline = &d
	}
	if a.ExpiresAt != nil && (deadline == nil || a.ExpiresAt.Before(*deadline)) {
		deadline = a.ExpiresAt
	}
	return deadline
}

type ExtensionRequestStatus string

const (
	ExtensionPending ExtensionRequestStatus = "pending"
	ExtensionGranted ExtensionRequestStatus = "granted"
	ExtensionDenied  ExtensionRequestStatus = "denied"
)

// ExtensionRequest is a candidate's ask for extra minutes on an attempt,
// resolved by a company admin.
type ExtensionRequest struct {
	ID                    string                 `json:"id"`
	CandidateAssessmentID string                 `json:"candidate_assessment_id"`
	Minutes               int                    `json:"minutes"`
	Reason                string                 `json:"reason"`
	Status                ExtensionRequestStatus `json:"status"`
	ResolvedByID          *string                `json:"resolved_by_id,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	ResolvedAt            *time.Time             `json:"resolved_at,omitempty"`
}
