package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

type CandidateAssessmentRepository interface {
	// GetOrCreate idempotently ensures one row per (assessment, candidate).
	// Returns whether a new row was created. Atomic under concurrent
	// identical requests (relies on the pair's unique constraint).
	GetOrCreate(ctx context.Context, assessmentID, candidateID string) (created bool, err error)
	FindByID(ctx context.Context, id string) (*model.CandidateAssessment, error)
	ListForCompanies(ctx context.Context, companyIDs []string) ([]model.CandidateAssessment, error)
	ListForCandidate(ctx context.Context, candidateID string) ([]model.CandidateAssessment, error)

	// TransitionStatus is a compare-and-swap: the update applies only when
	// the row's current status equals from. Returns false when the row
	// exists but the status did not match.
	TransitionStatus(ctx context.Context, id string, from, to model.CandidateStatus, now time.Time) (bool, error)
	AppendBreak(ctx context.Context, id string, at time.Time) (bool, error)
	SetUsedAccommodation(ctx context.Context, id, name, value string) error
	SetEvaluation(ctx context.Context, id string, score float64, feedback string) error

	// ExpireOverdue moves every non-terminal attempt whose deadline has
	// passed into expired. Idempotent; never touches terminal rows.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	CreateExtensionRequest(ctx context.Context, req *model.ExtensionRequest) error
	FindExtensionRequestByID(ctx context.Context, id string) (*model.ExtensionRequest, error)
	ListExtensionRequests(ctx context.Context, candidateAssessmentID string) ([]model.ExtensionRequest, error)
	// ResolveExtensionRequest flips a pending request to granted/denied and,
	// when granting, adds the minutes to the attempt in the same transaction.
	ResolveExtensionRequest(ctx context.Context, requestID string, status model.ExtensionRequestStatus, resolverID string, now time.Time) (bool, error)
}

type pgCandidateAssessmentRepository struct {
	db *sql.DB
}

func NewPgCandidateAssessmentRepository(db *sql.DB) CandidateAssessmentRepository {
	return &pgCandidateAssessmentRepository{db: db}
}

const candidateAssessmentColumns = `id, assessment_id, candidate_id, status, started_at, completed_at,
	time_extended, breaks_taken, score, feedback, used_accommodations, created_at, updated_at`

func (r *pgCandidateAssessmentRepository) GetOrCreate(ctx context.Context, assessmentID, candidateID string) (bool, error) {
	query := `INSERT INTO candidate_assessments (id, assessment_id, candidate_id, status, breaks_taken, used_accommodations)
	          VALUES (gen_random_uuid(), $1, $2, $3, '[]', '{}')
	          ON CONFLICT (assessment_id, candidate_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, assessmentID, candidateID, model.CandidateInvited)
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.GetOrCreate: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *pgCandidateAssessmentRepository) FindByID(ctx context.Context, id string) (*model.CandidateAssessment, error) {
	query := `SELECT ` + candidateAssessmentColumns + ` FROM candidate_assessments WHERE id = $1`
	ca := &model.CandidateAssessment{}
	var breaks, used []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ca.ID, &ca.AssessmentID, &ca.CandidateID, &ca.Status, &ca.StartedAt, &ca.CompletedAt,
		&ca.TimeExtended, &breaks, &ca.Score, &ca.Feedback, &used, &ca.CreatedAt, &ca.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCandidateAssessmentRepository.FindByID: %w", err)
	}
	if err := unmarshalAttempt(ca, breaks, used); err != nil {
		return nil, fmt.Errorf("pgCandidateAssessmentRepository.FindByID: %w", err)
	}
	return ca, nil
}

func (r *pgCandidateAssessmentRepository) ListForCompanies(ctx context.Context, companyIDs []string) ([]model.CandidateAssessment, error) {
	if len(companyIDs) == 0 {
		return []model.CandidateAssessment{}, nil
	}
	query := `SELECT ca.id, ca.assessment_id, ca.candidate_id, ca.status, ca.started_at, ca.completed_at,
	            ca.time_extended, ca.breaks_taken, ca.score, ca.feedback, ca.used_accommodations,
	            ca.created_at, ca.updated_at
	          FROM candidate_assessments ca
	          JOIN assessments a ON ca.assessment_id = a.id
	          WHERE a.company_id = ANY($1)
	          ORDER BY ca.created_at DESC`
	return r.list(ctx, query, companyIDs)
}

func (r *pgCandidateAssessmentRepository) ListForCandidate(ctx context.Context, candidateID string) ([]model.CandidateAssessment, error) {
	query := `SELECT ` + candidateAssessmentColumns + ` FROM candidate_assessments
	          WHERE candidate_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, candidateID)
}

func (r *pgCandidateAssessmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.CandidateAssessment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCandidateAssessmentRepository.list: %w", err)
	}
	defer rows.Close()

	attempts := []model.CandidateAssessment{}
	for rows.Next() {
		var ca model.CandidateAssessment
		var breaks, used []byte
		if err := rows.Scan(
			&ca.ID, &ca.AssessmentID, &ca.CandidateID, &ca.Status, &ca.StartedAt, &ca.CompletedAt,
			&ca.TimeExtended, &breaks, &ca.Score, &ca.Feedback, &used, &ca.CreatedAt, &ca.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgCandidateAssessmentRepository.list scan: %w", err)
		}
		if err := unmarshalAttempt(&ca, breaks, used); err != nil {
			return nil, fmt.Errorf("pgCandidateAssessmentRepository.list: %w", err)
		}
		attempts = append(attempts, ca)
	}
	return attempts, rows.Err()
}

func (r *pgCandidateAssessmentRepository) TransitionStatus(ctx context.Context, id string, from, to model.CandidateStatus, now time.Time) (bool, error) {
	query := `UPDATE candidate_assessments SET status = $1, updated_at = $2`
	args := []interface{}{to, now}
	argID := 3
	switch to {
	case model.CandidateStarted:
		query += fmt.Sprintf(", started_at = $%d", argID)
		args = append(args, now)
		argID++
	case model.CandidateCompleted:
		query += fmt.Sprintf(", completed_at = $%d", argID)
		args = append(args, now)
		argID++
	}
	query += fmt.Sprintf(" WHERE id = $%d AND status = $%d", argID, argID+1)
	args = append(args, id, from)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.TransitionStatus: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// AppendBreak records a break timestamp; only applies while status is started.
func (r *pgCandidateAssessmentRepository) AppendBreak(ctx context.Context, id string, at time.Time) (bool, error) {
	ts, err := json.Marshal([]time.Time{at})
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.AppendBreak marshal: %w", err)
	}
	query := `UPDATE candidate_assessments
	          SET breaks_taken = breaks_taken || $1::jsonb, updated_at = $2
	          WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, ts, at, id, model.CandidateStarted)
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.AppendBreak: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *pgCandidateAssessmentRepository) SetUsedAccommodation(ctx context.Context, id, name, value string) error {
	query := `UPDATE candidate_assessments
	          SET used_accommodations = jsonb_set(used_accommodations, ARRAY[$1], to_jsonb($2::text)),
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, name, value, id)
	if err != nil {
		return fmt.Errorf("pgCandidateAssessmentRepository.SetUsedAccommodation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCandidateAssessmentRepository) SetEvaluation(ctx context.Context, id string, score float64, feedback string) error {
	query := `UPDATE candidate_assessments SET score = $1, feedback = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, score, feedback, id)
	if err != nil {
		return fmt.Errorf("pgCandidateAssessmentRepository.SetEvaluation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCandidateAssessmentRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE candidate_assessments ca
	          SET status = $1, updated_at = $2
	          FROM assessments a
	          WHERE ca.assessment_id = a.id
	            AND ca.status IN ($3, $4)
	            AND (
	              (ca.started_at IS NOT NULL
	                AND ca.started_at + make_interval(mins => a.time_limit + ca.time_extended) <= $2)
	              OR (a.expires_at IS NOT NULL AND a.expires_at <= $2)
	            )`
	res, err := r.db.ExecContext(ctx, query, model.CandidateExpired, now, model.CandidateInvited, model.CandidateStarted)
	if err != nil {
		return 0, fmt.Errorf("pgCandidateAssessmentRepository.ExpireOverdue: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *pgCandidateAssessmentRepository) CreateExtensionRequest(ctx context.Context, req *model.ExtensionRequest) error {
	query := `INSERT INTO extension_requests (id, candidate_assessment_id, minutes, reason, status)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, req.ID, req.CandidateAssessmentID, req.Minutes, req.Reason, req.Status)
	if err != nil {
		return fmt.Errorf("pgCandidateAssessmentRepository.CreateExtensionRequest: %w", err)
	}
	return nil
}

func (r *pgCandidateAssessmentRepository) FindExtensionRequestByID(ctx context.Context, id string) (*model.ExtensionRequest, error) {
	query := `SELECT id, candidate_assessment_id, minutes, reason, status, resolved_by, created_at, resolved_at
	          FROM extension_requests WHERE id = $1`
	req := &model.ExtensionRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.CandidateAssessmentID, &req.Minutes, &req.Reason, &req.Status,
		&req.ResolvedByID, &req.CreatedAt, &req.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCandidateAssessmentRepository.FindExtensionRequestByID: %w", err)
	}
	return req, nil
}

func (r *pgCandidateAssessmentRepository) ListExtensionRequests(ctx context.Context, candidateAssessmentID string) ([]model.ExtensionRequest, error) {
	query := `SELECT id, candidate_assessment_id, minutes, reason, status, resolved_by, created_at, resolved_at
	          FROM extension_requests WHERE candidate_assessment_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, candidateAssessmentID)
	if err != nil {
		return nil, fmt.Errorf("pgCandidateAssessmentRepository.ListExtensionRequests: %w", err)
	}
	defer rows.Close()

	requests := []model.ExtensionRequest{}
	for rows.Next() {
		var req model.ExtensionRequest
		if err := rows.Scan(
			&req.ID, &req.CandidateAssessmentID, &req.Minutes, &req.Reason, &req.Status,
			&req.ResolvedByID, &req.CreatedAt, &req.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("pgCandidateAssessmentRepository.ListExtensionRequests scan: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *pgCandidateAssessmentRepository) ResolveExtensionRequest(ctx context.Context, requestID string, status model.ExtensionRequestStatus, resolverID string, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.ResolveExtensionRequest begin: %w", err)
	}
	defer tx.Rollback()

	resolve := `UPDATE extension_requests
	            SET status = $1, resolved_by = $2, resolved_at = $3
	            WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, resolve, status, resolverID, now, requestID, model.ExtensionPending)
	if err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.ResolveExtensionRequest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil // already resolved, or absent
	}

	if status == model.ExtensionGranted {
		grant := `UPDATE candidate_assessments
		          SET time_extended = time_extended + (SELECT minutes FROM extension_requests WHERE id = $1),
		              updated_at = $2
		          WHERE id = (SELECT candidate_assessment_id FROM extension_requests WHERE id = $1)`
		if _, err := tx.ExecContext(ctx, grant, requestID, now); err != nil {
			return false, fmt.Errorf("pgCandidateAssessmentRepository.ResolveExtensionRequest grant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("pgCandidateAssessmentRepository.ResolveExtensionRequest commit: %w", err)
	}
	return true, nil
}

func unmarshalAttempt(ca *model.CandidateAssessment, breaks, used []byte) error {
	if err := json.Unmarshal(breaks, &ca.BreaksTaken); err != nil {
		return fmt.Errorf("unmarshal breaks_taken: %w", err)
	}
	if err := json.Unmarshal(used, &ca.UsedAccommodations); err != nil {
		return fmt.Errorf("unmarshal used_accommodations: %w", err)
	}
	return nil
}
