package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

type AssessmentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, assessment *model.Assessment) error
	Update(ctx context.Context, tx *sql.Tx, assessment *model.Assessment) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Assessment, error)
	// SetProblems replaces the assessment's problem set, preserving the
	// order of problemIDs for presentation.
	SetProblems(ctx context.Context, tx *sql.Tx, assessmentID string, problemIDs []string) error
	GetProblemIDs(ctx context.Context, assessmentID string) ([]string, error)
	HasProblem(ctx context.Context, assessmentID, problemID string) (bool, error)
	ListForCompanies(ctx context.Context, companyIDs []string) ([]model.Assessment, error)
	ListForCandidate(ctx context.Context, candidateID string) ([]model.Assessment, error)
}

type pgAssessmentRepository struct {
	db *sql.DB
}

func NewPgAssessmentRepository(db *sql.DB) AssessmentRepository {
	return &pgAssessmentRepository{db: db}
}

const assessmentColumns = `id, company_id, job_position_id, title, description, time_limit,
	allows_extra_time, allows_breaks, allows_custom_environment, status, expires_at, created_at`

func (r *pgAssessmentRepository) Create(ctx context.Context, tx *sql.Tx, a *model.Assessment) error {
	query := `INSERT INTO assessments (id, company_id, job_position_id, title, description, time_limit,
	            allows_extra_time, allows_breaks, allows_custom_environment, status, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, a.ID, a.CompanyID, a.JobPositionID, a.Title, a.Description, a.TimeLimit,
			a.AllowsExtraTime, a.AllowsBreaks, a.AllowsCustomEnvironment, a.Status, a.ExpiresAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, a.ID, a.CompanyID, a.JobPositionID, a.Title, a.Description, a.TimeLimit,
			a.AllowsExtraTime, a.AllowsBreaks, a.AllowsCustomEnvironment, a.Status, a.ExpiresAt)
	}
	if err != nil {
		return fmt.Errorf("pgAssessmentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAssessmentRepository) Update(ctx context.Context, tx *sql.Tx, a *model.Assessment) error {
	query := `UPDATE assessments SET
	            job_position_id = $1, title = $2, description = $3, time_limit = $4,
	            allows_extra_time = $5, allows_breaks = $6, allows_custom_environment = $7,
	            status = $8, expires_at = $9
	          WHERE id = $10`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, a.JobPositionID, a.Title, a.Description, a.TimeLimit,
			a.AllowsExtraTime, a.AllowsBreaks, a.AllowsCustomEnvironment, a.Status, a.ExpiresAt, a.ID)
	} else {
		res, err = r.db.ExecContext(ctx, query, a.JobPositionID, a.Title, a.Description, a.TimeLimit,
			a.AllowsExtraTime, a.AllowsBreaks, a.AllowsCustomEnvironment, a.Status, a.ExpiresAt, a.ID)
	}
	if err != nil {
		return fmt.Errorf("pgAssessmentRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete cascades to candidate_assessments (and their submissions) via FK rules.
func (r *pgAssessmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgAssessmentRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgAssessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	a := &model.Assessment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CompanyID, &a.JobPositionID, &a.Title, &a.Description, &a.TimeLimit,
		&a.AllowsExtraTime, &a.AllowsBreaks, &a.AllowsCustomEnvironment, &a.Status, &a.ExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAssessmentRepository.FindByID: %w", err)
	}

	problemIDs, err := r.GetProblemIDs(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.ProblemIDs = problemIDs
	return a, nil
}

func (r *pgAssessmentRepository) SetProblems(ctx context.Context, tx *sql.Tx, assessmentID string, problemIDs []string) error {
	del := `DELETE FROM assessment_problems WHERE assessment_id = $1`
	ins := `INSERT INTO assessment_problems (assessment_id, problem_id, sort_order) VALUES ($1, $2, $3)`

	if tx != nil {
		if _, err := tx.ExecContext(ctx, del, assessmentID); err != nil {
			return fmt.Errorf("pgAssessmentRepository.SetProblems delete: %w", err)
		}
		for i, pid := range problemIDs {
			if _, err := tx.ExecContext(ctx, ins, assessmentID, pid, i+1); err != nil {
				return fmt.Errorf("pgAssessmentRepository.SetProblems insert %s: %w", pid, err)
			}
		}
		return nil
	}

	if _, err := r.db.ExecContext(ctx, del, assessmentID); err != nil {
		return fmt.Errorf("pgAssessmentRepository.SetProblems delete: %w", err)
	}
	for i, pid := range problemIDs {
		if _, err := r.db.ExecContext(ctx, ins, assessmentID, pid, i+1); err != nil {
			return fmt.Errorf("pgAssessmentRepository.SetProblems insert %s: %w", pid, err)
		}
	}
	return nil
}

func (r *pgAssessmentRepository) GetProblemIDs(ctx context.Context, assessmentID string) ([]string, error) {
	query := `SELECT problem_id FROM assessment_problems WHERE assessment_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("pgAssessmentRepository.GetProblemIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgAssessmentRepository.GetProblemIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgAssessmentRepository) HasProblem(ctx context.Context, assessmentID, problemID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assessment_problems WHERE assessment_id = $1 AND problem_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, assessmentID, problemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgAssessmentRepository.HasProblem: %w", err)
	}
	return exists, nil
}

func (r *pgAssessmentRepository) ListForCompanies(ctx context.Context, companyIDs []string) ([]model.Assessment, error) {
	if len(companyIDs) == 0 {
		return []model.Assessment{}, nil
	}
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE company_id = ANY($1) ORDER BY created_at DESC`
	return r.list(ctx, query, companyIDs)
}

// ListForCandidate returns assessments the candidate was invited to.
func (r *pgAssessmentRepository) ListForCandidate(ctx context.Context, candidateID string) ([]model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments
	          WHERE id IN (SELECT assessment_id FROM candidate_assessments WHERE candidate_id = $1)
	          ORDER BY created_at DESC`
	return r.list(ctx, query, candidateID)
}

func (r *pgAssessmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgAssessmentRepository.list: %w", err)
	}
	defer rows.Close()

	assessments := []model.Assessment{}
	for rows.Next() {
		var a model.Assessment
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.JobPositionID, &a.Title, &a.Description, &a.TimeLimit,
			&a.AllowsExtraTime, &a.AllowsBreaks, &a.AllowsCustomEnvironment, &a.Status, &a.ExpiresAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgAssessmentRepository.list scan: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}
