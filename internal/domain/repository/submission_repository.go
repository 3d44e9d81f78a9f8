package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

type SubmissionRepository interface {
	// Create inserts a new row. Submissions are create-only; resubmission
	// creates a fresh row so the audit trail is preserved.
	Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	ListByCandidateAssessment(ctx context.Context, candidateAssessmentID string) ([]model.Submission, error)
	SetEvaluation(ctx context.Context, sub *model.Submission) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, candidate_assessment_id, problem_id, code, language,
	is_correct, passed_test_cases, total_test_cases, execution_time, memory_used,
	evaluator_comments, score, created_at`

func (r *pgSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, candidate_assessment_id, problem_id, code, language,
	            passed_test_cases, total_test_cases, evaluator_comments)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, s.ID, s.CandidateAssessmentID, s.ProblemID, s.Code, s.Language,
			s.PassedTestCases, s.TotalTestCases, s.EvaluatorComments)
	} else {
		_, err = r.db.ExecContext(ctx, query, s.ID, s.CandidateAssessmentID, s.ProblemID, s.Code, s.Language,
			s.PassedTestCases, s.TotalTestCases, s.EvaluatorComments)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.CandidateAssessmentID, &s.ProblemID, &s.Code, &s.Language,
		&s.IsCorrect, &s.PassedTestCases, &s.TotalTestCases, &s.ExecutionTime, &s.MemoryUsed,
		&s.EvaluatorComments, &s.Score, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) ListByCandidateAssessment(ctx context.Context, candidateAssessmentID string) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE candidate_assessment_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, candidateAssessmentID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByCandidateAssessment: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.CandidateAssessmentID, &s.ProblemID, &s.Code, &s.Language,
			&s.IsCorrect, &s.PassedTestCases, &s.TotalTestCases, &s.ExecutionTime, &s.MemoryUsed,
			&s.EvaluatorComments, &s.Score, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListByCandidateAssessment scan: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) SetEvaluation(ctx context.Context, s *model.Submission) error {
	query := `UPDATE submissions SET
	            is_correct = $1, passed_test_cases = $2, total_test_cases = $3,
	            execution_time = $4, memory_used = $5, evaluator_comments = $6, score = $7
	          WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		s.IsCorrect, s.PassedTestCases, s.TotalTestCases,
		s.ExecutionTime, s.MemoryUsed, s.EvaluatorComments, s.Score, s.ID,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.SetEvaluation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
