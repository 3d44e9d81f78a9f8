package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	Update(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	// ListVisible returns problems owned by any of companyIDs plus public
	// ones. With no companyIDs only public problems are returned.
	ListVisible(ctx context.Context, companyIDs []string, problemType model.ProblemType, difficulty model.ProblemDifficulty, limit, offset int) ([]model.Problem, int, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) Create(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	testCases, hidden, err := marshalTestCases(p)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO problems (id, title, slug, description, problem_type, difficulty,
	            default_time_allowed, solution, test_cases, hidden_test_cases, company_id, is_public)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.ProblemType, p.Difficulty,
			p.DefaultTimeAllowed, p.Solution, testCases, hidden, p.CompanyID, p.IsPublic)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.ProblemType, p.Difficulty,
			p.DefaultTimeAllowed, p.Solution, testCases, hidden, p.CompanyID, p.IsPublic)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	testCases, hidden, err := marshalTestCases(p)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update marshal: %w", err)
	}
	query := `UPDATE problems SET
	            title = $1, slug = $2, description = $3, problem_type = $4, difficulty = $5,
	            default_time_allowed = $6, solution = $7, test_cases = $8, hidden_test_cases = $9,
	            is_public = $10, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $11`

	var res sql.Result
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.ProblemType, p.Difficulty,
			p.DefaultTimeAllowed, p.Solution, testCases, hidden, p.IsPublic, p.ID)
	} else {
		res, err = r.db.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.ProblemType, p.Difficulty,
			p.DefaultTimeAllowed, p.Solution, testCases, hidden, p.IsPublic, p.ID)
	}
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

const problemColumns = `id, title, slug, description, problem_type, difficulty,
	default_time_allowed, solution, test_cases, hidden_test_cases, company_id, is_public,
	created_at, updated_at`

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	p, err := r.scanProblemRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, err
}

func (r *pgProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE slug = $1`
	p, err := r.scanProblemRow(r.db.QueryRowContext(ctx, query, slug))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgProblemRepository.FindBySlug: %w", err)
	}
	return p, err
}

func (r *pgProblemRepository) ListVisible(ctx context.Context, companyIDs []string, problemType model.ProblemType, difficulty model.ProblemDifficulty, limit, offset int) ([]model.Problem, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if len(companyIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("(is_public = TRUE OR company_id = ANY($%d))", argID))
		args = append(args, companyIDs)
		argID++
	} else {
		conditions = append(conditions, "is_public = TRUE")
	}

	if problemType != "" {
		conditions = append(conditions, fmt.Sprintf("problem_type = $%d", argID))
		args = append(args, problemType)
		argID++
	}
	if difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argID))
		args = append(args, difficulty)
		argID++
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM problems` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListVisible count: %w", err)
	}

	query := `SELECT ` + problemColumns + ` FROM problems` + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListVisible query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := r.scanProblemRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListVisible scan: %w", err)
		}
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListVisible rows.Err: %w", err)
	}
	return problems, total, nil
}

func marshalTestCases(p *model.Problem) ([]byte, []byte, error) {
	if p.TestCases == nil {
		p.TestCases = []model.TestCase{}
	}
	if p.HiddenTestCases == nil {
		p.HiddenTestCases = []model.TestCase{}
	}
	testCases, err := json.Marshal(p.TestCases)
	if err != nil {
		return nil, nil, err
	}
	hidden, err := json.Marshal(p.HiddenTestCases)
	if err != nil {
		return nil, nil, err
	}
	return testCases, hidden, nil
}

func (r *pgProblemRepository) scanProblemRow(row *sql.Row) (*model.Problem, error) {
	p := &model.Problem{}
	var testCases, hidden []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.ProblemType, &p.Difficulty,
		&p.DefaultTimeAllowed, &p.Solution, &testCases, &hidden, &p.CompanyID, &p.IsPublic,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return p, unmarshalTestCases(p, testCases, hidden)
}

func (r *pgProblemRepository) scanProblemRows(rows *sql.Rows) (*model.Problem, error) {
	p := &model.Problem{}
	var testCases, hidden []byte
	err := rows.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.ProblemType, &p.Difficulty,
		&p.DefaultTimeAllowed, &p.Solution, &testCases, &hidden, &p.CompanyID, &p.IsPublic,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, unmarshalTestCases(p, testCases, hidden)
}

func unmarshalTestCases(p *model.Problem, testCases, hidden []byte) error {
	if err := json.Unmarshal(testCases, &p.TestCases); err != nil {
		return fmt.Errorf("unmarshal test_cases: %w", err)
	}
	if err := json.Unmarshal(hidden, &p.HiddenTestCases); err != nil {
		return fmt.Errorf("unmarshal hidden_test_cases: %w", err)
	}
	return nil
}
