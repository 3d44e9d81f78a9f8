package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
)

type CompanyRepository interface {
	Create(ctx context.Context, tx *sql.Tx, company *model.Company) error
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)

	AddAdmin(ctx context.Context, tx *sql.Tx, companyID, userID string) error
	GetAdminIDs(ctx context.Context, companyID string) ([]string, error)
	GetAdministeredCompanyIDs(ctx context.Context, userID string) ([]string, error)

	CreateJobPosition(ctx context.Context, position *model.CompanyJobPosition) error
	UpdateJobPosition(ctx context.Context, position *model.CompanyJobPosition) error
	DeleteJobPosition(ctx context.Context, id string) error
	FindJobPositionByID(ctx context.Context, id string) (*model.CompanyJobPosition, error)
	ListJobPositions(ctx context.Context, companyID string) ([]model.CompanyJobPosition, error)
}

type pgCompanyRepository struct {
	db *sql.DB
}

func NewPgCompanyRepository(db *sql.DB) CompanyRepository {
	return &pgCompanyRepository{db: db}
}

func (r *pgCompanyRepository) Create(ctx context.Context, tx *sql.Tx, c *model.Company) error {
	query := `INSERT INTO companies (id, name, description, website, is_active)
	          VALUES ($1, $2, $3, $4, $5)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Website, c.IsActive)
	} else {
		_, err = r.db.ExecContext(ctx, query, c.ID, c.Name, c.Description, c.Website, c.IsActive)
	}
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCompanyRepository) Update(ctx context.Context, c *model.Company) error {
	query := `UPDATE companies SET name = $1, description = $2, website = $3, is_active = $4,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.Website, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete cascades to problems, assessments and job positions via FK rules.
func (r *pgCompanyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCompanyRepository) FindByID(ctx context.Context, id string) (*model.Company, error) {
	query := `SELECT id, name, description, website, is_active, created_at, updated_at
	          FROM companies WHERE id = $1`
	c := &model.Company{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Website, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCompanyRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgCompanyRepository) List(ctx context.Context) ([]model.Company, error) {
	query := `SELECT id, name, description, website, is_active, created_at, updated_at
	          FROM companies ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCompanyRepository.List: %w", err)
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Website, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgCompanyRepository.List scan: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *pgCompanyRepository) AddAdmin(ctx context.Context, tx *sql.Tx, companyID, userID string) error {
	query := `INSERT INTO company_admins (company_id, user_id) VALUES ($1, $2)
	          ON CONFLICT (company_id, user_id) DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, companyID, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, companyID, userID)
	}
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.AddAdmin: %w", err)
	}
	return nil
}

func (r *pgCompanyRepository) GetAdminIDs(ctx context.Context, companyID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM company_admins WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("pgCompanyRepository.GetAdminIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgCompanyRepository.GetAdminIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetAdministeredCompanyIDs resolves the set of companies the user
// administers. Every authorization predicate takes this as explicit input.
func (r *pgCompanyRepository) GetAdministeredCompanyIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT company_id FROM company_admins WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgCompanyRepository.GetAdministeredCompanyIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgCompanyRepository.GetAdministeredCompanyIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgCompanyRepository) CreateJobPosition(ctx context.Context, p *model.CompanyJobPosition) error {
	skills, err := json.Marshal(p.SkillsRequired)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.CreateJobPosition marshal: %w", err)
	}
	query := `INSERT INTO company_job_positions (id, company_id, title, description, skills_required, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.CompanyID, p.Title, p.Description, skills, p.IsActive)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.CreateJobPosition: %w", err)
	}
	return nil
}

func (r *pgCompanyRepository) UpdateJobPosition(ctx context.Context, p *model.CompanyJobPosition) error {
	skills, err := json.Marshal(p.SkillsRequired)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.UpdateJobPosition marshal: %w", err)
	}
	query := `UPDATE company_job_positions SET title = $1, description = $2, skills_required = $3, is_active = $4
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, p.Title, p.Description, skills, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.UpdateJobPosition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCompanyRepository) DeleteJobPosition(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM company_job_positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCompanyRepository.DeleteJobPosition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCompanyRepository) FindJobPositionByID(ctx context.Context, id string) (*model.CompanyJobPosition, error) {
	query := `SELECT id, company_id, title, description, skills_required, is_active, created_at
	          FROM company_job_positions WHERE id = $1`
	p := &model.CompanyJobPosition{}
	var skills []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.Title, &p.Description, &skills, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCompanyRepository.FindJobPositionByID: %w", err)
	}
	if err := json.Unmarshal(skills, &p.SkillsRequired); err != nil {
		return nil, fmt.Errorf("pgCompanyRepository.FindJobPositionByID unmarshal: %w", err)
	}
	return p, nil
}

func (r *pgCompanyRepository) ListJobPositions(ctx context.Context, companyID string) ([]model.CompanyJobPosition, error) {
	query := `SELECT id, company_id, title, description, skills_required, is_active, created_at
	          FROM company_job_positions`
	args := []interface{}{}
	if companyID != "" {
		query += ` WHERE company_id = $1`
		args = append(args, companyID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCompanyRepository.ListJobPositions: %w", err)
	}
	defer rows.Close()

	positions := []model.CompanyJobPosition{}
	for rows.Next() {
		var p model.CompanyJobPosition
		var skills []byte
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Title, &p.Description, &skills, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgCompanyRepository.ListJobPositions scan: %w", err)
		}
		if err := json.Unmarshal(skills, &p.SkillsRequired); err != nil {
			return nil, fmt.Errorf("pgCompanyRepository.ListJobPositions unmarshal: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
