package service

import (
	"context"
	"database/sql"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"

	"github.com/google/uuid"
)

type CompanyService struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	db          *sql.DB // For transactions
}

func NewCompanyService(companyRepo repository.CompanyRepository, userRepo repository.UserRepository, db *sql.DB) *CompanyService {
	return &CompanyService{companyRepo: companyRepo, userRepo: userRepo, db: db}
}

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// CreateCompany makes the requester the first admin of the new company, in
// the same transaction as the company row.
func (s *CompanyService) CreateCompany(ctx context.Context, requester Requester, req CreateCompanyRequest) (*model.Company, error) {
	if requester.UserType != model.UserTypeCompany && !requester.IsCompanyAdmin() {
		return nil, common.Errorf("company access required: %w", common.ErrForbidden)
	}
	if req.Name == "" {
		return nil, common.Errorf("company name is required: %w", common.ErrValidation)
	}

	company := &model.Company{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		IsActive:    true,
		AdminIDs:    []string{requester.UserID},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.companyRepo.Create(ctx, tx, company); err != nil {
		return nil, err
	}
	if err := s.companyRepo.AddAdmin(ctx, tx, company.ID, requester.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return company, nil
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (s *CompanyService) UpdateCompany(ctx context.Context, requester Requester, id string, req UpdateCompanyRequest) (*model.Company, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, company.ID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) DeleteCompany(ctx context.Context, requester Requester, id string) error {
	if err := requireCompanyAdmin(requester); err != nil {
		return err
	}
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := requireCompanyOwnership(requester, id); err != nil {
		return err
	}
	return s.companyRepo.Delete(ctx, id)
}

func (s *CompanyService) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	adminIDs, err := s.companyRepo.GetAdminIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	company.AdminIDs = adminIDs
	return company, nil
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.companyRepo.List(ctx)
}

// MyCompanies lists companies the requester administers.
func (s *CompanyService) MyCompanies(ctx context.Context, requester Requester) ([]model.Company, error) {
	companies := []model.Company{}
	for _, id := range requester.CompanyIDs {
		c, err := s.companyRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, nil
}

// AddAdmin grants another user admin rights on a company the requester
// already administers.
func (s *CompanyService) AddAdmin(ctx context.Context, requester Requester, companyID, userID string) error {
	if err := requireCompanyAdmin(requester); err != nil {
		return err
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return err
	}
	if err := requireCompanyOwnership(requester, companyID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.companyRepo.AddAdmin(ctx, nil, companyID, userID)
}

type JobPositionRequest struct {
	CompanyID      string   `json:"company_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SkillsRequired []string `json:"skills_required"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

func (s *CompanyService) CreateJobPosition(ctx context.Context, requester Requester, req JobPositionRequest) (*model.CompanyJobPosition, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	if req.CompanyID == "" || req.Title == "" {
		return nil, common.Errorf("company_id and title are required: %w", common.ErrValidation)
	}
	if _, err := s.companyRepo.FindByID(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, req.CompanyID); err != nil {
		return nil, err
	}

	position := &model.CompanyJobPosition{
		ID:             uuid.NewString(),
		CompanyID:      req.CompanyID,
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		IsActive:       true,
	}
	if req.IsActive != nil {
		position.IsActive = *req.IsActive
	}
	if position.SkillsRequired == nil {
		position.SkillsRequired = []string{}
	}

	if err := s.companyRepo.CreateJobPosition(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *CompanyService) UpdateJobPosition(ctx context.Context, requester Requester, id string, req JobPositionRequest) (*model.CompanyJobPosition, error) {
	if err := requireCompanyAdmin(requester); err != nil {
		return nil, err
	}
	position, err := s.companyRepo.FindJobPositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyOwnership(requester, position.CompanyID); err != nil {
		return nil, err
	}

	if req.Title != "" {
		position.Title = req.Title
	}
	if req.Description != "" {
		position.Description = req.Description
	}
	if req.SkillsRequired != nil {
		position.SkillsRequired = req.SkillsRequired
	}
	if req.IsActive != nil {
		position.IsActive = *req.IsActive
	}

	if err := s.companyRepo.UpdateJobPosition(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *CompanyService) DeleteJobPosition(ctx context.Context, requester Requester, id string) error {
	if err := requireCompanyAdmin(requester); err != nil {
		return err
	}
	position, err := s.companyRepo.FindJobPositionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireCompanyOwnership(requester, position.CompanyID); err != nil {
		return err
	}
	return s.companyRepo.DeleteJobPosition(ctx, id)
}

func (s *CompanyService) ListJobPositions(ctx context.Context, companyID string) ([]model.CompanyJobPosition, error) {
	return s.companyRepo.ListJobPositions(ctx, companyID)
}
