package service

import (
	"context"
	"slices"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"
	"neurohire/internal/domain/repository"
)

// Requester is the caller's identity as explicit input to every
// authorization and visibility predicate. Nothing in the service layer reads
// ambient request state.
type Requester struct {
	UserID     string
	UserType   model.UserType
	CompanyIDs []string // companies the requester administers
}

// IsStaff reports the platform-wide admin role.
func (r Requester) IsStaff() bool {
	return r.UserType == model.UserTypeAdmin
}

func (r Requester) Administers(companyID string) bool {
	return slices.Contains(r.CompanyIDs, companyID)
}

// IsCompanyAdmin is the coarse write check: a company-type user, or anyone
// administering at least one company.
func (r Requester) IsCompanyAdmin() bool {
	return r.UserType == model.UserTypeCompany || len(r.CompanyIDs) > 0
}

// AccessService resolves a token identity into a Requester.
type AccessService struct {
	companyRepo repository.CompanyRepository
}

func NewAccessService(companyRepo repository.CompanyRepository) *AccessService {
	return &AccessService{companyRepo: companyRepo}
}

func (s *AccessService) Resolve(ctx context.Context, userID string, userType model.UserType) (Requester, error) {
	companyIDs, err := s.companyRepo.GetAdministeredCompanyIDs(ctx, userID)
	if err != nil {
		return Requester{}, common.Errorf("failed to resolve administered companies: %w", err)
	}
	return Requester{UserID: userID, UserType: userType, CompanyIDs: companyIDs}, nil
}

// requireCompanyAdmin enforces the coarse check. The failure is 403: the
// caller is authenticated, just not permitted. Staff pass every check.
func requireCompanyAdmin(r Requester) error {
	if r.IsStaff() {
		return nil
	}
	if !r.IsCompanyAdmin() {
		return common.Errorf("company admin access required: %w", common.ErrForbidden)
	}
	return nil
}

// requireCompanyOwnership enforces the fine-grained object check. Failing it
// yields 403, not 404: the object's existence is not concealed from
// role-eligible callers.
func requireCompanyOwnership(r Requester, companyID string) error {
	if r.IsStaff() {
		return nil
	}
	if !r.Administers(companyID) {
		return common.Errorf("requester does not administer the owning company: %w", common.ErrForbidden)
	}
	return nil
}
