package service

import (
	"context"
	"testing"

	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRequester(t *testing.T) {
	repo := newFakeCompanyRepo()
	require.NoError(t, repo.Create(context.Background(), nil, &model.Company{ID: "acme", Name: "Acme"}))
	require.NoError(t, repo.AddAdmin(context.Background(), nil, "acme", "user-1"))

	svc := NewAccessService(repo)
	requester, err := svc.Resolve(context.Background(), "user-1", model.UserTypeCompany)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, requester.CompanyIDs)
	assert.True(t, requester.IsCompanyAdmin())
	assert.True(t, requester.Administers("acme"))
	assert.False(t, requester.Administers("globex"))
}

func TestRequesterPredicates(t *testing.T) {
	candidate := Requester{UserID: "u1", UserType: model.UserTypeCandidate}
	assert.False(t, candidate.IsCompanyAdmin())
	assert.False(t, candidate.IsStaff())

	// A candidate who was made a company admin gains the coarse role.
	promoted := Requester{UserID: "u2", UserType: model.UserTypeCandidate, CompanyIDs: []string{"acme"}}
	assert.True(t, promoted.IsCompanyAdmin())

	staff := Requester{UserID: "u3", UserType: model.UserTypeAdmin}
	assert.True(t, staff.IsStaff())
	assert.NoError(t, requireCompanyAdmin(staff))
	assert.NoError(t, requireCompanyOwnership(staff, "anything"))

	companyUser := Requester{UserID: "u4", UserType: model.UserTypeCompany}
	assert.True(t, companyUser.IsCompanyAdmin())
	assert.ErrorIs(t, requireCompanyOwnership(companyUser, "acme"), common.ErrForbidden)
}
