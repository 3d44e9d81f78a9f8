package handler

import (
	"encoding/json"
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"

	"github.com/go-chi/chi/v5"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	accessService  *service.AccessService
}

func NewCompanyHandler(cs *service.CompanyService, as *service.AccessService) *CompanyHandler {
	return &CompanyHandler{companyService: cs, accessService: as}
}

func (h *CompanyHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listCompanies)
	r.Post("/", h.createCompany)
	r.Get("/mine", h.myCompanies)
	r.Get("/{companyID}", h.getCompany)
	r.Patch("/{companyID}", h.updateCompany)
	r.Delete("/{companyID}", h.deleteCompany)
	r.Post("/{companyID}/admins", h.addAdmin)
	r.Get("/{companyID}/job-positions", h.listJobPositions)
	r.Post("/{companyID}/job-positions", h.createJobPosition)
}

func (h *CompanyHandler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyService.ListCompanies(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) createCompany(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	company, err := h.companyService.CreateCompany(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) myCompanies(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	companies, err := h.companyService.MyCompanies(r.Context(), requester)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.GetCompany(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) updateCompany(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	company, err := h.companyService.UpdateCompany(r.Context(), requester, chi.URLParam(r, "companyID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	if err := h.companyService.DeleteCompany(r.Context(), requester, chi.URLParam(r, "companyID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) addAdmin(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.companyService.AddAdmin(r.Context(), requester, chi.URLParam(r, "companyID"), req.UserID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) listJobPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.companyService.ListJobPositions(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, positions)
}

func (h *CompanyHandler) createJobPosition(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.JobPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	req.CompanyID = chi.URLParam(r, "companyID")
	position, err := h.companyService.CreateJobPosition(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, position)
}
