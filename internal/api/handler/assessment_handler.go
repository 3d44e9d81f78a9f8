package handler

import (
	"encoding/json"
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"

	"github.com/go-chi/chi/v5"
)

type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	accessService     *service.AccessService
}

func NewAssessmentHandler(as *service.AssessmentService, acs *service.AccessService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: as, accessService: acs}
}

func (h *AssessmentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listAssessments)
	r.Post("/", h.createAssessment)
	r.Get("/{assessmentID}", h.getAssessment)
	r.Patch("/{assessmentID}", h.updateAssessment)
	r.Delete("/{assessmentID}", h.deleteAssessment)
	r.Post("/{assessmentID}/assign-candidates", h.assignCandidates)
}

func (h *AssessmentHandler) listAssessments(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	assessments, err := h.assessmentService.ListAssessments(r.Context(), requester)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assessments)
}

func (h *AssessmentHandler) createAssessment(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	assessment, err := h.assessmentService.CreateAssessment(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, assessment)
}

func (h *AssessmentHandler) getAssessment(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	assessment, err := h.assessmentService.GetAssessment(r.Context(), requester, chi.URLParam(r, "assessmentID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *AssessmentHandler) updateAssessment(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.UpdateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	assessment, err := h.assessmentService.UpdateAssessment(r.Context(), requester, chi.URLParam(r, "assessmentID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *AssessmentHandler) deleteAssessment(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	if err := h.assessmentService.DeleteAssessment(r.Context(), requester, chi.URLParam(r, "assessmentID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssessmentHandler) assignCandidates(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req struct {
		CandidateIDs []string `json:"candidate_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	result, err := h.assessmentService.AssignCandidates(r.Context(), requester, chi.URLParam(r, "assessmentID"), req.CandidateIDs)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
