package handler

import (
	"encoding/json"
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"

	"github.com/go-chi/chi/v5"
)

// Job position mutations live under /job-positions/{id}; creation and
// listing are nested under the owning company.
func (h *CompanyHandler) RegisterJobPositionRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Patch("/{positionID}", h.updateJobPosition)
	r.Delete("/{positionID}", h.deleteJobPosition)
}

func (h *CompanyHandler) updateJobPosition(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.JobPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	position, err := h.companyService.UpdateJobPosition(r.Context(), requester, chi.URLParam(r, "positionID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, position)
}

func (h *CompanyHandler) deleteJobPosition(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	if err := h.companyService.DeleteJobPosition(r.Context(), requester, chi.URLParam(r, "positionID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
