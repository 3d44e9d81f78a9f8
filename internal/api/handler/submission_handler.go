package handler

import (
	"encoding/json"
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	accessService     *service.AccessService
}

func NewSubmissionHandler(ss *service.SubmissionService, as *service.AccessService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, accessService: as}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/{submissionID}/evaluate", h.evaluateSubmission)
}

func (h *SubmissionHandler) evaluateSubmission(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.EvaluateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	sub, err := h.submissionService.EvaluateSubmission(r.Context(), requester, chi.URLParam(r, "submissionID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}
