package handler

import (
	"encoding/json"
	"net/http"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"

	"github.com/go-chi/chi/v5"
)

type CandidateAssessmentHandler struct {
	lifecycleService  *service.CandidateAssessmentService
	submissionService *service.SubmissionService
	accessService     *service.AccessService
}

func NewCandidateAssessmentHandler(
	ls *service.CandidateAssessmentService,
	ss *service.SubmissionService,
	as *service.AccessService,
) *CandidateAssessmentHandler {
	return &CandidateAssessmentHandler{lifecycleService: ls, submissionService: ss, accessService: as}
}

func (h *CandidateAssessmentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listAttempts)
	r.Get("/{attemptID}", h.getAttempt)
	r.Post("/{attemptID}/start", h.startAttempt)
	r.Post("/{attemptID}/submit", h.completeAttempt)
	r.Post("/{attemptID}/breaks", h.recordBreak)
	r.Get("/{attemptID}/progress", h.getProgress)
	r.Post("/{attemptID}/evaluate", h.evaluateAttempt)
	r.Get("/{attemptID}/extension-requests", h.listExtensionRequests)
	r.Post("/{attemptID}/extension-requests", h.requestExtension)
	r.Get("/{attemptID}/submissions", h.listSubmissions)
	r.Post("/{attemptID}/submissions", h.createSubmission)
}

// RegisterExtensionRoutes handles resolution of pending requests; they are
// addressed by their own ID since the reviewer starts from the request.
func (h *CandidateAssessmentHandler) RegisterExtensionRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/{requestID}/grant", h.grantExtension)
	r.Post("/{requestID}/deny", h.denyExtension)
}

func (h *CandidateAssessmentHandler) listAttempts(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	attempts, err := h.lifecycleService.ListAttempts(r.Context(), requester)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}

func (h *CandidateAssessmentHandler) getAttempt(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	attempt, err := h.lifecycleService.GetAttempt(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempt)
}

func (h *CandidateAssessmentHandler) startAttempt(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	attempt, err := h.lifecycleService.Start(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempt)
}

func (h *CandidateAssessmentHandler) completeAttempt(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	attempt, err := h.lifecycleService.Complete(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempt)
}

func (h *CandidateAssessmentHandler) recordBreak(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	attempt, err := h.lifecycleService.RecordBreak(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempt)
}

func (h *CandidateAssessmentHandler) getProgress(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	progress, err := h.lifecycleService.Progress(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, progress)
}

func (h *CandidateAssessmentHandler) evaluateAttempt(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.EvaluateAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	attempt, err := h.lifecycleService.Evaluate(r.Context(), requester, chi.URLParam(r, "attemptID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempt)
}

func (h *CandidateAssessmentHandler) listExtensionRequests(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	requests, err := h.lifecycleService.ListExtensionRequests(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, requests)
}

func (h *CandidateAssessmentHandler) requestExtension(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var input service.ExtensionRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	request, err := h.lifecycleService.RequestExtension(r.Context(), requester, chi.URLParam(r, "attemptID"), input)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, request)
}

func (h *CandidateAssessmentHandler) grantExtension(w http.ResponseWriter, r *http.Request) {
	h.resolveExtension(w, r, true)
}

func (h *CandidateAssessmentHandler) denyExtension(w http.ResponseWriter, r *http.Request) {
	h.resolveExtension(w, r, false)
}

func (h *CandidateAssessmentHandler) resolveExtension(w http.ResponseWriter, r *http.Request, grant bool) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	request, err := h.lifecycleService.ResolveExtension(r.Context(), requester, chi.URLParam(r, "requestID"), grant)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, request)
}

func (h *CandidateAssessmentHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	subs, err := h.submissionService.ListSubmissions(r.Context(), requester, chi.URLParam(r, "attemptID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *CandidateAssessmentHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	sub, err := h.submissionService.CreateSubmission(r.Context(), requester, chi.URLParam(r, "attemptID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sub)
}
