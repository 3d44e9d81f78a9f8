package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"neurohire/internal/api/middleware"
	"neurohire/internal/app/service"
	"neurohire/internal/common"
	"neurohire/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
	accessService  *service.AccessService
}

func NewProblemHandler(ps *service.ProblemService, as *service.AccessService) *ProblemHandler {
	return &ProblemHandler{problemService: ps, accessService: as}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listProblems)
	r.Post("/", h.createProblem)
	r.Get("/{problemID}", h.getProblem)
	r.Patch("/{problemID}", h.updateProblem)
	r.Delete("/{problemID}", h.deleteProblem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	problem, err := h.problemService.CreateProblem(r.Context(), requester, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	problemType := model.ProblemType(r.URL.Query().Get("problem_type"))
	difficulty := model.ProblemDifficulty(r.URL.Query().Get("difficulty"))

	problems, total, err := h.problemService.ListProblems(r.Context(), requester, problemType, difficulty, page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type paginatedProblemsResponse struct {
		Problems []model.Problem `json:"problems"`
		Total    int             `json:"total"`
		Page     int             `json:"page"`
		PageSize int             `json:"page_size"`
	}
	common.RespondWithJSON(w, http.StatusOK, paginatedProblemsResponse{
		Problems: problems,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	problem, err := h.problemService.GetProblem(r.Context(), requester, chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	var req service.UpdateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	problem, err := h.problemService.UpdateProblem(r.Context(), requester, chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	requester, ok := resolveRequester(w, r, h.accessService)
	if !ok {
		return
	}
	if err := h.problemService.DeleteProblem(r.Context(), requester, chi.URLParam(r, "problemID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
