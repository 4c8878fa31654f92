// internal/handler/project.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type ProjectResponse struct {
	BaseResponse
	Project *model.Project `json:"project"`
}

func (h *ProjectHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	project, err := h.projectService.Create(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ProjectResponse{
		BaseResponse: BaseResponse{Ok: true},
		Project:      project,
	})
}

type ProjectsResponse struct {
	BaseResponse
	Projects []model.Project `json:"projects"`
}

func (h *ProjectHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	projects, err := h.projectService.List(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProjectsResponse{
		BaseResponse: BaseResponse{Ok: true},
		Projects:     projects,
	})
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return 0, false
	}
	return id, true
}

type InviteCompanyRequest struct {
	CompanyID uint64 `json:"company_id"`
}

func (h *ProjectHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req InviteCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.projectService.Invite(r.Context(), caller, projectID, req.CompanyID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

// projectAction wires the accept/decline/leave/delete operations, which
// only need the project ID from the URL.
func (h *ProjectHandler) projectAction(
	action func(r *http.Request, caller uuid.UUID, projectID uint64) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}
		projectID, ok := projectIDParam(w, r)
		if !ok {
			return
		}

		if err := action(r, caller, projectID); err != nil {
			respondWithDomainError(w, r, err)
			return
		}

		respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
	}
}

func (h *ProjectHandler) AcceptInviteHandler() http.HandlerFunc {
	return h.projectAction(func(r *http.Request, caller uuid.UUID, projectID uint64) error {
		return h.projectService.AcceptInvite(r.Context(), caller, projectID)
	})
}

func (h *ProjectHandler) DeclineInviteHandler() http.HandlerFunc {
	return h.projectAction(func(r *http.Request, caller uuid.UUID, projectID uint64) error {
		return h.projectService.DeclineInvite(r.Context(), caller, projectID)
	})
}

func (h *ProjectHandler) LeaveHandler() http.HandlerFunc {
	return h.projectAction(func(r *http.Request, caller uuid.UUID, projectID uint64) error {
		return h.projectService.Leave(r.Context(), caller, projectID)
	})
}

func (h *ProjectHandler) DeleteHandler() http.HandlerFunc {
	return h.projectAction(func(r *http.Request, caller uuid.UUID, projectID uint64) error {
		return h.projectService.Delete(r.Context(), caller, projectID)
	})
}

type KickCompanyRequest struct {
	CompanyID uint64 `json:"company_id"`
}

func (h *ProjectHandler) KickHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var req KickCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.projectService.Kick(r.Context(), caller, projectID, req.CompanyID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

type ProjectChatResponse struct {
	BaseResponse
	Message *model.ProjectChat `json:"message"`
}

func (h *ProjectHandler) SendChatHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	var input service.SendProjectChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()
	input.ProjectID = projectID

	msg, err := h.projectService.SendChat(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ProjectChatResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      msg,
	})
}

type ProjectChatListResponse struct {
	BaseResponse
	Messages []model.ProjectChat `json:"messages"`
}

func (h *ProjectHandler) ListChatHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	messages, err := h.projectService.ListChat(r.Context(), caller, projectID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProjectChatListResponse{
		BaseResponse: BaseResponse{Ok: true},
		Messages:     messages,
	})
}
