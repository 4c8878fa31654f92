// internal/handler/company.go
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

type CompanyHandler struct {
	companyService *service.CompanyService
}

func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

type CompanyResponse struct {
	BaseResponse
	Company *model.Company `json:"company"`
}

func (h *CompanyHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.CreateCompanyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	company, err := h.companyService.Create(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, CompanyResponse{
		BaseResponse: BaseResponse{Ok: true},
		Company:      company,
	})
}

func (h *CompanyHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	company, err := h.companyService.Get(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CompanyResponse{
		BaseResponse: BaseResponse{Ok: true},
		Company:      company,
	})
}

func (h *CompanyHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.UpdateCompanyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	company, err := h.companyService.UpdateProfile(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CompanyResponse{
		BaseResponse: BaseResponse{Ok: true},
		Company:      company,
	})
}

type CapabilitiesResponse struct {
	BaseResponse
	Capabilities *model.Capability `json:"capabilities"`
}

func (h *CompanyHandler) UpdateCapabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.UpdateCapabilitiesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	capabilities, err := h.companyService.UpdateCapabilities(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, CapabilitiesResponse{
		BaseResponse: BaseResponse{Ok: true},
		Capabilities: capabilities,
	})
}

type MembersResponse struct {
	BaseResponse
	Members []model.CompanyMember `json:"members"`
}

func (h *CompanyHandler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	members, err := h.companyService.ListMembers(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MembersResponse{
		BaseResponse: BaseResponse{Ok: true},
		Members:      members,
	})
}

type GenerateInviteCodeRequest struct {
	MaxUses uint32 `json:"max_uses"`
}

type InviteCodeResponse struct {
	BaseResponse
	InviteCode *model.InviteCode `json:"invite_code"`
}

func (h *CompanyHandler) GenerateInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req GenerateInviteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	code, err := h.companyService.GenerateInviteCode(r.Context(), caller, req.MaxUses)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, InviteCodeResponse{
		BaseResponse: BaseResponse{Ok: true},
		InviteCode:   code,
	})
}

type InviteCodesResponse struct {
	BaseResponse
	InviteCodes []model.InviteCode `json:"invite_codes"`
}

func (h *CompanyHandler) ListInviteCodesHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	codes, err := h.companyService.ListInviteCodes(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, InviteCodesResponse{
		BaseResponse: BaseResponse{Ok: true},
		InviteCodes:  codes,
	})
}

func (h *CompanyHandler) DeleteInviteCodeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.companyService.DeleteInviteCode(r.Context(), caller, chi.URLParam(r, "code")); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

type JoinRequest struct {
	Code string `json:"code"`
}

type MemberResponse struct {
	BaseResponse
	Member *model.CompanyMember `json:"member"`
}

func (h *CompanyHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	member, err := h.companyService.Join(r.Context(), caller, req.Code)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, MemberResponse{
		BaseResponse: BaseResponse{Ok: true},
		Member:       member,
	})
}

type ColleagueRequest struct {
	Identity uuid.UUID `json:"identity"`
}

func (h *CompanyHandler) AddColleagueHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ColleagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	member, err := h.companyService.AddColleague(r.Context(), caller, req.Identity)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, MemberResponse{
		BaseResponse: BaseResponse{Ok: true},
		Member:       member,
	})
}

func (h *CompanyHandler) RemoveColleagueHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	colleague, err := uuid.Parse(chi.URLParam(r, "identity"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid identity")
		return
	}

	if err := h.companyService.RemoveColleague(r.Context(), caller, colleague); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *CompanyHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.companyService.Leave(r.Context(), caller); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

type ChangeRoleRequest struct {
	Identity uuid.UUID  `json:"identity"`
	Role     model.Role `json:"role"`
}

func (h *CompanyHandler) ChangeRoleHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.companyService.ChangeRole(r.Context(), caller, req.Identity, req.Role); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

type TransferOwnershipRequest struct {
	Identity uuid.UUID `json:"identity"`
}

func (h *CompanyHandler) TransferOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.companyService.TransferOwnership(r.Context(), caller, req.Identity); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *CompanyHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.companyService.Delete(r.Context(), caller); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}
