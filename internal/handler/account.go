// internal/handler/account.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type AccountResponse struct {
	BaseResponse
	Account *model.UserAccount `json:"account"`
}

func (h *AccountHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	account, err := h.accountService.Me(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AccountResponse{
		BaseResponse: BaseResponse{Ok: true},
		Account:      account,
	})
}

func (h *AccountHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	account, err := h.accountService.UpdateProfile(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AccountResponse{
		BaseResponse: BaseResponse{Ok: true},
		Account:      account,
	})
}

type MembershipsResponse struct {
	BaseResponse
	Memberships []model.CompanyMember `json:"memberships"`
}

func (h *AccountHandler) MembershipsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	memberships, err := h.accountService.Memberships(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MembershipsResponse{
		BaseResponse: BaseResponse{Ok: true},
		Memberships:  memberships,
	})
}

// SetActiveCompanyHandler moves the caller's company cursor; the target
// company ID rides in the URL.
func (h *AccountHandler) SetActiveCompanyHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	companyID, err := strconv.ParseUint(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	if err := h.accountService.SetActiveCompany(r.Context(), caller, companyID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}
