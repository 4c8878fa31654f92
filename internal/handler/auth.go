// internal/handler/auth.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tomvanloon/signnet/internal/model"
	"github.com/tomvanloon/signnet/internal/service"
)

type AuthHandler struct {
	accountService *service.AccountService
}

func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

type SignupResponse struct {
	BaseResponse
	Account *model.UserAccount `json:"account"`
	Token   string             `json:"token"`
}

func (h *AuthHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	// Parses the request body
	var input service.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	// Calls the service layer to handle the signup
	output, err := h.accountService.Signup(r.Context(), input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, SignupResponse{
		BaseResponse: BaseResponse{Ok: true},
		Account:      output.Account,
		Token:        output.Token,
	})
}

type LoginResponse struct {
	BaseResponse
	Account *model.UserAccount `json:"account"`
	Token   string             `json:"token"`
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	output, err := h.accountService.Login(r.Context(), input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{
		BaseResponse: BaseResponse{Ok: true},
		Account:      output.Account,
		Token:        output.Token,
	})
}
