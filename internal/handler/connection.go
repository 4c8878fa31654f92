// internal/handler/connection.go
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

type ConnectionHandler struct {
	connectionService *service.ConnectionService
}

func NewConnectionHandler(connectionService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

func (h *ConnectionHandler) RequestHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.RequestConnectionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.connectionService.Request(r.Context(), caller, input); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

// pairAction maps the cancel/accept/decline/disconnect/block/unblock
// operations, which all take only the other company's ID from the URL.
func (h *ConnectionHandler) pairAction(
	action func(r *http.Request, caller uuid.UUID, targetCompanyID uint64) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r)
		if !ok {
			return
		}

		targetCompanyID, err := strconv.ParseUint(chi.URLParam(r, "companyID"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid company ID")
			return
		}

		if err := action(r, caller, targetCompanyID); err != nil {
			respondWithDomainError(w, r, err)
			return
		}

		respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
	}
}

func (h *ConnectionHandler) CancelHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Cancel(r.Context(), caller, target)
	})
}

func (h *ConnectionHandler) AcceptHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Accept(r.Context(), caller, target)
	})
}

func (h *ConnectionHandler) DeclineHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Decline(r.Context(), caller, target)
	})
}

func (h *ConnectionHandler) DisconnectHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Disconnect(r.Context(), caller, target)
	})
}

func (h *ConnectionHandler) BlockHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Block(r.Context(), caller, target)
	})
}

func (h *ConnectionHandler) UnblockHandler() http.HandlerFunc {
	return h.pairAction(func(r *http.Request, caller uuid.UUID, target uint64) error {
		return h.connectionService.Unblock(r.Context(), caller, target)
	})
}

type ConnectionsResponse struct {
	BaseResponse
	Connections []model.Connection `json:"connections"`
}

func (h *ConnectionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	connections, err := h.connectionService.List(r.Context(), caller)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ConnectionsResponse{
		BaseResponse: BaseResponse{Ok: true},
		Connections:  connections,
	})
}

type ConnectionChatResponse struct {
	BaseResponse
	Message *model.ConnectionChat `json:"message"`
}

func (h *ConnectionHandler) SendChatHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var input service.SendConnectionChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	msg, err := h.connectionService.SendChat(r.Context(), caller, input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ConnectionChatResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      msg,
	})
}

type ConnectionChatListResponse struct {
	BaseResponse
	Messages []model.ConnectionChat `json:"messages"`
}

func (h *ConnectionHandler) ListChatHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	connectionID, err := strconv.ParseUint(chi.URLParam(r, "connectionID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid connection ID")
		return
	}

	messages, err := h.connectionService.ListChat(r.Context(), caller, connectionID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ConnectionChatListResponse{
		BaseResponse: BaseResponse{Ok: true},
		Messages:     messages,
	})
}
